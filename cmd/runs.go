package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs from the run-history store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		if s == nil {
			return eris.New("runs: no store driver configured (set store.driver to sqlite or postgres)")
		}
		defer func() { _ = s.Close() }()

		runs, err := s.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No recorded runs.")
			return nil
		}

		fmt.Printf("%-36s %-10s %-6s %-6s %6s %8s %8s %10s  %s\n",
			"ID", "Kind", "From", "To", "Thr%", "Entries", "Warns", "Duration", "Created")
		fmt.Println(strings.Repeat("-", 110))
		for _, r := range runs {
			fmt.Printf("%-36s %-10s %-6d %-6d %6.0f %8d %8d %8dms  %s\n",
				r.ID, r.Kind, r.SourceYear, r.TargetYear, r.ThresholdPct,
				r.EntryCount, r.WarningCount, r.DurationMs,
				r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 50, "maximum number of runs to list, newest first")
	rootCmd.AddCommand(runsCmd)
}
