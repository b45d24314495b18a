package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edu-demography/county-cli/internal/boundary"
	"github.com/edu-demography/county-cli/internal/crosswalk"
	"github.com/edu-demography/county-cli/internal/store"
)

var boundaryCmd = &cobra.Command{
	Use:   "boundarycheck",
	Short: "Summarize county boundary changes between two census years",
	Long: `Classifies every --year-a county as unchanged, modified, or split relative
to the --year-b county set, based on area overlap shares. Useful for deciding
whether a year pair needs a crosswalk at all before building one.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		yearA, _ := cmd.Flags().GetInt("year-a")
		yearB, _ := cmd.Flags().GetInt("year-b")
		threshold, _ := cmd.Flags().GetFloat64("overlap-threshold")
		details, _ := cmd.Flags().GetBool("details")

		if threshold == 0 {
			threshold = cfg.Crosswalk.OverlapThreshold
		}

		opts := crosswalk.Options{
			SourceYear:       yearA,
			TargetYear:       yearB,
			OverlapThreshold: threshold,
			Workers:          cfg.Crosswalk.Workers,
		}
		if err := opts.Validate(); err != nil {
			return err
		}

		a, _, err := loadCountyYear(yearA)
		if err != nil {
			return err
		}
		b, _, err := loadCountyYear(yearB)
		if err != nil {
			return err
		}

		s, err := boundary.Check(ctx, a, b, opts)
		if err != nil {
			return err
		}

		fmt.Printf("Boundary changes %d -> %d (threshold %.0f%%)\n", s.YearA, s.YearB, threshold)
		fmt.Printf("  counties:        %d\n", s.Counties)
		fmt.Printf("  unchanged:       %d\n", s.Unchanged)
		fmt.Printf("  modified:        %d\n", s.Modified)
		fmt.Printf("  split:           %d\n", s.Split)
		fmt.Printf("  coverage gaps:   %d\n", s.CoverageGaps)
		fmt.Printf("  excluded:        %d\n", s.Excluded)
		fmt.Printf("  mean best share: %.4f\n", s.MeanBestShare)

		if details {
			fmt.Printf("\n%-10s %-8s %-8s %-25s %10s %8s %s\n",
				"GISJOIN", "ICPSRST", "ICPSRCTY", "Name", "BestShare", "Targets", "Class")
			fmt.Println(strings.Repeat("-", 80))
			for _, c := range s.Changes {
				if c.Class == boundary.ClassUnchanged {
					continue
				}
				fmt.Printf("%-10s %-8s %-8s %-25s %10.4f %8d %s\n",
					c.GISJoin, c.StateCode, c.CountyCode, c.Name, c.BestShare, c.TargetCount, c.Class)
			}
		}

		if err := recordRun(ctx, store.RunKindBoundary, opts, len(s.Changes), s.CoverageGaps+s.Excluded, 0, "", nil); err != nil {
			zap.L().Warn("failed to record run", zap.Error(err))
		}

		return nil
	},
}

func init() {
	boundaryCmd.Flags().Int("year-a", 1900, "earlier census year")
	boundaryCmd.Flags().Int("year-b", 1940, "later census year")
	boundaryCmd.Flags().Float64("overlap-threshold", 0, "split detection threshold percentage (default: from config or 70)")
	boundaryCmd.Flags().Bool("details", false, "print per-county changes (unchanged counties omitted)")
	rootCmd.AddCommand(boundaryCmd)
}
