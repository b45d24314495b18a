package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edu-demography/county-cli/internal/assign"
	"github.com/edu-demography/county-cli/internal/crosswalk"
	"github.com/edu-demography/county-cli/internal/geometry"
	"github.com/edu-demography/county-cli/internal/store"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign geocoded colleges to historical counties",
	Long: `Reads a colleges CSV with latitude/longitude columns and determines which
--year county each college falls inside. Colleges without coordinates are
carried through unmatched.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		year, _ := cmd.Flags().GetInt("year")
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")

		if output == "" {
			output = filepath.Join(cfg.Data.OutputDir, fmt.Sprintf("colleges_with_counties_%d.csv", year))
		}

		log := zap.L().With(zap.String("command", "assign"), zap.Int("year", year))

		colleges, err := assign.ReadColleges(input)
		if err != nil {
			return err
		}

		counties, warnings, err := loadCountyYear(year)
		if err != nil {
			return err
		}

		res, err := assign.Points(ctx, colleges, counties, geometry.AlbersConterminousUS)
		if err != nil {
			return err
		}

		if err := assign.WriteAssigned(res.Records, output); err != nil {
			return err
		}

		fmt.Printf("Assignment complete: %d colleges\n", len(res.Records))
		fmt.Printf("  matched:   %d\n", res.Matched)
		fmt.Printf("  unmatched: %d\n", res.Unmatched)
		fmt.Printf("  skipped:   %d (no coordinates)\n", res.Skipped)
		fmt.Printf("Written to %s\n", output)

		opts := crosswalk.Options{SourceYear: year, TargetYear: year, OverlapThreshold: cfg.Crosswalk.OverlapThreshold}
		if err := recordRun(ctx, store.RunKindAssign, opts, res.Matched, res.Unmatched+len(warnings), 0, output, nil); err != nil {
			log.Warn("failed to record run", zap.Error(err))
		}

		return nil
	},
}

func init() {
	assignCmd.Flags().Int("year", 1940, "census year of the county boundaries")
	assignCmd.Flags().String("input", "colleges_with_coordinates.csv", "geocoded colleges CSV path")
	assignCmd.Flags().String("output", "", "output CSV path (default: <output_dir>/colleges_with_counties_<year>.csv)")
	rootCmd.AddCommand(assignCmd)
}
