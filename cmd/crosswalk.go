package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edu-demography/county-cli/internal/crosswalk"
	"github.com/edu-demography/county-cli/internal/model"
	"github.com/edu-demography/county-cli/internal/store"
)

var crosswalkCmd = &cobra.Command{
	Use:   "crosswalk",
	Short: "Build a county crosswalk between two census years",
	Long: `Maps every county that existed in --target-year onto the counties of
--base-year by spatial area overlap. Base-year counties covering at least
--overlap-threshold percent of a target-year county's area are retained; a
county with no qualifying match keeps its single best overlap instead, so
every county is mapped.

The table is written to <output_dir>/county_crosswalk_<target>_to_<base>.csv.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		targetYear, _ := cmd.Flags().GetInt("target-year")
		baseYear, _ := cmd.Flags().GetInt("base-year")
		threshold, _ := cmd.Flags().GetFloat64("overlap-threshold")
		workers, _ := cmd.Flags().GetInt("workers")
		format, _ := cmd.Flags().GetString("format")

		if threshold == 0 {
			threshold = cfg.Crosswalk.OverlapThreshold
		}
		if workers == 0 {
			workers = cfg.Crosswalk.Workers
		}

		// The --target-year counties are the ones being mapped from; the
		// --base-year counties are the mapping targets.
		opts := crosswalk.Options{
			SourceYear:       targetYear,
			TargetYear:       baseYear,
			OverlapThreshold: threshold,
			Workers:          workers,
		}
		if err := opts.Validate(); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "crosswalk"))
		log.Info("starting crosswalk run",
			zap.Int("target_year", targetYear),
			zap.Int("base_year", baseYear),
			zap.Float64("overlap_threshold", threshold),
		)

		source, srcWarnings, err := loadCountyYear(targetYear)
		if err != nil {
			return err
		}
		target, tgtWarnings, err := loadCountyYear(baseYear)
		if err != nil {
			return err
		}

		res, err := crosswalk.Build(ctx, source, target, opts)
		if err != nil {
			return err
		}

		warnings := append(srcWarnings, tgtWarnings...)
		warnings = append(warnings, res.Warnings...)

		outPath := filepath.Join(cfg.Data.OutputDir, crosswalk.OutputName(targetYear, baseYear))
		switch format {
		case "csv":
			err = crosswalk.WriteCSV(res.Entries, outPath)
		case "xlsx":
			outPath = strings.TrimSuffix(outPath, ".csv") + ".xlsx"
			err = crosswalk.WriteXLSX(res.Entries, outPath)
		default:
			return eris.Errorf("crosswalk: unknown output format %q", format)
		}
		if err != nil {
			return err
		}

		printCrosswalkSummary(res, warnings, outPath)

		if err := recordRun(ctx, store.RunKindCrosswalk, opts, len(res.Entries), len(warnings), res.Stats.Duration.Milliseconds(), outPath, res.Entries); err != nil {
			log.Warn("failed to record run", zap.Error(err))
		}

		return nil
	},
}

func init() {
	crosswalkCmd.Flags().Int("target-year", 0, "census year whose counties are mapped from (required)")
	crosswalkCmd.Flags().Int("base-year", 1900, "census year whose counties are the mapping target")
	crosswalkCmd.Flags().Float64("overlap-threshold", 0, "minimum overlap percentage to retain a mapping (default: from config or 70)")
	crosswalkCmd.Flags().Int("workers", 0, "parallel intersection workers (default: NumCPU)")
	crosswalkCmd.Flags().String("format", "csv", "output format: csv or xlsx")
	_ = crosswalkCmd.MarkFlagRequired("target-year")
	rootCmd.AddCommand(crosswalkCmd)
}

// printCrosswalkSummary writes the human-readable run summary to stdout.
func printCrosswalkSummary(res *crosswalk.Result, warnings []model.CountyWarning, outPath string) {
	fmt.Printf("Crosswalk complete: %d entries\n", len(res.Entries))
	fmt.Printf("  source counties:   %d\n", res.Stats.SourceCounties)
	fmt.Printf("  target counties:   %d\n", res.Stats.TargetCounties)
	fmt.Printf("  candidate pairs:   %d\n", res.Stats.CandidatePairs)
	fmt.Printf("  overlap pairs:     %d\n", res.Stats.OverlapPairs)
	fmt.Printf("  fallback counties: %d\n", res.Stats.FallbackCounties)
	fmt.Printf("  warnings:          %d\n", len(warnings))
	for _, w := range warnings {
		fmt.Printf("    [%s] %d %s %s: %s\n", w.Kind, w.Year, w.GISJoin, w.Name, w.Reason)
	}
	fmt.Printf("Written to %s\n", outPath)
}

// recordRun persists run metadata (and the full table for crosswalk runs)
// when a run-history store is configured.
func recordRun(ctx context.Context, kind string, opts crosswalk.Options, entryCount, warningCount int, durationMs int64, outPath string, entries []model.CrosswalkEntry) error {
	s, err := openStore(ctx)
	if err != nil || s == nil {
		return err
	}
	defer func() { _ = s.Close() }()

	run := store.NewRunRecord(kind)
	run.SourceYear = opts.SourceYear
	run.TargetYear = opts.TargetYear
	run.ThresholdPct = opts.OverlapThreshold
	run.EntryCount = entryCount
	run.WarningCount = warningCount
	run.DurationMs = durationMs
	run.OutputPath = outPath

	if err := s.SaveRun(ctx, run); err != nil {
		return err
	}
	return s.SaveEntries(ctx, run.ID, entries)
}
