package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edu-demography/county-cli/internal/assign"
	"github.com/edu-demography/county-cli/pkg/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Fill in missing college coordinates via Nominatim",
	Long: `Reads a college list CSV, geocodes every row that has no coordinates yet,
and writes the completed list. Rows that already carry coordinates are passed
through untouched, so the command can be re-run after partial failures.

The public Nominatim instance allows one request per second; expect a long
run for large lists.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")

		colleges, err := assign.ReadColleges(input)
		if err != nil {
			return err
		}

		client := geocode.New(cfg.Geocode.BaseURL, cfg.Geocode.UserAgent, cfg.Geocode.RequestsPerSec)
		log := zap.L().With(zap.String("command", "geocode"))

		var resolved, failed, skipped int
		for i := range colleges {
			c := &colleges[i]
			if c.Latitude != 0 || c.Longitude != 0 {
				skipped++
				continue
			}
			res, err := client.Geocode(ctx, c.City, c.State)
			if err != nil {
				if ctx.Err() != nil {
					return eris.Wrap(ctx.Err(), "geocode: interrupted")
				}
				log.Warn("geocode request failed",
					zap.String("college", c.Name),
					zap.String("city", c.City),
					zap.String("state", c.State),
					zap.Error(err),
				)
				failed++
				continue
			}
			if !res.Matched {
				log.Warn("no geocode match",
					zap.String("college", c.Name),
					zap.String("city", c.City),
					zap.String("state", c.State),
				)
				failed++
				continue
			}
			c.Latitude = res.Latitude
			c.Longitude = res.Longitude
			resolved++
		}

		data, err := csvutil.Marshal(colleges)
		if err != nil {
			return eris.Wrap(err, "geocode: marshal output")
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return eris.Wrapf(err, "geocode: write %s", output)
		}

		fmt.Printf("Geocoding complete: %d rows\n", len(colleges))
		fmt.Printf("  resolved:          %d\n", resolved)
		fmt.Printf("  already had coords: %d\n", skipped)
		fmt.Printf("  unresolved:        %d\n", failed)
		fmt.Printf("Written to %s\n", output)
		return nil
	},
}

func init() {
	geocodeCmd.Flags().String("input", "colleges.csv", "college list CSV to geocode")
	geocodeCmd.Flags().String("output", "colleges_with_coordinates.csv", "destination CSV")
	rootCmd.AddCommand(geocodeCmd)
}
