package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sells-group/venture-watch/internal/collection"
	"github.com/sells-group/venture-watch/internal/export"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/query"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the collection to CSV, XLSX or JSON",
	Long:  "Writes the collection, optionally filtered, to --out. The format follows the file extension; CSV goes to stdout when --out is empty.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := filterFromFlags(cmd.Flags(), time.Now())
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")

		records := f.Apply(collection.New(cfg.Collection.Path).Read())
		if out == "" {
			return export.WriteCSV(os.Stdout, records)
		}
		if err := export.WriteFile(out, records); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d records to %s\n", len(records), out)
		return nil
	},
}

// addFilterFlags registers the collection filter flags on fs with a default
// discovery period.
func addFilterFlags(fs *pflag.FlagSet, period string) {
	fs.String("industry", "", "only this industry")
	fs.String("round", "", "only this funding round (e.g. \"Series A\")")
	fs.String("location", "", "location substring")
	fs.Float64("min-funding", 0, "minimum funding in millions")
	fs.String("period", period, "discovery window: all, 7d, 30d, ...")
}

// filterFromFlags builds a query filter from the flags added by
// addFilterFlags.
func filterFromFlags(fs *pflag.FlagSet, now time.Time) (query.Filter, error) {
	industry, _ := fs.GetString("industry")
	round, _ := fs.GetString("round")
	location, _ := fs.GetString("location")
	minFunding, _ := fs.GetFloat64("min-funding")
	period, _ := fs.GetString("period")

	if minFunding < 0 {
		return query.Filter{}, eris.New("--min-funding must not be negative")
	}
	days, err := query.ParsePeriod(period)
	if err != nil {
		return query.Filter{}, err
	}
	return query.Filter{
		Industry:   industry,
		Round:      model.ParseFundingRound(round),
		Location:   location,
		MinFunding: minFunding,
		Since:      query.Since(now, days),
	}, nil
}

func init() {
	addFilterFlags(exportCmd.Flags(), "all")
	exportCmd.Flags().String("out", "", "output file (.csv, .xlsx, .json)")
	rootCmd.AddCommand(exportCmd)
}
