package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/export"
	"github.com/sells-group/venture-watch/internal/fetcher"
	"github.com/sells-group/venture-watch/internal/reconcile"
	"github.com/sells-group/venture-watch/internal/source"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect and deduplicate candidates without touching the collection",
	Long:  "Gathers candidates from the enabled sources and deduplicates them. The result is written to --out (.json, .csv or .xlsx) or printed to stdout as JSON. The collection file is not modified.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("collect"); err != nil {
			return err
		}

		days, _ := cmd.Flags().GetInt("days")
		noScrapers, _ := cmd.Flags().GetBool("no-scrapers")
		out, _ := cmd.Flags().GetString("out")
		if days <= 0 {
			days = cfg.Sources.DaysBack
		}

		sources, err := initSources(cfg.Sources.UseScrapers && !noScrapers)
		if err != nil {
			return err
		}

		collector := source.NewCollector(sources, cfg.Sources.MaxConcurrent)
		batches := collector.Collect(ctx, source.Window{DaysBack: days, Now: time.Now()})
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "collect: cancelled")
		}

		records := reconcile.Deduplicate(source.Records(batches)...)
		zap.L().Info("collection complete",
			zap.Int("sources", len(batches)),
			zap.Int("candidates", source.Count(batches)),
			zap.Int("unique", len(records)),
		)

		if out == "" {
			return fetcher.WriteRecordsJSON(os.Stdout, records)
		}
		if err := export.WriteFile(out, records); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d records to %s\n", len(records), out)
		return nil
	},
}

func init() {
	collectCmd.Flags().Int("days", 0, "days back to collect (default from config)")
	collectCmd.Flags().Bool("no-scrapers", false, "collect from API and search sources only")
	collectCmd.Flags().String("out", "", "output file (.json, .csv, .xlsx); stdout JSON when empty")
	rootCmd.AddCommand(collectCmd)
}
