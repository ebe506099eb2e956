package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/model"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Collect from every source and reconcile into the collection",
	Long:  "Runs one collection cycle: gathers candidates from all enabled sources, deduplicates them, merges them into the collection file, and optionally publishes new entries and enriches records.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		days, _ := cmd.Flags().GetInt("days")
		noScrapers, _ := cmd.Flags().GetBool("no-scrapers")
		publish, _ := cmd.Flags().GetBool("publish")
		enrich, _ := cmd.Flags().GetBool("enrich")
		limit, _ := cmd.Flags().GetInt("enrich-limit")

		if days > 0 {
			cfg.Sources.DaysBack = days
		}
		if noScrapers {
			cfg.Sources.UseScrapers = false
		}

		env, err := initCycle(ctx, "update", cycleOptions{
			collect: true,
			publish: publish,
			enrich:  enrich,
			enrichN: limit,
		})
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Cycle.Run(ctx, model.TriggerManual)
		if res != nil {
			formatRunResult(os.Stdout, res)
		}
		if err != nil {
			return err
		}

		zap.L().Info("update complete",
			zap.Int("added", res.Added),
			zap.Int("updated", res.Updated),
			zap.Int("total", res.Total),
		)
		return nil
	},
}

func init() {
	updateCmd.Flags().Int("days", 0, "days back to collect (default from config)")
	updateCmd.Flags().Bool("no-scrapers", false, "collect from API and search sources only")
	updateCmd.Flags().Bool("publish", false, "publish newly added entries to Notion")
	updateCmd.Flags().Bool("enrich", false, "enrich records missing analysis after the update")
	updateCmd.Flags().Int("enrich-limit", 20, "max records to enrich")
	rootCmd.AddCommand(updateCmd)
}

// formatRunResult writes a run summary with per-source counts to out.
func formatRunResult(out io.Writer, res *model.RunResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tRECORDS\tDURATION\tERROR")
	_, _ = fmt.Fprintln(w, "------\t-------\t--------\t-----")
	for _, s := range res.Sources {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%dms\t%s\n", s.Name, s.Records, s.DurationMS, s.Error)
	}
	_ = w.Flush()

	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "\nCollected:\t%d\n", res.Collected)
	_, _ = fmt.Fprintf(w, "Unique:\t%d\n", res.Unique)
	_, _ = fmt.Fprintf(w, "Added:\t%d\n", res.Added)
	_, _ = fmt.Fprintf(w, "Updated:\t%d\n", res.Updated)
	_, _ = fmt.Fprintf(w, "Dropped:\t%d\n", res.Dropped)
	_, _ = fmt.Fprintf(w, "Total:\t%d\n", res.Total)
	if !res.Persisted {
		_, _ = fmt.Fprintln(w, "Persisted:\tno")
	}
	if res.Published > 0 {
		_, _ = fmt.Fprintf(w, "Published:\t%d\n", res.Published)
	}
	if res.Enriched > 0 {
		_, _ = fmt.Fprintf(w, "Enriched:\t%d\n", res.Enriched)
	}
	_ = w.Flush()
}
