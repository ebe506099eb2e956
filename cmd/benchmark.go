package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/venture-watch/internal/benchmark"
	"github.com/sells-group/venture-watch/internal/model"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Compare API-only collection with collection including scrapers",
	Long:  "Collects twice over the same window, once from API and search sources only and once from every source, and reports completeness and coverage gains. The result is saved to run history.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("collect"); err != nil {
			return err
		}
		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			days = cfg.Sources.DaysBack
		}

		sources, err := initSources(true)
		if err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		b, err := benchmark.NewRunner(sources, cfg.Sources.MaxConcurrent, st).Run(ctx, days)
		if b != nil {
			formatBenchmark(os.Stdout, b)
		}
		return err
	},
}

var benchmarkLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent saved benchmark",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		b, err := st.LatestBenchmark(ctx)
		if err != nil {
			return eris.Wrap(err, "benchmark latest")
		}
		if b == nil {
			fmt.Fprintln(os.Stderr, "No benchmarks found.")
			return nil
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(b)
		}
		formatBenchmark(os.Stdout, b)
		return nil
	},
}

func init() {
	benchmarkCmd.Flags().Int("days", 0, "days back to collect (default from config)")
	benchmarkLatestCmd.Flags().Bool("json", false, "print the raw benchmark as JSON")
	benchmarkCmd.AddCommand(benchmarkLatestCmd)
	rootCmd.AddCommand(benchmarkCmd)
}

// formatBenchmark writes the side-by-side comparison to out.
func formatBenchmark(out io.Writer, b *model.Benchmark) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "METRIC\tAPI ONLY\tWITH SCRAPERS\tCHANGE")
	_, _ = fmt.Fprintf(w, "Entries\t%d\t%d\t%+.2f%%\n",
		b.APIOnly.TotalEntries, b.WithScrapers.TotalEntries, b.Improvements[benchmark.KeyCountPercent])
	_, _ = fmt.Fprintf(w, "Avg fields populated\t%.2f\t%.2f\t%+.2f%%\n",
		b.APIOnly.AvgFieldsPopulated, b.WithScrapers.AvgFieldsPopulated, b.Improvements[benchmark.KeyFieldsPercent])
	for _, f := range benchmark.TrackedFields {
		_, _ = fmt.Fprintf(w, "%s %%\t%.2f\t%.2f\t%+.2f\n",
			f, b.APIOnly.FieldCompletion[f], b.WithScrapers.FieldCompletion[f], b.Improvements[benchmark.FieldKey(f)])
	}
	_, _ = fmt.Fprintf(w, "Duration\t%dms\t%dms\t\n", b.APIOnlyMS, b.WithScrapersMS)
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nUnique to scrapers: %d\n", b.UniqueToScrapers)
	for _, name := range b.UniqueExamples {
		_, _ = fmt.Fprintf(out, "  - %s\n", name)
	}
}
