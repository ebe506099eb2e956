package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/venture-watch/internal/collection"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/query"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the collection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		now := time.Now()
		f, err := filterFromFlags(cmd.Flags(), now)
		if err != nil {
			return err
		}
		records := f.Apply(collection.New(cfg.Collection.Path).Read())
		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No startups match.")
			return nil
		}
		formatSummary(os.Stdout, query.Summarize(records, now))
		formatFundingBy(os.Stdout, "INDUSTRY", query.FundingBy(records, model.FieldIndustry))
		return nil
	},
}

func init() {
	addFilterFlags(statsCmd.Flags(), "all")
	rootCmd.AddCommand(statsCmd)
}

// formatSummary writes headline metrics and top values to out.
func formatSummary(out io.Writer, s query.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Startups:\t%d\n", s.TotalStartups)
	_, _ = fmt.Fprintf(w, "Total funding:\t$%.2fM\n", s.TotalFunding)
	_, _ = fmt.Fprintf(w, "Avg funding:\t$%.2fM\n", s.AvgFunding)
	_, _ = fmt.Fprintf(w, "Last 7 days:\t%d\n", s.RecentStartups)
	if s.TopIndustry != "" {
		_, _ = fmt.Fprintf(w, "Top industry:\t%s\n", s.TopIndustry)
	}
	if s.TopRound != "" {
		_, _ = fmt.Fprintf(w, "Top round:\t%s\n", s.TopRound)
	}
	_ = w.Flush()
}

// formatFundingBy writes funding groups as a table headed by label.
func formatFundingBy(out io.Writer, label string, groups []query.Group) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "\n%s\tSTARTUPS\tFUNDING ($M)\n", label)
	for _, g := range groups {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%.2f\n", g.Value, g.Count, g.Funding)
	}
	_ = w.Flush()
}
