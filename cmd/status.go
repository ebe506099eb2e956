package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/venture-watch/internal/monitoring"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report collection health and evaluate alerts",
	Long:  "Summarizes recent runs and the collection file, then evaluates alert thresholds. With --send, triggered alerts are posted to the configured webhook.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		lookback, _ := cmd.Flags().GetInt("lookback")
		if lookback <= 0 {
			lookback = cfg.Monitoring.LookbackHours
		}
		send, _ := cmd.Flags().GetBool("send")
		asJSON, _ := cmd.Flags().GetBool("json")

		snap, err := initStatus(st).Collect(ctx, lookback)
		if err != nil {
			return err
		}

		alerter := monitoring.NewAlerter(cfg.Monitoring)
		alerts := alerter.Evaluate(snap)
		if send && len(alerts) > 0 {
			sent := alerter.SendAlerts(ctx, alerts)
			fmt.Fprintf(os.Stderr, "Sent %d of %d alerts\n", sent, len(alerts))
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"snapshot": snap, "alerts": alerts})
		}
		formatStatus(os.Stdout, snap, alerts)
		return nil
	},
}

func init() {
	statusCmd.Flags().Int("lookback", 0, "hours of run history to inspect (default from config)")
	statusCmd.Flags().Bool("send", false, "post triggered alerts to the webhook")
	statusCmd.Flags().Bool("json", false, "print the snapshot and alerts as JSON")
	rootCmd.AddCommand(statusCmd)
}

// formatStatus writes a health summary and any alerts to out.
func formatStatus(out io.Writer, snap *monitoring.MetricsSnapshot, alerts []monitoring.Alert) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Runs (last %dh):\t%d\n", snap.LookbackHours, snap.RunsTotal)
	_, _ = fmt.Fprintf(w, "  Complete:\t%d\n", snap.RunsComplete)
	_, _ = fmt.Fprintf(w, "  Failed:\t%d\n", snap.RunsFailed)
	_, _ = fmt.Fprintf(w, "  Running:\t%d\n", snap.RunsRunning)
	_, _ = fmt.Fprintf(w, "Fail rate:\t%.1f%%\n", snap.FailRate*100)
	_, _ = fmt.Fprintf(w, "Added / updated:\t%d / %d\n", snap.Added, snap.Updated)
	if snap.LastRunAt != nil {
		_, _ = fmt.Fprintf(w, "Last run:\t%s (%s)\n", snap.LastRunAt.Format("2006-01-02 15:04"), snap.LastStatus)
	}

	c := snap.Collection
	switch {
	case c.Error != "":
		_, _ = fmt.Fprintf(w, "Collection:\t%s (error: %s)\n", c.Path, c.Error)
	case !c.Exists:
		_, _ = fmt.Fprintf(w, "Collection:\t%s (missing)\n", c.Path)
	default:
		stale := ""
		if c.Stale {
			stale = ", stale"
		}
		_, _ = fmt.Fprintf(w, "Collection:\t%s (%d records, %.1fh old%s)\n", c.Path, c.Records, c.AgeHours, stale)
	}
	_ = w.Flush()

	if len(alerts) == 0 {
		_, _ = fmt.Fprintln(out, "\nNo alerts.")
		return
	}
	_, _ = fmt.Fprintln(out, "\nALERTS")
	for _, a := range alerts {
		_, _ = fmt.Fprintf(out, "  [%s] %s: %s\n", a.Severity, a.Type, a.Message)
	}
}
