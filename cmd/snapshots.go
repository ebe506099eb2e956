package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/venture-watch/internal/archive"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List archived collection snapshots in S3",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.S3.Bucket == "" {
			return eris.New("snapshots: s3.bucket is not configured")
		}
		a, err := archive.New(ctx, cfg.S3)
		if err != nil {
			return err
		}
		snaps, err := a.List(ctx)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Fprintln(os.Stderr, "No snapshots found.")
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		if limit > 0 && len(snaps) > limit {
			snaps = snaps[:limit]
		}
		formatSnapshots(os.Stdout, snaps)
		return nil
	},
}

func init() {
	snapshotsCmd.Flags().Int("limit", 20, "max number of snapshots to display")
	rootCmd.AddCommand(snapshotsCmd)
}

// formatSnapshots writes snapshot keys, sizes and times to out.
func formatSnapshots(out io.Writer, snaps []archive.Snapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tSIZE\tMODIFIED")
	for _, s := range snaps {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", s.Key, s.Size, s.LastModified.Format("2006-01-02 15:04:05"))
	}
	_ = w.Flush()
}
