package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/venture-watch/internal/collection"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish collection entries to the Notion feed database",
	Long:  "Creates a Notion page for each matching collection entry that is not already in the feed database. Existing pages are matched by company key and skipped.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("publish"); err != nil {
			return err
		}
		f, err := filterFromFlags(cmd.Flags(), time.Now())
		if err != nil {
			return err
		}

		records := f.Apply(collection.New(cfg.Collection.Path).Read())
		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "Nothing to publish.")
			return nil
		}

		res, err := initPublisher().Publish(ctx, records)
		if res != nil {
			fmt.Fprintf(os.Stdout, "Created: %d  Skipped: %d  Failed: %d\n", res.Created, res.Skipped, res.Failed)
		}
		return err
	},
}

func init() {
	addFilterFlags(publishCmd.Flags(), "7d")
	rootCmd.AddCommand(publishCmd)
}
