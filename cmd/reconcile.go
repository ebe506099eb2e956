package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/venture-watch/internal/fetcher"
	"github.com/sells-group/venture-watch/internal/model"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Merge a file of records into the collection",
	Long:  "Reads records from a JSON, CSV or XLSX file and reconciles them into the collection as a single batch, recording the run in history.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		in, _ := cmd.Flags().GetString("in")
		if in == "" {
			return eris.New("reconcile: --in is required")
		}

		records, err := fetcher.ReadRecordsFile(ctx, in)
		if err != nil {
			return eris.Wrapf(err, "reconcile: read %s", in)
		}

		env, err := initCycle(ctx, "reconcile", cycleOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Cycle.Ingest(ctx, model.TriggerReconcile, filepath.Base(in), records)
		if res != nil {
			formatRunResult(os.Stdout, res)
		}
		return err
	},
}

func init() {
	reconcileCmd.Flags().String("in", "", "input file (.json, .csv, .xlsx)")
	rootCmd.AddCommand(reconcileCmd)
}
