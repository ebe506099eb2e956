package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/metrics"
	"github.com/sells-group/venture-watch/internal/model"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Enrich collection records with LLM analysis",
	Long:  "Asks the model for product focus, competitors and growth signals on records that lack them, and writes the results back into the collection.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("enrich"); err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		coll, err := initCollection(ctx)
		if err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, model.TriggerEnrich)
		if err != nil {
			return eris.Wrap(err, "analyze: create run")
		}

		res, upd := initEnricher().EnrichCollection(ctx, coll, limit)
		result := &model.RunResult{
			Sources:   []model.SourceResult{{Name: "anthropic", Records: len(res.Records)}},
			Collected: res.Attempted,
			Unique:    res.Attempted,
			Enriched:  len(res.Records),
		}
		if upd != nil {
			result.Updated = upd.Updated
			result.Total = len(upd.Records)
			result.Persisted = upd.Persisted
			if upd.PersistErr != nil {
				metrics.Runs.WithLabelValues(string(model.RunStatusFailed)).Inc()
				_ = st.FailRun(ctx, run.ID, result, upd.PersistErr)
				return eris.Wrap(upd.PersistErr, "analyze: persist collection")
			}
		}
		if err := st.CompleteRun(ctx, run.ID, result); err != nil {
			zap.L().Warn("analyze: failed to record run", zap.Error(err))
		}
		metrics.Runs.WithLabelValues(string(model.RunStatusComplete)).Inc()

		fmt.Fprintf(os.Stdout, "Attempted: %d  Enriched: %d  Failed: %d  Tokens: %d in / %d out  Est. cost: $%.4f\n",
			res.Attempted, len(res.Records), res.Failed, res.Usage.InputTokens, res.Usage.OutputTokens,
			res.Usage.EstimateCost(cfg.Anthropic.Model))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Int("limit", 20, "max records to enrich")
	rootCmd.AddCommand(analyzeCmd)
}
