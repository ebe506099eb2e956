package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/pipeline"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run collection cycles on a daily or weekly schedule",
	Long:  "Blocks and runs an update cycle at the configured hour, daily or every Monday. New entries are published when Notion is configured.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if freq, _ := cmd.Flags().GetString("frequency"); freq != "" {
			cfg.Schedule.Frequency = freq
		}
		if cmd.Flags().Changed("hour") {
			cfg.Schedule.Hour, _ = cmd.Flags().GetInt("hour")
		}
		if err := cfg.Validate("schedule"); err != nil {
			return err
		}

		env, err := initCycle(ctx, "update", cycleOptions{collect: true, publish: true})
		if err != nil {
			return err
		}
		defer env.Close()

		sched, err := pipeline.NewScheduler(env.Cycle, cfg.Schedule.Frequency, cfg.Schedule.Hour)
		if err != nil {
			return err
		}
		zap.L().Info("scheduler started",
			zap.String("frequency", cfg.Schedule.Frequency),
			zap.Time("next_run", sched.Next()),
		)
		sched.Run(ctx)
		return nil
	},
}

func init() {
	scheduleCmd.Flags().String("frequency", "", "daily or weekly (default from config)")
	scheduleCmd.Flags().Int("hour", 0, "hour of day to run, 0-23 (default from config)")
	rootCmd.AddCommand(scheduleCmd)
}
