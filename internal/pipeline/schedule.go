package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/model"
)

// Frequency is how often scheduled cycles run.
type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

// ParseFrequency normalizes a configured frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case Daily, Weekly:
		return f, nil
	case "":
		return Daily, nil
	}
	return "", eris.Errorf("pipeline: unknown frequency %q", s)
}

// NextRun returns the first scheduled time strictly after now: each day at
// hour for daily, or Monday at hour for weekly. Times are in now's location.
func NextRun(now time.Time, freq Frequency, hour int) (time.Time, error) {
	if hour < 0 || hour > 23 {
		return time.Time{}, eris.Errorf("pipeline: hour %d out of range", hour)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())

	switch freq {
	case Daily:
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
	case Weekly:
		// Days until Monday, counting today.
		days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
		next = next.AddDate(0, 0, days)
		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}
	default:
		return time.Time{}, eris.Errorf("pipeline: unknown frequency %q", freq)
	}
	return next, nil
}

// Runner runs one cycle.
type Runner interface {
	Run(ctx context.Context, trigger model.Trigger) (*model.RunResult, error)
}

// Scheduler runs cycles at a fixed daily or weekly hour until its context is
// cancelled.
type Scheduler struct {
	runner Runner
	freq   Frequency
	hour   int
	now    func() time.Time
	after  func(d time.Duration) <-chan time.Time
}

// NewScheduler validates the schedule and returns a scheduler.
func NewScheduler(r Runner, frequency string, hour int) (*Scheduler, error) {
	freq, err := ParseFrequency(frequency)
	if err != nil {
		return nil, err
	}
	if _, err := NextRun(time.Now(), freq, hour); err != nil {
		return nil, err
	}
	return &Scheduler{
		runner: r,
		freq:   freq,
		hour:   hour,
		now:    time.Now,
		after:  time.After,
	}, nil
}

// Next returns the next scheduled run time.
func (s *Scheduler) Next() time.Time {
	next, _ := NextRun(s.now(), s.freq, s.hour)
	return next
}

// Run waits for each scheduled time and runs a cycle. A failed cycle is
// logged and the schedule continues. Run returns when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := s.Next()
		zap.L().Info("pipeline: next scheduled run",
			zap.String("frequency", string(s.freq)),
			zap.Time("at", next),
		)

		select {
		case <-ctx.Done():
			zap.L().Info("pipeline: scheduler stopped")
			return
		case <-s.after(next.Sub(s.now())):
		}

		if _, err := s.runner.Run(ctx, model.TriggerSchedule); err != nil {
			zap.L().Error("pipeline: scheduled run failed", zap.Error(err))
		}
	}
}
