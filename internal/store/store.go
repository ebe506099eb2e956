package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/venture-watch/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  model.RunStatus `json:"status,omitempty"`
	Trigger model.Trigger   `json:"trigger,omitempty"`
	Since   time.Time       `json:"since,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// Store persists collection run history and benchmark results.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, trigger model.Trigger) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	FailRun(ctx context.Context, runID string, result *model.RunResult, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Benchmarks
	SaveBenchmark(ctx context.Context, b *model.Benchmark) error
	LatestBenchmark(ctx context.Context) (*model.Benchmark, error)
	ListBenchmarks(ctx context.Context, limit int) ([]model.Benchmark, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the Store for driver, connecting to dsn. For sqlite dsn is a
// file path.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", "sqlite":
		if dsn == "" {
			dsn = "venture-watch.db"
		}
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", driver)
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func listLimit(n int) int {
	if n <= 0 {
		return 100
	}
	return n
}
