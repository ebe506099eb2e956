// Package collection persists the reconciled startup collection as a JSON
// array on disk. Store.Update is the only writer; readers load the file
// without locking and always observe a complete snapshot.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/metrics"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/reconcile"
)

const (
	defaultLockTimeout = 30 * time.Second
	lockRetryDelay     = 100 * time.Millisecond
)

// Archiver receives a copy of every successfully written snapshot.
type Archiver interface {
	Archive(ctx context.Context, data []byte) error
}

// Store reads and updates the collection file at a fixed path.
type Store struct {
	path        string
	lockTimeout time.Duration
	archiver    Archiver
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout bounds how long Update waits for the writer lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// WithArchiver uploads each persisted snapshot.
func WithArchiver(a Archiver) Option {
	return func(s *Store) { s.archiver = a }
}

// WithClock overrides the clock used to stamp discovery dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store for the collection file at path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:        path,
		lockTimeout: defaultLockTimeout,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the collection file path.
func (s *Store) Path() string { return s.path }

// Load reads the collection file. A missing file yields an empty collection
// and no error.
func (s *Store) Load() ([]model.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "collection: read %s", s.path)
	}
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "collection: parse %s", s.path)
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}

// Read loads the collection, degrading to an empty one on any failure.
func (s *Store) Read() []model.Record {
	records, err := s.Load()
	if err != nil {
		zap.L().Warn("collection: load failed, using empty collection",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return []model.Record{}
	}
	return records
}

// save replaces the collection file with records, indented two spaces. The
// data is written to a temporary file in the same directory and renamed into
// place. Callers hold the writer lock.
func (s *Store) save(records []model.Record) ([]byte, error) {
	if records == nil {
		records = []model.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "collection: marshal")
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "collection: mkdir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return nil, eris.Wrap(err, "collection: create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, eris.Wrap(err, "collection: write temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return nil, eris.Wrap(err, "collection: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return nil, eris.Wrap(err, "collection: close temp file")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, eris.Wrap(err, "collection: chmod temp file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return nil, eris.Wrapf(err, "collection: replace %s", s.path)
	}
	return data, nil
}

// UpdateResult reports the outcome of folding a batch into the collection.
type UpdateResult struct {
	Records        []model.Record
	Added          int
	Updated        int
	Dropped        int
	AddedRecords   []model.Record
	UpdatedRecords []model.Record
	// Persisted is false when the lock could not be taken or the write
	// failed. Records then reflects the in-memory result only.
	Persisted  bool
	PersistErr error
}

// Update folds batch into the collection under the writer lock and writes
// the result back. It never returns an error: load failures degrade to an
// empty collection and write failures are reported through Persisted and
// PersistErr.
func (s *Store) Update(ctx context.Context, batch []model.Record) *UpdateResult {
	log := zap.L().With(zap.String("path", s.path))

	unlock, lockErr := s.lock(ctx)
	if lockErr != nil {
		log.Error("collection: writer lock unavailable, result not persisted", zap.Error(lockErr))
	} else {
		defer unlock()
	}

	rec := reconcile.Reconcile(s.Read(), batch, s.now())
	res := &UpdateResult{
		Records:        rec.Records,
		Added:          rec.Added,
		Updated:        rec.Updated,
		Dropped:        rec.Dropped,
		AddedRecords:   rec.AddedRecords,
		UpdatedRecords: rec.UpdatedRecords,
	}
	metrics.ReconciledRecords.WithLabelValues("added").Add(float64(rec.Added))
	metrics.ReconciledRecords.WithLabelValues("updated").Add(float64(rec.Updated))
	metrics.ReconciledRecords.WithLabelValues("dropped").Add(float64(rec.Dropped))

	if lockErr != nil {
		res.PersistErr = lockErr
		metrics.PersistFailures.Inc()
		return res
	}

	data, err := s.save(rec.Records)
	if err != nil {
		log.Error("collection: persist failed", zap.Error(err))
		res.PersistErr = err
		metrics.PersistFailures.Inc()
		return res
	}
	res.Persisted = true
	metrics.CollectionSize.Set(float64(len(rec.Records)))

	log.Info("collection: updated",
		zap.Int("added", rec.Added),
		zap.Int("updated", rec.Updated),
		zap.Int("dropped", rec.Dropped),
		zap.Int("total", len(rec.Records)),
	)

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, data); err != nil {
			log.Warn("collection: archive snapshot failed", zap.Error(err))
		}
	}
	return res
}

// lock takes the advisory writer lock at <path>.lock, waiting up to the
// configured timeout.
func (s *Store) lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, eris.Wrap(err, "collection: mkdir for lock")
	}
	fl := flock.New(s.path + ".lock")

	lctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	ok, err := fl.TryLockContext(lctx, lockRetryDelay)
	if err != nil {
		return nil, eris.Wrap(err, "collection: acquire lock")
	}
	if !ok {
		return nil, eris.New("collection: lock held by another writer")
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			zap.L().Warn("collection: release lock", zap.Error(err))
		}
	}, nil
}
