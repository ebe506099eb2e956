// Package reconcile folds candidate records from many sources into one set
// keyed by (company_name, url), keeping the most complete record per key.
package reconcile

import (
	"time"

	"github.com/sells-group/venture-watch/internal/model"
)

// Prefer returns b if it is strictly more complete than a, otherwise a.
// Ties keep the incumbent.
func Prefer(a, b model.Record) model.Record {
	if b.Completeness() > a.Completeness() {
		return b
	}
	return a
}

// index is an insertion-ordered map of records by identity key.
type index struct {
	order []model.Key
	byKey map[model.Key]model.Record
}

func newIndex(size int) *index {
	return &index{
		order: make([]model.Key, 0, size),
		byKey: make(map[model.Key]model.Record, size),
	}
}

func (ix *index) get(k model.Key) (model.Record, bool) {
	r, ok := ix.byKey[k]
	return r, ok
}

// put stores r under k. A new key is appended to the order; an existing key
// keeps its position.
func (ix *index) put(k model.Key, r model.Record) {
	if _, ok := ix.byKey[k]; !ok {
		ix.order = append(ix.order, k)
	}
	ix.byKey[k] = r
}

func (ix *index) records() []model.Record {
	out := make([]model.Record, 0, len(ix.order))
	for _, k := range ix.order {
		out = append(out, ix.byKey[k])
	}
	return out
}

// Deduplicate merges the given batches into one list with at most one record
// per identity key. Records without an identity are skipped. Output follows
// first-seen key order.
func Deduplicate(batches ...[]model.Record) []model.Record {
	size := 0
	for _, b := range batches {
		size += len(b)
	}
	ix := newIndex(size)
	for _, batch := range batches {
		for _, r := range batch {
			k, ok := r.Key()
			if !ok {
				continue
			}
			if cur, seen := ix.get(k); seen {
				ix.put(k, Prefer(cur, r))
				continue
			}
			ix.put(k, r)
		}
	}
	return ix.records()
}

// Result is the outcome of folding a batch into an existing collection.
type Result struct {
	// Records is the full collection after the fold: existing entries first
	// in their original order, then new entries in batch order.
	Records []model.Record
	// Added counts keys that were not present before.
	Added int
	// Updated counts existing entries replaced by a more complete record.
	Updated int
	// Dropped counts records without an identity, from either side.
	Dropped int
	// AddedRecords holds the newly inserted records in batch order.
	AddedRecords []model.Record
	// UpdatedRecords holds the replacement records in batch order.
	UpdatedRecords []model.Record
}

// Reconcile folds batch into existing. Existing records without an identity
// are dropped and duplicate existing keys are folded with Prefer. The batch
// is deduplicated first. A batch record is inserted when its key is new,
// stamping today as the discovery date when it has none, and replaces the
// stored record only when strictly more complete. A replacement without a
// discovery date inherits the stored one. Neither input is modified.
func Reconcile(existing, batch []model.Record, today time.Time) Result {
	var res Result
	ix := newIndex(len(existing) + len(batch))

	for _, r := range existing {
		k, ok := r.Key()
		if !ok {
			res.Dropped++
			continue
		}
		if cur, seen := ix.get(k); seen {
			ix.put(k, Prefer(cur, r))
			continue
		}
		ix.put(k, r)
	}

	for _, r := range batch {
		if _, ok := r.Key(); !ok {
			res.Dropped++
		}
	}

	stamp := model.DateOf(today)
	for _, r := range Deduplicate(batch) {
		k, _ := r.Key()
		cur, seen := ix.get(k)
		if !seen {
			r = r.Clone()
			if r.DiscoveryDate.IsZero() {
				r.DiscoveryDate = stamp
			}
			ix.put(k, r)
			res.Added++
			res.AddedRecords = append(res.AddedRecords, r)
			continue
		}
		if r.Completeness() <= cur.Completeness() {
			continue
		}
		r = r.Clone()
		if r.DiscoveryDate.IsZero() {
			r.DiscoveryDate = cur.DiscoveryDate
		}
		ix.put(k, r)
		res.Updated++
		res.UpdatedRecords = append(res.UpdatedRecords, r)
	}

	res.Records = ix.records()
	return res
}
