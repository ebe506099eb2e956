package model

import "time"

// RunStatus represents the current state of a collection run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Trigger names what started a run.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerSchedule  Trigger = "schedule"
	TriggerReconcile Trigger = "reconcile"
	TriggerEnrich    Trigger = "enrich"
)

// Run represents one collect-and-update cycle.
type Run struct {
	ID        string     `json:"id"`
	Trigger   Trigger    `json:"trigger"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	Sources   []SourceResult `json:"sources"`
	Collected int            `json:"collected"` // candidates across all sources
	Unique    int            `json:"unique"`    // after deduplication
	Added     int            `json:"added"`
	Updated   int            `json:"updated"`
	Dropped   int            `json:"dropped"`
	Total     int            `json:"total"` // collection size after the update
	Persisted bool           `json:"persisted"`
	Published int            `json:"published,omitempty"`
	Enriched  int            `json:"enriched,omitempty"`
}

// SourceResult summarizes one source's contribution to a run.
type SourceResult struct {
	Name       string `json:"name"`
	Records    int    `json:"records"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// CollectionStats describes one collection of records for benchmarking.
type CollectionStats struct {
	TotalEntries       int                `json:"total_entries"`
	FieldCompletion    map[string]float64 `json:"field_completion"` // percent per tracked field
	AvgFieldsPopulated float64            `json:"avg_fields_populated"`
	Industries         map[string]int     `json:"industries"`
	Rounds             map[string]int     `json:"rounds"`
	AvgFunding         float64            `json:"avg_funding"`
	TotalFunding       float64            `json:"total_funding"`
}

// Benchmark compares API-only collection against collection with scrapers.
type Benchmark struct {
	ID               string             `json:"id"`
	DaysBack         int                `json:"days_back"`
	APIOnly          CollectionStats    `json:"api_only"`
	APIOnlyMS        int64              `json:"api_only_ms"`
	WithScrapers     CollectionStats    `json:"with_scrapers"`
	WithScrapersMS   int64              `json:"with_scrapers_ms"`
	Improvements     map[string]float64 `json:"improvements"`
	UniqueToScrapers int                `json:"unique_to_scrapers"`
	UniqueExamples   []string           `json:"unique_examples"`
	CreatedAt        time.Time          `json:"created_at"`
}
