package model

import "time"

// Run statuses recorded in the ledger.
const (
	RunOK     = "ok"
	RunFailed = "failed"
)

// PipelineSpec describes one boundary/features pairing to filter.
type PipelineSpec struct {
	Name      string
	Boundary  string
	Features  string
	Backup    string // empty derives <features>.backup.<ext>
	Predicate PredicateKind
}

// Run is the ledger record of one pipeline invocation.
type Run struct {
	ID        string
	Pipeline  string
	Predicate string
	Boundary  string
	Features  string
	Backup    string
	Total     int
	Kept      int
	Skipped   int
	Status    string
	Error     string
	StartedAt time.Time
	Duration  time.Duration
	Warnings  []string
}
