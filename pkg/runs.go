package permafrost

import (
	"crypto/rand"
	"fmt"
	"time"
)

// RunKind identifies what a recorded invocation did.
type RunKind string

const (
	RunBackup     RunKind = "backup"
	RunVerify     RunKind = "verify"
	RunDeepVerify RunKind = "deep-verify"
	RunCold       RunKind = "cold"
	RunColdVerify RunKind = "cold-verify"
)

// RunStatus represents the outcome of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunRecord is one persisted invocation, kept so an operator can answer
// "when did the last backup finish, and how did it go" without digging
// through the journal.
type RunRecord struct {
	ID       string     `json:"id"`
	Kind     RunKind    `json:"kind"`
	Started  time.Time  `json:"started"`
	Finished *time.Time `json:"finished"` // nil while running
	Status   RunStatus  `json:"status"`
	Message  string     `json:"message"`
}

// RunManager persists run history in the state store.
type RunManager struct {
	store *TypeStore[RunRecord]
}

const runHistoryTable = "run_history"

func NewRunManager(sm *StoreManager) (*RunManager, error) {
	store, err := NewTypeStore[RunRecord](sm, runHistoryTable)
	if err != nil {
		return nil, err
	}
	return &RunManager{store: store}, nil
}

// Begin records the start of a run and returns its record.
func (rm *RunManager) Begin(kind RunKind) (*RunRecord, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	record := &RunRecord{
		ID:      fmt.Sprintf("%x", b),
		Kind:    kind,
		Started: time.Now().UTC(),
		Status:  RunStatusRunning,
	}

	if err := rm.store.Set(record.ID, *record); err != nil {
		return nil, fmt.Errorf("failed to store run record: %w", err)
	}
	return record, nil
}

// Complete marks a run as finished. A non-empty errMsg marks it failed.
func (rm *RunManager) Complete(id string, errMsg string) error {
	record, err := rm.store.Get(id)
	if err != nil {
		return fmt.Errorf("run not found: %s", id)
	}

	now := time.Now().UTC()
	record.Finished = &now

	if errMsg != "" {
		record.Status = RunStatusFailed
		record.Message = errMsg
	} else {
		record.Status = RunStatusCompleted
		record.Message = "completed successfully"
	}

	return rm.store.Set(id, record)
}

// Recent returns the most recently started runs, newest first.
func (rm *RunManager) Recent(limit int) ([]RunRecord, error) {
	query := fmt.Sprintf("SELECT value FROM %s ORDER BY json_extract(value, '$.started') DESC LIMIT %d", rm.store.Table, limit)
	return rm.store.Exec(query)
}
