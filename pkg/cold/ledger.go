package cold

import (
	"time"

	permafrost "github.com/permafrost-sh/permafrost/pkg"
)

// Entry is one tracked cold storage file. Field names are part of the
// persisted record format and must not change.
type Entry struct {
	Path     string    `json:"path"`
	SHA256   string    `json:"sha256"`
	Size     int64     `json:"size"`
	BackedUp time.Time `json:"backed_up"`
}

// Ledger is the per-machine checksum record set. Entries are upserted on
// successful upload and never deleted automatically: a file removed locally
// stays tracked because its remote copy is the archival one.
type Ledger struct {
	store *permafrost.TypeStore[Entry]
}

// LedgerTable returns the sqlite table name for a machine's ledger.
func LedgerTable(machine string) string {
	return permafrost.SanitizeTableName(machine) + "_cold_checksums"
}

func NewLedger(sm *permafrost.StoreManager, machine string) (*Ledger, error) {
	store, err := permafrost.NewTypeStore[Entry](sm, LedgerTable(machine))
	if err != nil {
		return nil, err
	}
	return &Ledger{store: store}, nil
}

// Load returns every tracked entry keyed by absolute local path.
func (l *Ledger) Load() (map[string]Entry, error) {
	return l.store.All()
}

// Get returns the entry for an exact path, or permafrost.ErrNoRecord.
func (l *Ledger) Get(path string) (Entry, error) {
	return l.store.Get(path)
}

// PutAll upserts the batch in a single transaction.
func (l *Ledger) PutAll(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	values := make(map[string]Entry, len(entries))
	for _, e := range entries {
		values[e.Path] = e
	}
	return l.store.SetMany(values)
}
