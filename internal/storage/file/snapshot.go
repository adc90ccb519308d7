// Package file stores the ledger on the local filesystem: one JSON snapshot
// of all accounts, and one append-only statement file per account.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	interfaces "github.com/sheikh-saqib/atm-ledger/internal/interfaces"
	"github.com/sheikh-saqib/atm-ledger/internal/models"
)

// SnapshotVersion is the version written in every snapshot header.
const SnapshotVersion = 1

// Meta is the snapshot header.
type Meta struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
}

// Snapshot is the on-disk layout of the snapshot file.
type Snapshot struct {
	Meta     Meta                   `json:"_meta"`
	Accounts []models.AccountRecord `json:"accounts"`
}

// SnapshotStore keeps the account snapshot in a single JSON file.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore returns a store reading and writing path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Path is the snapshot file path.
func (s *SnapshotStore) Path() string { return s.path }

// Load decodes the snapshot file. A missing file yields an error wrapping fs.ErrNotExist.
func (s *SnapshotStore) Load(ctx context.Context) ([]models.AccountRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snap Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %q: %w", s.path, err)
	}
	if snap.Meta.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot %q: unsupported version %d", s.path, snap.Meta.Version)
	}
	return snap.Accounts, nil
}

// Save writes the snapshot to a temporary file first, then renames it over
// the previous one so a failed write never leaves a truncated snapshot.
func (s *SnapshotStore) Save(ctx context.Context, records []models.AccountRecord) error {
	snap := Snapshot{
		Meta:     Meta{Version: SnapshotVersion, SavedAt: time.Now()},
		Accounts: records,
	}
	tmp := s.path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}

var _ interfaces.SnapshotStore = (*SnapshotStore)(nil)
