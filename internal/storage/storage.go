// Package storage opens the snapshot and history backends selected by the configuration.
package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/sheikh-saqib/atm-ledger/internal/config"
	interfaces "github.com/sheikh-saqib/atm-ledger/internal/interfaces"
	"github.com/sheikh-saqib/atm-ledger/internal/storage/file"
	"github.com/sheikh-saqib/atm-ledger/internal/storage/memory"
	"github.com/sheikh-saqib/atm-ledger/internal/storage/postgres"
)

// Backend is an opened pair of ledger stores.
type Backend struct {
	Snapshots interfaces.SnapshotStore
	History   interfaces.HistoryLog
	close     func() error
}

// Close releases the backend resources.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open returns the backend configured in c.
func Open(ctx context.Context, c config.Config) (*Backend, error) {
	switch c.Store {
	case config.StoreFile:
		if err := os.MkdirAll(c.HistoryDir, 0755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
		return &Backend{
			Snapshots: file.NewSnapshotStore(c.DataFile),
			History:   file.NewHistoryLog(c.HistoryDir),
		}, nil
	case config.StoreMemory:
		return &Backend{
			Snapshots: memory.NewSnapshotStore(),
			History:   memory.NewHistoryLog(),
		}, nil
	case config.StorePostgres:
		p, err := postgres.Open(ctx, c.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &Backend{Snapshots: p, History: p, close: p.Close}, nil
	}
	return nil, fmt.Errorf("unknown store %q", c.Store)
}
