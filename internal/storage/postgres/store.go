package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/lib/pq" // registers the "postgres" driver

	interfaces "github.com/sheikh-saqib/atm-ledger/internal/interfaces" // interfaces SnapshotStore, HistoryLog
	"github.com/sheikh-saqib/atm-ledger/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id      TEXT PRIMARY KEY,
	pin     TEXT NOT NULL,
	balance NUMERIC NOT NULL CHECK (balance >= 0)
);
CREATE TABLE IF NOT EXISTS snapshot_meta (
	id       INT PRIMARY KEY,
	saved_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS account_history (
	seq        BIGSERIAL PRIMARY KEY,
	account_id TEXT NOT NULL,
	line       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS account_history_account_id ON account_history (account_id, seq);
`

// PostgresLedgerStore keeps the account snapshot and the account histories
// in postgres. It implements both interfaces.SnapshotStore and interfaces.HistoryLog.
type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

// Open connects to dsn and creates the tables if needed.
func Open(ctx context.Context, dsn string) (*PostgresLedgerStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	p := NewPostgresLedgerStore(db)
	if err := p.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresLedgerStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PostgresLedgerStore) Close() error {
	return p.db.Close()
}

func (p *PostgresLedgerStore) Load(ctx context.Context) ([]models.AccountRecord, error) {
	var savedAt sql.NullTime
	err := p.db.QueryRowContext(ctx, `SELECT saved_at FROM snapshot_meta WHERE id = 1`).Scan(&savedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("postgres snapshot: %w", fs.ErrNotExist)
	}
	if err != nil {
		return nil, err
	}

	const query = `SELECT id, pin, balance FROM accounts`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AccountRecord
	for rows.Next() {
		var r models.AccountRecord
		if err := rows.Scan(&r.ID, &r.PIN, &r.Balance); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Save replaces the whole accounts table in one transaction.
func (p *PostgresLedgerStore) Save(ctx context.Context, records []models.AccountRecord) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if _, err = dbTx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return err
	}

	const insert = `INSERT INTO accounts (id, pin, balance) VALUES ($1, $2, $3)`
	for _, r := range records {
		if _, err = dbTx.ExecContext(ctx, insert, r.ID, r.PIN, r.Balance); err != nil {
			return err
		}
	}

	const meta = `INSERT INTO snapshot_meta (id, saved_at) VALUES (1, now())
	ON CONFLICT (id) DO UPDATE SET saved_at = excluded.saved_at`
	if _, err = dbTx.ExecContext(ctx, meta); err != nil {
		return err
	}
	return dbTx.Commit()
}

func (p *PostgresLedgerStore) Append(ctx context.Context, accountID, line string) error {
	const query = `INSERT INTO account_history (account_id, line) VALUES ($1, $2)`

	_, err := p.db.ExecContext(ctx, query, accountID, line)
	return err
}

func (p *PostgresLedgerStore) Lines(ctx context.Context, accountID string) ([]string, error) {
	const query = `SELECT line FROM account_history WHERE account_id = $1 ORDER BY seq`

	rows, err := p.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (p *PostgresLedgerStore) Remove(ctx context.Context, accountID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM account_history WHERE account_id = $1`, accountID)
	return err
}

var (
	_ interfaces.SnapshotStore = (*PostgresLedgerStore)(nil)
	_ interfaces.HistoryLog    = (*PostgresLedgerStore)(nil)
)
