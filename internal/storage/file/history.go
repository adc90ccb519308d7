package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	interfaces "github.com/sheikh-saqib/atm-ledger/internal/interfaces"
)

// StatementSuffix is appended to the account id to name its history file.
const StatementSuffix = "_statement.txt"

// HistoryLog keeps one "<id>_statement.txt" file per account in a directory.
// Every Append opens, writes and closes the file, so no handle is held
// between operations.
type HistoryLog struct {
	dir string
}

// NewHistoryLog returns a HistoryLog rooted at dir.
func NewHistoryLog(dir string) *HistoryLog {
	return &HistoryLog{dir: dir}
}

// Filename is the statement file of accountID.
func (h *HistoryLog) Filename(accountID string) (string, error) {
	if accountID == "" || accountID == "." || accountID == ".." || strings.ContainsAny(accountID, `/\`) {
		return "", fmt.Errorf("invalid account id %q for a statement file", accountID)
	}
	return filepath.Join(h.dir, accountID+StatementSuffix), nil
}

// Append writes line at the end of the account statement file, creating it if needed.
func (h *HistoryLog) Append(ctx context.Context, accountID, line string) error {
	name, err := h.Filename(accountID)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("writing to statement %q: %w", name, err)
	}
	return f.Close()
}

// Lines reads the statement file, oldest line first.
func (h *HistoryLog) Lines(ctx context.Context, accountID string) ([]string, error) {
	name, err := h.Filename(accountID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading statement %q: %w", name, err)
	}
	return lines, nil
}

// Remove deletes the statement file if it exists.
func (h *HistoryLog) Remove(ctx context.Context, accountID string) error {
	name, err := h.Filename(accountID)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

var _ interfaces.HistoryLog = (*HistoryLog)(nil)
