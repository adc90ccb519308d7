package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/atm-ledger/internal/models"
	"github.com/sheikh-saqib/atm-ledger/internal/storage/memory"
)

// testNow is the fixed clock of the tests; it formats as "2025-03-14 09:26:53".
var testNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)

const testStamp = "2025-03-14 09:26:53"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newTestLedger returns an in-memory ledger with a fixed clock.
func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *memory.SnapshotStore, *memory.HistoryLog) {
	t.Helper()
	store := memory.NewSnapshotStore()
	history := memory.NewHistoryLog()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewLedger(store, history, opts...), store, history
}

// mustCreate creates id with balance, deposited if positive.
func mustCreate(t *testing.T, l *Ledger, id, pin, balance string) *Account {
	t.Helper()
	a, err := l.CreateAccount(context.Background(), id, pin)
	if err != nil {
		t.Fatalf("CreateAccount(%q) err=%v", id, err)
	}
	if b := dec(balance); b.IsPositive() {
		if err := l.Deposit(context.Background(), id, b); err != nil {
			t.Fatalf("Deposit(%q, %s) err=%v", id, b, err)
		}
	}
	return a
}

func wantBalance(t *testing.T, l *Ledger, id, want string) {
	t.Helper()
	a, err := l.Account(id)
	if err != nil {
		t.Fatalf("Account(%q) err=%v", id, err)
	}
	if !a.Balance().Equal(dec(want)) {
		t.Errorf("balance of %q = %s, want %s", id, a.Balance(), want)
	}
}

// pins returns a PINPrompt answering the given PINs in order.
func pins(answers ...string) PINPrompt {
	return func(attempt, remaining int) (string, error) {
		if attempt > len(answers) {
			return "", errors.New("no more answers")
		}
		return answers[attempt-1], nil
	}
}

type failingStore struct{}

func (failingStore) Load(context.Context) ([]models.AccountRecord, error) {
	return nil, errors.New("disk on fire")
}
func (failingStore) Save(context.Context, []models.AccountRecord) error {
	return errors.New("disk on fire")
}

type failingHistory struct{}

func (failingHistory) Append(context.Context, string, string) error { return errors.New("disk full") }
func (failingHistory) Lines(context.Context, string) ([]string, error) {
	return nil, errors.New("disk full")
}
func (failingHistory) Remove(context.Context, string) error { return errors.New("disk full") }

type published struct {
	topic, key string
	event      any
}

type recordingPublisher struct {
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.events = append(p.events, published{topic, key, event})
	return p.err
}

// blockingPublisher waits for the context to end, like a writer facing a dead broker.
type blockingPublisher struct {
	hadDeadline bool
}

func (p *blockingPublisher) Publish(ctx context.Context, _, _ string, _ any) error {
	_, p.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return ctx.Err()
}
