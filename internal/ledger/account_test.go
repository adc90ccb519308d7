package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/atm-ledger/internal/storage/memory"
)

func TestDepositWithdraw(t *testing.T) {
	ctx := context.Background()
	l, _, history := newTestLedger(t)
	a := mustCreate(t, l, "alice", "1234", "0")

	if _, err := a.Deposit(ctx, dec("100.10")); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Withdraw(ctx, dec("0.10")); err != nil {
		t.Fatal(err)
	}
	if !a.Balance().Equal(dec("100")) {
		t.Fatalf("balance=%s want=100", a.Balance())
	}

	want := []string{
		testStamp + " - Withdrew: 0.1",
		testStamp + " - Deposited: 100.1",
	}
	if got := a.History(); !reflect.DeepEqual(got, want) {
		t.Errorf("History() = %q, want %q", got, want)
	}
	lines, _ := history.Lines(ctx, "alice")
	if len(lines) != 2 || lines[0] != want[1] || lines[1] != want[0] {
		t.Errorf("statement = %q, want oldest first %q", lines, []string{want[1], want[0]})
	}
}

func TestDepositThenWithdrawRestoresBalance(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)
	a := mustCreate(t, l, "alice", "1234", "42.5")
	before, n := a.Balance(), len(a.History())

	if _, err := a.Deposit(ctx, dec("17.25")); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Withdraw(ctx, dec("17.25")); err != nil {
		t.Fatal(err)
	}
	if !a.Balance().Equal(before) {
		t.Errorf("balance=%s want=%s", a.Balance(), before)
	}
	if got := len(a.History()); got != n+2 {
		t.Errorf("history gained %d entries, want 2", got-n)
	}
}

func TestInvalidAmounts(t *testing.T) {
	ctx := context.Background()
	l, _, history := newTestLedger(t)
	a := mustCreate(t, l, "alice", "1234", "10")

	for _, amt := range []string{"0", "-5", "-0.01"} {
		if _, err := a.Deposit(ctx, dec(amt)); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Deposit(%s) err=%v, want ErrInvalidAmount", amt, err)
		}
		if _, err := a.Withdraw(ctx, dec(amt)); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Withdraw(%s) err=%v, want ErrInvalidAmount", amt, err)
		}
	}
	if !a.Balance().Equal(dec("10")) {
		t.Errorf("balance=%s want=10", a.Balance())
	}
	if lines, _ := history.Lines(ctx, "alice"); len(lines) != 1 {
		t.Errorf("rejected operations were logged: %q", lines)
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	l, _, history := newTestLedger(t)
	a := mustCreate(t, l, "alice", "1234", "100")

	if _, err := a.Withdraw(ctx, dec("150")); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Withdraw err=%v, want ErrInsufficientFunds", err)
	}
	if !a.Balance().Equal(dec("100")) {
		t.Errorf("balance=%s want=100", a.Balance())
	}
	if got := len(a.History()); got != 1 {
		t.Errorf("history len=%d want=1", got)
	}
	if lines, _ := history.Lines(ctx, "alice"); len(lines) != 1 {
		t.Errorf("statement len=%d want=1", len(lines))
	}

	// the whole balance can be withdrawn
	if _, err := a.Withdraw(ctx, dec("100")); err != nil {
		t.Fatalf("Withdraw(all) err=%v", err)
	}
	if !a.Balance().IsZero() {
		t.Errorf("balance=%s want=0", a.Balance())
	}
}

func TestRecentHistoryIsBounded(t *testing.T) {
	ctx := context.Background()
	l, _, history := newTestLedger(t)
	a := mustCreate(t, l, "alice", "1234", "0")

	for i := 1; i <= 25; i++ {
		if _, err := a.Deposit(ctx, decimal.NewFromInt(int64(i))); err != nil {
			t.Fatal(err)
		}
		if n := len(a.History()); n > MaxRecentHistory {
			t.Fatalf("history len=%d after %d deposits", n, i)
		}
	}
	h := a.History()
	if len(h) != MaxRecentHistory {
		t.Fatalf("history len=%d want=%d", len(h), MaxRecentHistory)
	}
	if want := testStamp + " - Deposited: 25"; h[0] != want {
		t.Errorf("most recent = %q, want %q", h[0], want)
	}
	if want := testStamp + " - Deposited: 16"; h[len(h)-1] != want {
		t.Errorf("oldest kept = %q, want %q", h[len(h)-1], want)
	}
	if lines, _ := history.Lines(ctx, "alice"); len(lines) != 25 {
		t.Errorf("statement len=%d want=25", len(lines))
	}
}

func TestHistoryIsACopy(t *testing.T) {
	l, _, _ := newTestLedger(t)
	a := mustCreate(t, l, "alice", "1234", "5")
	h := a.History()
	h[0] = "tampered"
	if a.History()[0] == "tampered" {
		t.Fatal("History() exposes the internal slice")
	}
}

func TestRecordNoteOnlyTouchesRecentHistory(t *testing.T) {
	ctx := context.Background()
	l, _, history := newTestLedger(t)
	a := mustCreate(t, l, "alice", "1234", "0")

	a.RecordNote("hello")
	if h := a.History(); len(h) != 1 || h[0] != "hello" {
		t.Errorf("History() = %q", h)
	}
	if lines, _ := history.Lines(ctx, "alice"); lines != nil {
		t.Errorf("statement = %q, want none", lines)
	}
}

func TestPrintLog(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)
	a := mustCreate(t, l, "alice", "1234", "0")

	var buf bytes.Buffer
	if err := a.PrintLog(ctx, &buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "No transactions found.\n" {
		t.Errorf("PrintLog on empty statement = %q", got)
	}

	a.Deposit(ctx, dec("100"))
	a.Withdraw(ctx, dec("30"))
	buf.Reset()
	if err := a.PrintLog(ctx, &buf); err != nil {
		t.Fatal(err)
	}
	want := testStamp + " - Deposited: 100\n" + testStamp + " - Withdrew: 30\n"
	if got := buf.String(); got != want {
		t.Errorf("PrintLog = %q, want %q", got, want)
	}
}

func TestHistoryFailureDoesNotAbortMutation(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(memory.NewSnapshotStore(), failingHistory{})
	a, err := l.CreateAccount(ctx, "alice", "1234")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Deposit(ctx, dec("10")); err != nil {
		t.Fatalf("Deposit err=%v", err)
	}
	if !a.Balance().Equal(dec("10")) {
		t.Errorf("balance=%s want=10", a.Balance())
	}
	if len(a.History()) != 1 {
		t.Errorf("recent history len=%d want=1", len(a.History()))
	}
	if _, err := a.Statement(ctx); !errors.Is(err, ErrPersistence) {
		t.Errorf("Statement err=%v, want ErrPersistence", err)
	}
}

// TestRandomOperations runs random deposits, withdrawals and transfers and
// checks balances never go negative and money is conserved.
func TestRandomOperations(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		mustCreate(t, l, id, "0000", "0")
	}

	rnd := rand.New(rand.NewSource(7))
	total := decimal.Zero
	for i := 0; i < 500; i++ {
		id := ids[rnd.Intn(len(ids))]
		amount := decimal.New(rnd.Int63n(10000)-1000, -2) // some non positive amounts
		switch rnd.Intn(3) {
		case 0:
			if err := l.Deposit(ctx, id, amount); err == nil {
				total = total.Add(amount)
			}
		case 1:
			if err := l.Withdraw(ctx, id, amount); err == nil {
				total = total.Sub(amount)
			}
		case 2:
			_ = l.Transfer(ctx, id, ids[rnd.Intn(len(ids))], amount)
		}

		sum := decimal.Zero
		for _, id := range ids {
			a, _ := l.Account(id)
			if a.Balance().IsNegative() {
				t.Fatalf("step %d: negative balance %s for %s", i, a.Balance(), id)
			}
			if n := len(a.History()); n > MaxRecentHistory {
				t.Fatalf("step %d: history len %d for %s", i, n, id)
			}
			sum = sum.Add(a.Balance())
		}
		if !sum.Equal(total) {
			t.Fatalf("step %d: total balance %s, want %s", i, sum, total)
		}
	}
}

func ExampleAccount_PrintLog() {
	ctx := context.Background()
	l := NewLedger(memory.NewSnapshotStore(), memory.NewHistoryLog())
	a, _ := l.CreateAccount(ctx, "alice", "1234")
	var buf bytes.Buffer
	a.PrintLog(ctx, &buf)
	fmt.Print(buf.String())

	a.Deposit(ctx, decimal.NewFromInt(100))
	buf.Reset()
	a.PrintLog(ctx, &buf)
	_, text, _ := strings.Cut(buf.String(), " - ")
	fmt.Print(text)
	// Output:
	// No transactions found.
	// Deposited: 100
}
