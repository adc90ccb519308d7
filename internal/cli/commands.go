package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/sheikh-saqib/atm-ledger/internal/ledger"
)

type loginCmd struct {
	user string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "open an interactive ATM session" }
func (*loginCmd) Usage() string {
	return `login -u <username>

  Logs into the account, creating it on first use, and shows the ATM menu.
  The "admin" username opens the admin menu.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "username")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "-u is required")
		return subcommands.ExitUsageError
	}
	l, closeFn, err := OpenLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	if err := NewSession(l, os.Stdin, os.Stdout).Login(ctx, c.user); err != nil {
		if !errors.Is(err, ledger.ErrAuthenticationFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type adminCmd struct{}

func (*adminCmd) Name() string     { return "admin" }
func (*adminCmd) Synopsis() string { return "open the interactive admin panel" }
func (*adminCmd) Usage() string {
	return `admin

  Lists, deletes and resets accounts after asking for the admin PIN.
`
}
func (*adminCmd) SetFlags(f *flag.FlagSet) {}

func (*adminCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "no arguments expected")
		return subcommands.ExitUsageError
	}
	l, closeFn, err := OpenLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	if err := NewSession(l, os.Stdin, os.Stdout).Admin(ctx); err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type reportCmd struct {
	user string
	pin  string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print the full statement of an account" }
func (*reportCmd) Usage() string {
	return `report -u <username> -pin <pin>

  Prints every transaction ever recorded for the account, oldest first.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "username")
	f.StringVar(&c.pin, "pin", "", "account PIN")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "-u is required")
		return subcommands.ExitUsageError
	}
	l, closeFn, err := OpenLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	// a single PIN is given on the command line, every attempt repeats it.
	acct, err := l.Authenticate(c.user, func(int, int) (string, error) { return c.pin, nil })
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := acct.PrintLog(ctx, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
