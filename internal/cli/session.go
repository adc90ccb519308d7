package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/atm-ledger/internal/ledger"
)

// Session is one interactive conversation with the ledger.
type Session struct {
	l   *ledger.Ledger
	in  *bufio.Scanner
	out io.Writer
}

// NewSession reads answers from r and writes prompts and results to w.
func NewSession(l *ledger.Ledger, r io.Reader, w io.Writer) *Session {
	return &Session{l: l, in: bufio.NewScanner(r), out: w}
}

func (s *Session) println(a ...any) { fmt.Fprintln(s.out, a...) }

// ask prints prompt and reads one line. io.EOF means the user is gone.
func (s *Session) ask(prompt string) (string, error) {
	s.println(prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Session) askAmount(prompt string) (decimal.Decimal, error) {
	for {
		text, err := s.ask(prompt)
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := decimal.NewFromString(text)
		if err == nil {
			return amount, nil
		}
		s.println("Invalid amount.")
	}
}

func (s *Session) askChoice() (int, error) {
	text, err := s.ask("Enter choice:")
	if err != nil {
		return 0, err
	}
	choice, err := strconv.Atoi(text)
	if err != nil {
		return 0, nil
	}
	return choice, nil
}

// Login runs the user flow for id: account creation for an unknown id,
// PIN check, then the menu until the user exits. "admin" opens the admin flow.
func (s *Session) Login(ctx context.Context, id string) error {
	if id == ledger.AdminID {
		return s.Admin(ctx)
	}

	acct, err := s.l.Authenticate(id, func(attempt, remaining int) (string, error) {
		if attempt > 1 {
			s.println("Incorrect PIN. Attempts left:", remaining+1)
		}
		return s.ask("Enter PIN:")
	})
	switch {
	case errors.Is(err, ledger.ErrNewAccount):
		pin, err := s.ask("New user. Set 4-digit PIN:")
		if err != nil {
			return err
		}
		if _, err := s.l.CreateAccount(ctx, id, pin); err != nil {
			return err
		}
		s.println("User created. Login again.")
		return nil
	case errors.Is(err, ledger.ErrAuthenticationFailed):
		s.println("Too many attempts. Exiting.")
		return err
	case err != nil:
		return err
	}

	for {
		s.println("\n1. Check Balance\n2. Deposit\n3. Withdraw\n4. Transfer to Another User\n5. Mini Statement\n6. Monthly Report\n7. Exit")
		choice, err := s.askChoice()
		if errors.Is(err, io.EOF) {
			choice = 7
		} else if err != nil {
			return err
		}

		switch choice {
		case 1:
			s.println("Balance:", acct.Balance())
		case 2:
			err = s.deposit(ctx, id)
		case 3:
			err = s.withdraw(ctx, id)
		case 4:
			err = s.transfer(ctx, id)
		case 5:
			s.println("--- Mini Statement ---")
			for _, line := range acct.History() {
				s.println(line)
			}
		case 6:
			s.println("--- Monthly Report for:", id, "---")
			err = acct.PrintLog(ctx, s.out)
		case 7:
			_ = s.l.Save(ctx)
			s.println("Thank you! Logging out.")
			return nil
		default:
			s.println("Invalid choice")
		}
		if errors.Is(err, io.EOF) {
			_ = s.l.Save(ctx)
			return nil
		}
		if err != nil && !errors.Is(err, ledger.ErrPersistence) {
			return err
		}
	}
}

func (s *Session) deposit(ctx context.Context, id string) error {
	amount, err := s.askAmount("Enter deposit amount:")
	if err != nil {
		return err
	}
	switch err := s.l.Deposit(ctx, id, amount); {
	case errors.Is(err, ledger.ErrInvalidAmount):
		s.println("Amount must be positive.")
	case err != nil:
		return err
	default:
		s.println("Deposited", amount)
	}
	return nil
}

func (s *Session) withdraw(ctx context.Context, id string) error {
	amount, err := s.askAmount("Enter withdraw amount:")
	if err != nil {
		return err
	}
	switch err := s.l.Withdraw(ctx, id, amount); {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		s.println("Insufficient balance")
	case errors.Is(err, ledger.ErrInvalidAmount):
		s.println("Amount must be positive.")
	case err != nil:
		return err
	default:
		s.println("Withdrawn", amount)
	}
	return nil
}

func (s *Session) transfer(ctx context.Context, id string) error {
	recipient, err := s.ask("Enter recipient username:")
	if err != nil {
		return err
	}
	if !s.l.Exists(recipient) {
		s.println("User not found.")
		return nil
	}
	if recipient == id {
		s.println("Cannot transfer to self.")
		return nil
	}
	amount, err := s.askAmount("Enter amount to transfer:")
	if err != nil {
		return err
	}
	switch err := s.l.Transfer(ctx, id, recipient, amount); {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		s.println("Insufficient balance.")
	case errors.Is(err, ledger.ErrInvalidAmount):
		s.println("Amount must be positive.")
	case errors.Is(err, ledger.ErrRecipientNotFound):
		s.println("User not found.")
	case err != nil:
		return err
	default:
		s.println("Transferred", amount, "to", recipient)
	}
	return nil
}

// Admin runs the administrator flow: admin PIN check then the admin menu.
func (s *Session) Admin(ctx context.Context) error {
	pin, err := s.ask("Enter Admin PIN:")
	if err != nil {
		return err
	}
	ad, err := s.l.Admin(pin)
	if err != nil {
		s.println("Incorrect Admin PIN.")
		return err
	}
	s.println("Admin login successful.")

	for {
		s.println("\n--- Admin Menu ---\n1. View All Users\n2. View User Transactions\n3. Delete User\n4. Reset User PIN\n5. Exit")
		choice, err := s.askChoice()
		if errors.Is(err, io.EOF) {
			choice = 5
		} else if err != nil {
			return err
		}

		switch choice {
		case 1:
			s.println("--- All Users ---")
			accounts := ad.ListAccounts()
			sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
			for _, a := range accounts {
				s.println(a.ID, "- Balance:", a.Balance)
			}
		case 2:
			err = s.adminAccount("Enter username to view transactions:", func(id string) error {
				return ad.PrintLog(ctx, id, s.out)
			})
		case 3:
			err = s.adminAccount("Enter username to delete:", func(id string) error {
				if err := ad.DeleteAccount(ctx, id); err != nil {
					return err
				}
				s.println("User deleted.")
				return nil
			})
		case 4:
			err = s.adminAccount("Enter username to reset PIN:", func(id string) error {
				if !s.l.Exists(id) {
					return ledger.ErrAccountNotFound
				}
				newPIN, err := s.ask("Enter new PIN:")
				if err != nil {
					return err
				}
				if err := ad.ResetPIN(ctx, id, newPIN); err != nil {
					return err
				}
				s.println("PIN reset successfully.")
				return nil
			})
		case 5:
			s.println("Exiting admin panel.")
			return nil
		default:
			s.println("Invalid choice.")
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil && !errors.Is(err, ledger.ErrPersistence) {
			return err
		}
	}
}

// adminAccount asks for an account id and runs fn on it, reporting unknown ids.
func (s *Session) adminAccount(prompt string, fn func(id string) error) error {
	id, err := s.ask(prompt)
	if err != nil {
		return err
	}
	err = fn(id)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		s.println("User not found.")
		return nil
	}
	return err
}
