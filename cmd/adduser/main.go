package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"carrental/model"
	authrepo "carrental/repository/auth"
	walletrepo "carrental/repository/wallet"
	authsvc "carrental/service/auth"
	"carrental/util/database"

	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

// accounts is what the command needs from the data layer.
type accounts interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) error
	Close()
}

type opener func(ctx context.Context, dsn string) (accounts, error)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr, openPostgres); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, open opener) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email address")
	username := fs.String("user", "", "Username")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	balanceFlag := fs.String("balance", "0", "Opening wallet balance")
	dsn := fs.String("db", "", "PostgreSQL DSN (defaults to $DATABASE_URL)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var missing []string
	if *email == "" {
		missing = append(missing, "email")
	}
	if *username == "" {
		missing = append(missing, "user")
	}
	if len(missing) > 0 {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> -user <username> [-password <password>] [-balance <amount>] [-db <dsn>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	balance, err := decimal.NewFromString(*balanceFlag)
	if err != nil || balance.IsNegative() {
		return fmt.Errorf("invalid balance %q", *balanceFlag)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}
	if *dsn == "" {
		return fmt.Errorf("no database: pass -db or set DATABASE_URL")
	}

	acc, err := open(ctx, *dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer acc.Close()

	u, err := acc.Register(ctx, model.RegisterReq{Username: *username, Email: *email, Password: password})
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return fmt.Errorf("user %s already exists", *email)
		case authsvc.ErrBadInput:
			return fmt.Errorf("invalid user data (password needs at least 6 characters)")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if balance.IsPositive() {
		if err := acc.Deposit(ctx, u.ID, balance); err != nil {
			return fmt.Errorf("user %d created but deposit failed: %w", u.ID, err)
		}
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", u.Email, u.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

type pgAccounts struct {
	db      *database.DB
	auth    authsvc.Service
	wallets walletrepo.Repo
}

func openPostgres(ctx context.Context, dsn string) (accounts, error) {
	db, err := database.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	// the token is discarded, so the secret is irrelevant
	return &pgAccounts{db: db, auth: authsvc.New(authrepo.New(db), "adduser", 1), wallets: walletrepo.New(db)}, nil
}

func (a *pgAccounts) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	u, _, err := a.auth.Register(ctx, req)
	return u, err
}

func (a *pgAccounts) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (err error) {
	tx, err := a.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()
	if _, err = a.wallets.UpdateBalance(ctx, tx, userID, amount); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (a *pgAccounts) Close() { a.db.Close() }
