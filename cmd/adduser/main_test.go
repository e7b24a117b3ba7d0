package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"carrental/model"
	authsvc "carrental/service/auth"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type takenErr struct{}

func (takenErr) Error() string         { return "email taken" }
func (takenErr) Code() authsvc.ErrCode { return authsvc.ErrEmailTaken }

type fakeAccounts struct {
	users    map[string]*model.User
	balances map[int64]decimal.Decimal
	closed   bool
}

func newFake() *fakeAccounts {
	return &fakeAccounts{users: map[string]*model.User{}, balances: map[int64]decimal.Decimal{}}
}

func (f *fakeAccounts) Register(_ context.Context, req model.RegisterReq) (*model.User, error) {
	key := strings.ToLower(req.Email)
	if _, ok := f.users[key]; ok {
		return nil, takenErr{}
	}
	u := &model.User{ID: int64(len(f.users) + 1), Email: key, Username: req.Username}
	f.users[key] = u
	return u, nil
}

func (f *fakeAccounts) Deposit(_ context.Context, userID int64, amount decimal.Decimal) error {
	f.balances[userID] = f.balances[userID].Add(amount)
	return nil
}

func (f *fakeAccounts) Close() { f.closed = true }

func (f *fakeAccounts) opener() opener {
	return func(context.Context, string) (accounts, error) { return f, nil }
}

func TestRun_Success(t *testing.T) {
	f := newFake()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)

	args := []string{"-email", "ana@example.com", "-user", "ana", "-password", "secret1", "-balance", "250.50", "-db", "postgres://x"}
	err := run(context.Background(), args, new(bytes.Buffer), stdout, stderr, f.opener())
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "User ana@example.com created successfully")
	assert.Equal(t, "250.5", f.balances[1].String())
	assert.True(t, f.closed)
}

func TestRun_DuplicateUser(t *testing.T) {
	f := newFake()
	args := []string{"-email", "ana@example.com", "-user", "ana", "-password", "secret1", "-db", "postgres://x"}

	require.NoError(t, run(context.Background(), args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), f.opener()))

	err := run(context.Background(), args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), f.opener())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)
	err := run(context.Background(), []string{"-password", "secret"}, new(bytes.Buffer), stdout, new(bytes.Buffer), newFake().opener())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags: email, user")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InteractivePassword(t *testing.T) {
	f := newFake()
	stdout := new(bytes.Buffer)
	stdin := bytes.NewBufferString("interactive_secret\n")

	args := []string{"-email", "i@example.com", "-user", "i", "-db", "postgres://x"}
	require.NoError(t, run(context.Background(), args, stdin, stdout, new(bytes.Buffer), f.opener()))

	assert.Contains(t, stdout.String(), "Password: ")
	assert.Contains(t, stdout.String(), "created successfully")
	assert.Empty(t, f.balances)
}

func TestRun_InteractivePassword_Empty(t *testing.T) {
	stdin := bytes.NewBufferString("\n")
	args := []string{"-email", "e@example.com", "-user", "e", "-db", "postgres://x"}

	err := run(context.Background(), args, stdin, new(bytes.Buffer), new(bytes.Buffer), newFake().opener())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password cannot be empty")
}

func TestRun_InvalidBalance(t *testing.T) {
	args := []string{"-email", "e@example.com", "-user", "e", "-password", "secret1", "-balance", "-5"}
	err := run(context.Background(), args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), newFake().opener())
	require.ErrorContains(t, err, "invalid balance")
}

func TestRun_EnvDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://from-env")
	var got string
	open := func(_ context.Context, dsn string) (accounts, error) {
		got = dsn
		return nil, errors.New("unreachable")
	}

	args := []string{"-email", "e@example.com", "-user", "e", "-password", "secret1"}
	err := run(context.Background(), args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), open)
	require.ErrorContains(t, err, "failed to open database")
	assert.Equal(t, "postgres://from-env", got)
}

func TestRun_NoDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	args := []string{"-email", "e@example.com", "-user", "e", "-password", "secret1"}
	err := run(context.Background(), args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), newFake().opener())
	require.ErrorContains(t, err, "no database")
}
