// service/auth/authService_test.go
package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"carrental/model"
	authrepo "carrental/repository/auth"
	"carrental/util/hash"
	jwtutil "carrental/util/jwt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byEmailFn        func(ctx context.Context, email string) (*model.User, error)
	byIDFn           func(ctx context.Context, id int64) (*model.User, error)
	createFn         func(ctx context.Context, u *model.User) error
	updateProfileFn  func(ctx context.Context, id int64, email, username string) error
	updatePasswordFn func(ctx context.Context, id int64, passwordHash string) error
}

var _ authrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockRepo) UpdateProfile(ctx context.Context, id int64, email, username string) error {
	if m.updateProfileFn == nil {
		return nil
	}
	return m.updateProfileFn(ctx, id, email, username)
}

func (m *mockRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if m.updatePasswordFn == nil {
		return nil
	}
	return m.updatePasswordFn(ctx, id, passwordHash)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func registerReq() model.RegisterReq {
	return model.RegisterReq{
		Username:          "nino",
		Email:             "USER@Example.COM",
		Password:          "supersecret",
		SecurityQuestion1: "First pet?",
		SecurityAnswer1:   "Rex",
		SecurityQuestion2: "Birth city?",
		SecurityAnswer2:   "Kutaisi",
		SecurityQuestion3: "Favourite car?",
		SecurityAnswer3:   "Volga",
	}
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	var created *model.User
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			created = u
			return nil
		},
	}
	svc := New(m, "test-secret", 1)

	u, tok, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.NotEqual(t, "supersecret", created.PasswordHash)
	require.Equal(t, "First pet?", created.Security.Questions[0])
	require.True(t, hash.CheckAnswer(created.Security.Hashes[0], "rex"))

	id, err := jwtutil.ParseAuth(tok, "test-secret")
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
}

func TestRegister_BadInput(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret", 1)

	req := registerReq()
	req.Password = "123"
	_, _, err := svc.Register(context.Background(), req)
	require.Equal(t, ErrBadInput, Code(err))
}

func TestRegister_EmailTaken(t *testing.T) {
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 9, Email: email}, nil
		},
	}
	_, _, err := New(m, "test-secret", 1).Register(context.Background(), registerReq())
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestRegister_UniqueViolationRace(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
		},
	}
	_, _, err := New(m, "test-secret", 1).Register(context.Background(), registerReq())
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestRegister_CreateError(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return errors.New("db down")
		},
	}
	_, _, err := New(m, "test-secret", 1).Register(context.Background(), registerReq())
	require.Error(t, err)
	require.Equal(t, ErrCode(""), Code(err))
}

func TestLogin_Success(t *testing.T) {
	hashed := mustHash(t, "supersecret")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			require.Equal(t, "user@example.com", email)
			return &model.User{ID: 7, Email: email, PasswordHash: hashed}, nil
		},
	}
	u, tok, err := New(m, "test-secret", 1).Login(context.Background(), model.LoginReq{
		Email:    "User@Example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(7), u.ID)
}

func TestLogin_Failures(t *testing.T) {
	hashed := mustHash(t, "correct-password")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "user@example.com" {
				return &model.User{ID: 101, Email: email, PasswordHash: hashed}, nil
			}
			return nil, pgx.ErrNoRows
		},
	}
	svc := New(m, "test-secret", 1)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: " ", Password: ""})
	require.Equal(t, ErrBadInput, Code(err))

	_, _, err = svc.Login(context.Background(), model.LoginReq{Email: "missing@example.com", Password: "x"})
	require.Equal(t, ErrInvalidCreds, Code(err))

	_, _, err = svc.Login(context.Background(), model.LoginReq{Email: "user@example.com", Password: "wrong"})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_LookupError(t *testing.T) {
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, errors.New("db down")
		},
	}
	_, _, err := New(m, "test-secret", 1).Login(context.Background(), model.LoginReq{
		Email:    "user@example.com",
		Password: "supersecret",
	})
	require.ErrorContains(t, err, "db down")
	require.Equal(t, ErrCode(""), Code(err))
}

func TestPassword_ByteLimit(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret", 1)

	req := registerReq()
	req.Password = strings.Repeat("a", 73)
	_, _, err := svc.Register(context.Background(), req)
	require.Equal(t, ErrBadInput, Code(err))

	// 36 runes, 72 bytes
	req.Password = strings.Repeat("ж", 36)
	_, _, err = svc.Register(context.Background(), req)
	require.NoError(t, err)

	req.Password = strings.Repeat("ж", 37)
	_, _, err = svc.Register(context.Background(), req)
	require.Equal(t, ErrBadInput, Code(err))

	err = svc.RecoverPassword(context.Background(), model.RecoverReq{
		Email:       "user@example.com",
		Answers:     [3]string{"a", "b", "c"},
		NewPassword: strings.Repeat("a", 73),
	})
	require.Equal(t, ErrBadInput, Code(err))
}

func TestMe_NotFound(t *testing.T) {
	_, err := New(&mockRepo{}, "s", 1).Me(context.Background(), 5)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestUpdateProfile(t *testing.T) {
	var gotEmail, gotName string
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Email: "old@example.com", Username: "old"}, nil
		},
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "taken@example.com" {
				return &model.User{ID: 99, Email: email}, nil
			}
			return nil, pgx.ErrNoRows
		},
		updateProfileFn: func(ctx context.Context, id int64, email, username string) error {
			gotEmail, gotName = email, username
			return nil
		},
	}
	svc := New(m, "s", 1)

	email, name := "New@Example.com", "newname"
	u, err := svc.UpdateProfile(context.Background(), 3, model.UpdateProfileReq{Email: &email, Username: &name})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", u.Email)
	require.Equal(t, "new@example.com", gotEmail)
	require.Equal(t, "newname", gotName)

	taken := "taken@example.com"
	_, err = svc.UpdateProfile(context.Background(), 3, model.UpdateProfileReq{Email: &taken})
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestRecoverPassword(t *testing.T) {
	sec, err := hashSecurity(registerReq())
	require.NoError(t, err)

	var newHash string
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 4, Email: email, Security: sec}, nil
		},
		updatePasswordFn: func(ctx context.Context, id int64, h string) error {
			newHash = h
			return nil
		},
	}
	svc := New(m, "s", 1)

	err = svc.RecoverPassword(context.Background(), model.RecoverReq{
		Email:       "user@example.com",
		Answers:     [3]string{"rex", "kutaisi", "wrong"},
		NewPassword: "brandnew",
	})
	require.Equal(t, ErrWrongAnswer, Code(err))
	var wa WrongAnswerError
	require.ErrorAs(t, err, &wa)
	require.Equal(t, 3, wa.Question)
	require.Empty(t, newHash)

	err = svc.RecoverPassword(context.Background(), model.RecoverReq{
		Email:       "user@example.com",
		Answers:     [3]string{" REX ", "kutaisi", "volga"},
		NewPassword: "brandnew",
	})
	require.NoError(t, err)
	require.True(t, hash.Check(newHash, "brandnew"))
}

func TestCheckSecurityAnswers_FirstWrong(t *testing.T) {
	sec, err := hashSecurity(registerReq())
	require.NoError(t, err)

	require.Equal(t, 0, CheckSecurityAnswers(sec, [3]string{"rex", "kutaisi", "volga"}))
	require.Equal(t, 1, CheckSecurityAnswers(sec, [3]string{"x", "y", "z"}))
	require.Equal(t, 2, CheckSecurityAnswers(sec, [3]string{"rex", "y", "z"}))
	require.Equal(t, 1, CheckSecurityAnswers(model.SecurityAnswers{}, [3]string{"a", "b", "c"}))
}

func TestCodeExtractor(t *testing.T) {
	require.Equal(t, ErrEmailTaken, Code(wrap(ErrEmailTaken, "x")))
	require.Equal(t, ErrWrongAnswer, Code(WrongAnswerError{Question: 2}))
	require.Equal(t, ErrCode(""), Code(errors.New("plain")))
}

func TestRecoverPassword_NoAnswersSet(t *testing.T) {
	req := registerReq()
	req.SecurityAnswer1, req.SecurityAnswer2, req.SecurityAnswer3 = "", "", ""
	sec, err := hashSecurity(req)
	require.NoError(t, err)

	require.Equal(t, 1, CheckSecurityAnswers(sec, [3]string{"", "", ""}))
}
