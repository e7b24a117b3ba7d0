package auth

import (
	"context"
	"errors"
	"strings"

	"carrental/model"
	authrepo "carrental/repository/auth"
	"carrental/util/hash"
	jwtutil "carrental/util/jwt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	minPasswordLen = 6
	// bcrypt rejects longer inputs
	maxPasswordBytes = 72
)

func passwordLenOK(p string) bool {
	return len(p) >= minPasswordLen && len(p) <= maxPasswordBytes
}

type Repo = authrepo.Repo

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	Me(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileReq) (*model.User, error)
	RecoverPassword(ctx context.Context, req model.RecoverReq) error
}

type service struct {
	ur       Repo
	secret   string
	ttlHours int
}

func New(ur Repo, secret string, ttlHours int) Service {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &service{ur: ur, secret: secret, ttlHours: ttlHours}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// lookupEmail treats "no rows" as a nil user.
func (s *service) lookupEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.ur.ByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" || !passwordLenOK(req.Password) {
		return nil, "", makeErr(ErrBadInput)
	}

	existing, err := s.lookupEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", makeErr(ErrEmailTaken)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}
	sec, err := hashSecurity(req)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Security:     sec,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, "", makeErr(ErrEmailTaken)
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, jwtutil.RoleUser, s.ttlHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", makeErr(ErrBadInput)
	}
	u, err := s.lookupEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", makeErr(ErrInvalidCreds)
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", makeErr(ErrInvalidCreds)
	}
	token, err := jwtutil.Issue(s.secret, u.ID, jwtutil.RoleUser, s.ttlHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Me(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileReq) (*model.User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			return nil, wrap(ErrBadInput, "username is empty")
		}
		u.Username = name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return nil, wrap(ErrBadInput, "email is empty")
		}
		if email != normalizeEmail(u.Email) {
			other, err := s.lookupEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != userID {
				return nil, makeErr(ErrEmailTaken)
			}
		}
		u.Email = email
	}

	if err := s.ur.UpdateProfile(ctx, userID, u.Email, u.Username); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrEmailTaken)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) RecoverPassword(ctx context.Context, req model.RecoverReq) error {
	if !passwordLenOK(req.NewPassword) {
		return wrap(ErrBadInput, "password must be 6 to 72 bytes")
	}
	u, err := s.lookupEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return err
	}
	if u == nil {
		return makeErr(ErrNotFound)
	}
	if n := CheckSecurityAnswers(u.Security, req.Answers); n != 0 {
		return WrongAnswerError{Question: n}
	}

	hashed, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.ur.UpdatePassword(ctx, u.ID, hashed)
}
