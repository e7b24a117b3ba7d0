package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleUser = "user"

func Issue(secret string, userID int64, role string, ttlHours int) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Duration(ttlHours) * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseAuth validates an Authorization header value ("Bearer <token>" or a
// bare token) and returns the subject user id.
func ParseAuth(authHeader string, secret string) (int64, error) {
	tokenStr := strings.TrimSpace(authHeader)
	if tokenStr == "" {
		return 0, errors.New("missing authorization")
	}
	if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return 0, errors.New("missing token")
	}

	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}
	if !tok.Valid {
		return 0, errors.New("invalid token")
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}
	return SubjectID(mc)
}

// SubjectID reads the numeric "sub" claim. JSON numbers decode as float64.
func SubjectID(mc jwt.MapClaims) (int64, error) {
	switch v := mc["sub"].(type) {
	case float64:
		if v <= 0 {
			return 0, errors.New("invalid sub claim")
		}
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, errors.New("sub missing in claims")
	}
}
