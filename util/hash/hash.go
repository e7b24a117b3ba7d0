package hash

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func Check(hashed, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

// NormalizeAnswer makes security answers case and whitespace insensitive.
func NormalizeAnswer(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}

func HashAnswer(a string) (string, error) {
	return HashPassword(NormalizeAnswer(a))
}

func CheckAnswer(hashed, a string) bool {
	return Check(hashed, NormalizeAnswer(a))
}
