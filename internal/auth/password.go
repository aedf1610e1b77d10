package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt reads. Longer input would
// be silently truncated, so it is rejected instead.
const MaxPasswordBytes = 72

// HashPassword returns a salted bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, bcrypt.DefaultCost)
}

// HashPasswordCost is HashPassword with an explicit bcrypt cost.
func HashPasswordCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether candidate hashes to storedHash using the salt
// embedded in storedHash. Malformed hashes and candidates longer than
// MaxPasswordBytes never verify.
func VerifyPassword(candidate, storedHash string) bool {
	if storedHash == "" || len(candidate) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)) == nil
}
