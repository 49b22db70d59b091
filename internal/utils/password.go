package utils

import "golang.org/x/crypto/bcrypt"

// HashPIN returns a salted bcrypt hash of the PIN using the given cost.
// Two calls with the same PIN produce different hashes.
func HashPIN(pin string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPIN safely compares a bcrypt hash and a plain PIN.
func VerifyPIN(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
