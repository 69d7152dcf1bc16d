package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLen    = 32
	keyLen     = 32
	iterations = 100000
)

// Hash derives a PBKDF2-SHA256 key from the password under a fresh random
// salt and returns hex(salt || key). Two calls with the same password
// produce different encodings.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)
	return hex.EncodeToString(append(salt, key...)), nil
}

// Verify re-derives the key from password and the salt embedded in encoded
// and compares in constant time. Malformed encodings verify false, they
// never error.
func Verify(password, encoded string) bool {
	raw, err := hex.DecodeString(encoded)
	if err != nil || len(raw) <= saltLen {
		return false
	}
	salt, stored := raw[:saltLen], raw[saltLen:]
	key := pbkdf2.Key([]byte(password), salt, iterations, len(stored), sha256.New)
	return subtle.ConstantTimeCompare(key, stored) == 1
}
