package util

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonPrefix = "argon2id$"

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32

	saltBytes = 16
)

// GenerateSalt returns a new random hex-encoded salt for password hashing.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPasswordArgon2 derives an Argon2id hash of the password using the given
// hex-encoded salt. The result carries the argon2id$ prefix so stored hashes
// can be distinguished from legacy plaintext rows.
func HashPasswordArgon2(password, salt string) (string, error) {
	saltRaw, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("invalid salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), saltRaw, argonTime, argonMemory, argonThreads, argonKeyLen)
	return argonPrefix + base64.RawStdEncoding.EncodeToString(key), nil
}

// IsArgon2Hash reports whether the stored credential is an Argon2id hash.
func IsArgon2Hash(stored string) bool {
	return strings.HasPrefix(stored, argonPrefix)
}

// VerifyPassword compares a plaintext password against the stored credential
// in constant time. Stored values without the argon2id$ prefix are treated as
// legacy plaintext imported from the previous system; callers should upgrade
// such rows after a successful match.
func VerifyPassword(password, stored, salt string) (bool, error) {
	if !IsArgon2Hash(stored) {
		return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1, nil
	}
	computed, err := HashPasswordArgon2(password, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1, nil
}
