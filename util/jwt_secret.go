package util

import (
	"os"
	"sync"
)

var (
	jwtSecret     = os.Getenv("JWT_SECRET")
	jwtSecretByte = []byte(jwtSecret)
	jwtMutex      sync.RWMutex
)

// SetJWTSecret allows tests or runtime code to update the JWT signing secret.
// This function is thread-safe and can be called concurrently.
func SetJWTSecret(secret string) {
	jwtMutex.Lock()
	defer jwtMutex.Unlock()
	jwtSecret = secret
	jwtSecretByte = []byte(secret)
}

// GetJWTSecretByte returns a copy of the current JWT secret bytes in a
// thread-safe manner.
func GetJWTSecretByte() []byte {
	jwtMutex.RLock()
	defer jwtMutex.RUnlock()
	return append([]byte(nil), jwtSecretByte...)
}
