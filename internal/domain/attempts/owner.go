package attempts

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrOwnerRequired means the attempt log was asked for without a session
var ErrOwnerRequired = errors.New("attempt log requires an authenticated session")

// OwnerOf is the attempt log key for a bearer token. The token itself is
// never stored. An empty token has no owner.
func OwnerOf(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Limit clamps a Latest page size to 1..100, defaulting to 20
func Limit(n int) int {
	if n <= 0 {
		return 20
	}
	if n > 100 {
		return 100
	}
	return n
}
