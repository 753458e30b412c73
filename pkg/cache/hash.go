package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashKey builds "prefix:sha256(parts)". The full 64-character digest keeps
// distinct scripts from ever colliding.
func hashKey(prefix string, parts ...[]byte) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write(part)
		h.Write([]byte{0})
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex-encoded SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
