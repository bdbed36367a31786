// Package utils provides small shared helpers: pointers, hashing, retries.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// CalculateHash returns the hex SHA-256 of body concatenated with key.
// Agent and collector must use the same key for the hashes to match.
func CalculateHash(body []byte, key string) string {
	h := sha256.New()
	h.Write(body)
	h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}
