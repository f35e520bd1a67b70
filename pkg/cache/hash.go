package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds "<prefix>:<sha256 of the JSON-encoded parts>". Parts are
// plain values and option structs, so encoding does not fail.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data. Problem and planner texts are
// keyed by their digest.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
