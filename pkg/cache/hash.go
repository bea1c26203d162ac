package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a stage-prefixed cache key from the key components:
// "graph:<hash>", "layout:<hash>", "artifact:<hash>". The components
// include every input that affects the stage's output (diagram version,
// collapse set, render options), so two keys collide only when the
// cached bytes would be identical anyway.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the full SHA-256 of data as a 64-character hex string.
// The pipeline uses it to content-address graphs and layouts between
// stages.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
