package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// gateGUIDNamespace seeds deterministic gate GUIDs. Changing it would
// break GUID stability across replays of the same event log.
var gateGUIDNamespace = uuid.MustParse("8f5a2b2c-0f5d-4bfb-9a2e-39a02d34830e")

// NewGateGUID returns a fresh random GUID for a newly created gate.
func NewGateGUID() string {
	return uuid.NewString()
}

// DeterministicGateGUID derives a stable GUID for a gate created during
// event replay. The same event always yields the same GUID, so replaying
// a log reproduces gate identities exactly.
func DeterministicGateGUID(eventKind string, eventVersion int, gateID, eventTS string) string {
	version := "unknown"
	if eventVersion > 0 {
		version = fmt.Sprint(eventVersion)
	}
	ts := eventTS
	if ts == "" {
		ts = "unknown"
	}
	seed := fmt.Sprintf("%s|%s|%s|%s", eventKind, version, gateID, ts)
	return uuid.NewSHA1(gateGUIDNamespace, []byte(seed)).String()
}
