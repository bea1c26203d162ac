// Package store persists diagrams as append-only event logs.
//
// A diagram is never stored as mutable state: every edit is an [Event]
// appended to its log, and the current graph is obtained by replaying
// the log with [Replay]. A set-head event rewinds the effective history
// to an earlier version, which is how undo works without deleting
// anything.
//
// Three log backends implement [Log]: [MemoryLog] for tests, [JSONLLog]
// for local CLI usage (one .jsonl file per diagram), and [MongoLog] for
// server deployments.
//
// [Editor] is the write-side service: it validates each mutation against
// the replayed graph before appending, and implements the pipeline's
// diagram source on the read side.
package store
