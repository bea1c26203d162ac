package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/relblock/relblock/pkg/errors"
)

// JSONLLog persists events as one JSON line per event, one file per
// diagram, under a directory. This is the CLI's durable backend: logs
// survive restarts and stay human-inspectable with standard tools.
type JSONLLog struct {
	dir string

	mu    sync.Mutex
	heads map[string]int // cached latest version per diagram
}

// NewJSONLLog opens (creating if needed) a log directory.
func NewJSONLLog(dir string) (*JSONLLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &JSONLLog{dir: dir, heads: make(map[string]int)}, nil
}

// path maps a diagram ID to its log file, rejecting IDs that could
// escape the directory.
func (l *JSONLLog) path(diagramID string) (string, error) {
	if err := errors.ValidateNodeID(diagramID); err != nil {
		return "", err
	}
	if strings.ContainsRune(diagramID, '/') {
		return "", errors.New(errors.ErrCodeInvalidInput, "diagram id cannot contain slashes: %q", diagramID)
	}
	return filepath.Join(l.dir, diagramID+".jsonl"), nil
}

// Append stores the event, assigning it the next version.
func (l *JSONLLog) Append(ctx context.Context, ev *Event) error {
	path, err := l.path(ev.DiagramID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	head, err := l.headLocked(ev.DiagramID, path)
	if err != nil {
		return err
	}
	next := head + 1
	if ev.Version != 0 && ev.Version != next {
		return errors.New(errors.ErrCodeConflict, "version %d already written, next is %d", ev.Version, next)
	}
	ev.Version = next

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	l.heads[ev.DiagramID] = next
	return nil
}

// Events returns a diagram's events sorted by version ascending.
func (l *JSONLLog) Events(ctx context.Context, diagramID string) ([]Event, error) {
	path, err := l.path(diagramID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "corrupt event log %s", path)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return events, nil
}

// Head returns the latest version of a diagram's log.
func (l *JSONLLog) Head(ctx context.Context, diagramID string) (int, error) {
	path, err := l.path(diagramID)
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.headLocked(diagramID, path)
}

// headLocked reads the cached head, counting file lines on first use.
func (l *JSONLLog) headLocked(diagramID, path string) (int, error) {
	if head, ok := l.heads[diagramID]; ok {
		return head, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		l.heads[diagramID] = 0
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	count := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			count++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read log: %w", err)
	}
	l.heads[diagramID] = count
	return count, nil
}

// Diagrams lists all diagram IDs with a log file.
func (l *JSONLLog) Diagrams(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".jsonl"))
	}
	slices.Sort(ids)
	return ids, nil
}

// Close is a no-op; files are opened per operation.
func (l *JSONLLog) Close(ctx context.Context) error { return nil }

// Ensure JSONLLog implements Log.
var _ Log = (*JSONLLog)(nil)
