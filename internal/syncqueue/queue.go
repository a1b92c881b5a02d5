package syncqueue

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"verbmaster/internal/progress"
)

// Status is the delivery state of a queued entry.
type Status string

const (
	StatusPending     Status = "pending"
	StatusInFlight    Status = "in-flight"
	StatusFailedRetry Status = "failed-retryable"
)

// Entry wraps a buffered attempt with its delivery bookkeeping. Entries are
// owned exclusively by the Coordinator and removed only once the remote
// store confirms application.
type Entry struct {
	Attempt   progress.AttemptRecord `json:"attempt"`
	Status    Status                 `json:"status"`
	Retries   int                    `json:"retries"`
	LastError string                 `json:"last_error,omitempty"`
}

// loadQueue reads the durable queue file. A missing file is an empty queue;
// a corrupted file is discarded and the queue restarts empty rather than
// wedging every later enqueue.
func loadQueue(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Queue file is corrupted, discarding")
		os.Remove(path)
		return nil, nil
	}

	// Anything that was mid-delivery when the process died goes back to
	// pending; the remote dedupes by attempt ID if it already landed.
	for i := range entries {
		if entries[i].Status == StatusInFlight {
			entries[i].Status = StatusPending
		}
	}
	return entries, nil
}

// saveQueue writes through a temp file and renames it into place so a crash
// mid-write never leaves a truncated queue behind.
func saveQueue(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if len(entries) == 0 {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
