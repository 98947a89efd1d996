package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot is the durable subset of store state. Transient loading and error
// maps are deliberately excluded. Pointer fields distinguish "absent from the
// snapshot" (keep defaults) from "present but zero".
type Snapshot struct {
	Settings       *Settings                        `json:"settings,omitempty"`
	VoiceAgent     *VoiceAgent                      `json:"voiceAgent,omitempty"`
	ActiveTab      string                           `json:"activeTab,omitempty"`
	Photos         []PhotoMetadata                  `json:"photos"`
	Analyses       []PhotoAnalysis                  `json:"analyses"`
	Conversations  map[string][]ConversationMessage `json:"conversations"`
	Conversation   []ConversationMessage            `json:"conversation"`
	CurrentSession *MemorySession                   `json:"currentSession,omitempty"`
}

// Sink persists store snapshots. Save is called after every mutation and must
// tolerate being hammered; Load is called once at startup and returns nil
// when no snapshot exists yet.
type Sink interface {
	Save(snap *Snapshot) error
	Load() (*Snapshot, error)
}

// NoopSink discards snapshots. Used in tests and when persistence is disabled.
type NoopSink struct{}

func (NoopSink) Save(*Snapshot) error     { return nil }
func (NoopSink) Load() (*Snapshot, error) { return nil, nil }

// FileSink persists snapshots as a single JSON file, written atomically via
// a temp file rename.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to the given path, creating parent
// directories as needed.
func NewFileSink(path string) (*FileSink, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileSink{path: path}, nil
}

// Save writes the snapshot to disk
func (f *FileSink) Save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Load reads the last snapshot, or nil when the file does not exist
func (f *FileSink) Load() (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}
