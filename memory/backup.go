package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"memorylens/store"
)

// BackupVersion identifies the backup file format
const BackupVersion = "1.0"

// Backup is the portable snapshot written by Export and read by Import
type Backup struct {
	ExportedAt    time.Time                              `json:"exportedAt"`
	Version       string                                 `json:"version"`
	Photos        []store.PhotoMetadata                  `json:"photos"`
	Analyses      []store.PhotoAnalysis                  `json:"analyses"`
	Conversations map[string][]store.ConversationMessage `json:"conversations"`
	Stats         Stats                                  `json:"stats"`
}

// Export builds a backup artifact. Inline image payloads are stripped from
// the photos to keep the file small; the embedded stats are a snapshot
// computed at export time.
func Export(photos []store.PhotoMetadata, analyses []store.PhotoAnalysis, conversations map[string][]store.ConversationMessage) *Backup {
	stripped := make([]store.PhotoMetadata, len(photos))
	for i, p := range photos {
		p.DataURL = ""
		stripped[i] = p
	}

	if analyses == nil {
		analyses = []store.PhotoAnalysis{}
	}
	if conversations == nil {
		conversations = map[string][]store.ConversationMessage{}
	}

	return &Backup{
		ExportedAt:    time.Now(),
		Version:       BackupVersion,
		Photos:        stripped,
		Analyses:      analyses,
		Conversations: conversations,
		Stats:         GetStats(photos, conversations),
	}
}

// Write serializes the backup as indented JSON
func (b *Backup) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// Filename returns the conventional download name for a backup
func (b *Backup) Filename() string {
	return fmt.Sprintf("memorylens-backup-%s.json", b.ExportedAt.Format("2006-01-02"))
}

// Import parses a backup artifact. It fails with a format error when any of
// the three top-level collections (photos, analyses, conversations) is
// absent. Per-record shape is not validated beyond what JSON decoding
// enforces; malformed entries are trusted as-is.
func Import(r io.Reader) (*Backup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse backup file: %w", err)
	}

	for _, key := range []string{"photos", "analyses", "conversations"} {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			return nil, fmt.Errorf("invalid backup file format: missing %q", key)
		}
	}

	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Conversations == nil {
		backup.Conversations = make(map[string][]store.ConversationMessage)
	}
	return &backup, nil
}
