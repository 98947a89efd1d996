// Package memory provides the pure aggregation layer over store snapshots:
// statistics, per-photo summaries, full-text search, retention pruning, and
// backup export/import. Every function operates on collections passed by the
// caller and never reads or mutates the store.
package memory

import (
	"encoding/json"
	"fmt"
	"time"

	"memorylens/store"
)

// Stats summarizes the memory collection
type Stats struct {
	TotalPhotos        int        `json:"totalPhotos"`
	TotalConversations int        `json:"totalConversations"`
	TotalMessages      int        `json:"totalMessages"`
	OldestMemory       *time.Time `json:"oldestMemory,omitempty"`
	NewestMemory       *time.Time `json:"newestMemory,omitempty"`
	StorageUsed        int64      `json:"storageUsed"` // bytes, estimated
}

// GetStats computes memory statistics over the given collections.
// StorageUsed is an estimate: twice the JSON serialization length of photos
// and conversations, modeling a 2-byte-per-character in-browser encoding.
// Oldest/NewestMemory are nil when no messages exist.
func GetStats(photos []store.PhotoMetadata, conversations map[string][]store.ConversationMessage) Stats {
	stats := Stats{
		TotalPhotos:        len(photos),
		TotalConversations: len(conversations),
	}

	var oldest, newest time.Time
	for _, msgs := range conversations {
		stats.TotalMessages += len(msgs)
		for _, m := range msgs {
			ts := m.Timestamp
			if ts.IsZero() {
				continue
			}
			if oldest.IsZero() || ts.Before(oldest) {
				oldest = ts
			}
			if newest.IsZero() || ts.After(newest) {
				newest = ts
			}
		}
	}
	if !oldest.IsZero() {
		o, n := oldest, newest
		stats.OldestMemory = &o
		stats.NewestMemory = &n
	}

	stats.StorageUsed = estimateStorage(photos, conversations)
	return stats
}

func estimateStorage(photos []store.PhotoMetadata, conversations map[string][]store.ConversationMessage) int64 {
	blob, err := json.Marshal(struct {
		Photos        []store.PhotoMetadata                  `json:"photos"`
		Conversations map[string][]store.ConversationMessage `json:"conversations"`
	}{photos, conversations})
	if err != nil {
		return 0
	}
	return int64(len(blob)) * 2
}

// FormatStorageSize renders a byte count for display: binary (1024-based)
// scaling with one decimal place, clamped at GB.
func FormatStorageSize(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", size, units[unit])
}
