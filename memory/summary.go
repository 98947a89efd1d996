package memory

import (
	"sort"
	"time"
	"unicode/utf8"

	"memorylens/store"
)

// Summary is the dashboard row for one photo's conversation thread
type Summary struct {
	PhotoID      string    `json:"photoId"`
	PhotoName    string    `json:"photoName,omitempty"`
	MessageCount int       `json:"messageCount"`
	LastActivity time.Time `json:"lastActivity"`
	FirstMessage string    `json:"firstMessage,omitempty"`
	HasAudio     bool      `json:"hasAudio"`
}

const firstMessagePreviewLen = 100

// GetSummaries returns one summary per photo, including photos with no
// messages (their last activity falls back to the upload time), sorted by
// last activity descending. FirstMessage is the first assistant reply,
// truncated for preview.
func GetSummaries(photos []store.PhotoMetadata, conversations map[string][]store.ConversationMessage) []Summary {
	summaries := make([]Summary, 0, len(photos))

	for _, photo := range photos {
		msgs := conversations[photo.ID]

		last := photo.UploadedAt
		for _, m := range msgs {
			if m.Timestamp.After(last) {
				last = m.Timestamp
			}
		}

		var first string
		for _, m := range msgs {
			if m.Role == "assistant" {
				first = truncate(m.Content, firstMessagePreviewLen)
				break
			}
		}

		hasAudio := false
		for _, m := range msgs {
			if m.AudioURL != "" {
				hasAudio = true
				break
			}
		}

		summaries = append(summaries, Summary{
			PhotoID:      photo.ID,
			PhotoName:    photo.Filename,
			MessageCount: len(msgs),
			LastActivity: last,
			FirstMessage: first,
			HasAudio:     hasAudio,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
	return summaries
}

// truncate cuts at a rune boundary so a multi-byte character straddling the
// limit never yields invalid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
