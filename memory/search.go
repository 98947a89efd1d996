package memory

import (
	"sort"
	"strings"

	"memorylens/store"
)

// SearchResult is one matched message with its surrounding context window
type SearchResult struct {
	PhotoID string                      `json:"photoId"`
	Message store.ConversationMessage   `json:"message"`
	Context []store.ConversationMessage `json:"context"`
}

const searchContextRadius = 2

// Search scans every message of every thread for a case-insensitive substring
// match. Each result carries up to two messages before and after the match
// (clipped at thread boundaries) from the same thread, the match included.
// Results are ordered by the matched message's timestamp, most recent first.
// An empty or whitespace-only query returns nothing.
func Search(conversations map[string][]store.ConversationMessage, query string) []SearchResult {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return nil
	}

	var results []SearchResult
	for photoID, msgs := range conversations {
		for i, msg := range msgs {
			if !strings.Contains(strings.ToLower(msg.Content), term) {
				continue
			}

			start := i - searchContextRadius
			if start < 0 {
				start = 0
			}
			end := i + searchContextRadius + 1
			if end > len(msgs) {
				end = len(msgs)
			}

			results = append(results, SearchResult{
				PhotoID: photoID,
				Message: msg,
				Context: append([]store.ConversationMessage(nil), msgs[start:end]...),
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Message.Timestamp.After(results[j].Message.Timestamp)
	})
	return results
}
