package memory

import (
	"time"

	"memorylens/store"
)

// ClearOld returns a copy of the conversation map keeping only messages newer
// than daysToKeep days. Threads left with no messages are dropped entirely
// rather than kept as empty slices. The input map is not mutated; feeding the
// result back into the store is the caller's job.
func ClearOld(conversations map[string][]store.ConversationMessage, daysToKeep int) map[string][]store.ConversationMessage {
	return ClearOldAt(conversations, daysToKeep, time.Now())
}

// ClearOldAt is ClearOld with an explicit reference time
func ClearOldAt(conversations map[string][]store.ConversationMessage, daysToKeep int, now time.Time) map[string][]store.ConversationMessage {
	cutoff := now.AddDate(0, 0, -daysToKeep)

	filtered := make(map[string][]store.ConversationMessage)
	for photoID, msgs := range conversations {
		var recent []store.ConversationMessage
		for _, m := range msgs {
			if m.Timestamp.After(cutoff) {
				recent = append(recent, m)
			}
		}
		if len(recent) > 0 {
			filtered[photoID] = recent
		}
	}
	return filtered
}
