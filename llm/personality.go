package llm

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode/utf8"

	"memorylens/store"
)

// personalityTone is the phrase palette for one personality
type personalityTone struct {
	greeting       string
	acknowledgment string
	excitement     string
	curiosity      string
}

func toneFor(personality string) personalityTone {
	switch personality {
	case "warm":
		return personalityTone{
			greeting:       "Hello there!",
			acknowledgment: "That sounds wonderful.",
			excitement:     "How lovely!",
			curiosity:      "I'm curious,",
		}
	case "nostalgic":
		return personalityTone{
			greeting:       "What a treasure this is.",
			acknowledgment: "Those were special times.",
			excitement:     "What beautiful memories!",
			curiosity:      "I wonder,",
		}
	case "excited":
		return personalityTone{
			greeting:       "Oh wow, this is amazing!",
			acknowledgment: "That sounds incredible!",
			excitement:     "How exciting!",
			curiosity:      "I have to know,",
		}
	case "gentle":
		return personalityTone{
			greeting:       "This is such a lovely photo.",
			acknowledgment: "Thank you for sharing that.",
			excitement:     "How special.",
			curiosity:      "If you don't mind me asking,",
		}
	default:
		return personalityTone{
			greeting:       "Hello!",
			acknowledgment: "I see.",
			excitement:     "That's wonderful!",
			curiosity:      "Tell me,",
		}
	}
}

// GenerateResponseText produces the next assistant reply as a pure function
// of the analysis, conversation history, and personality. No network I/O.
func GenerateResponseText(analysis *store.PhotoAnalysis, history []store.ConversationMessage, agent store.VoiceAgent) string {
	if len(history) <= 1 {
		return openingResponse(analysis, agent)
	}
	return followUpResponse(analysis, history, agent)
}

func openingResponse(analysis *store.PhotoAnalysis, agent store.VoiceAgent) string {
	tone := toneFor(agent.Personality)
	vc := analysis.VisualContent
	story := analysis.Story

	objects := strings.Join(firstN(vc.Objects, 2), " and ")
	questions := story.SuggestedQuestions

	openings := []string{
		fmt.Sprintf("%s What a wonderful photo! I can see %s here. The %s feeling really comes through. %s",
			tone.greeting, objects, story.EmotionalTone, questionAt(questions, 0)),
		fmt.Sprintf("%s This image has such a %s atmosphere. I notice it was taken during the %s. %s",
			tone.greeting, story.EmotionalTone, vc.TimeOfDay, questionAt(questions, 1)),
		fmt.Sprintf("%s There's something really special about this photo. The %s theme is so evident. %s",
			tone.greeting, themeAt(story.Themes, 0), questionAt(questions, 0)),
	}
	return openings[rand.Intn(len(openings))]
}

func followUpResponse(analysis *store.PhotoAnalysis, history []store.ConversationMessage, agent store.VoiceAgent) string {
	tone := toneFor(agent.Personality)
	story := analysis.Story
	userMessage := strings.ToLower(history[len(history)-1].Content)

	switch {
	case strings.Contains(userMessage, "family") || strings.Contains(userMessage, "relative"):
		q := findQuestion(story.SuggestedQuestions, "who")
		if q == "" {
			q = "Tell me more about the people in this photo."
		}
		return fmt.Sprintf("%s Family moments are so precious. %s", tone.acknowledgment, q)

	case strings.Contains(userMessage, "celebration") || strings.Contains(userMessage, "party") || strings.Contains(userMessage, "birthday"):
		return fmt.Sprintf("%s Celebrations create the most wonderful memories! What made this occasion so special?", tone.excitement)

	case strings.Contains(userMessage, "place") || strings.Contains(userMessage, "location") || strings.Contains(userMessage, "where"):
		return fmt.Sprintf("%s Places hold such powerful memories. What do you remember most about being there?", tone.curiosity)
	}

	// Fall back to a suggested question nobody has asked yet
	for _, q := range story.SuggestedQuestions {
		if !questionAsked(history, q) {
			return fmt.Sprintf("%s %s", tone.acknowledgment, q)
		}
	}
	return fmt.Sprintf("%s That's a beautiful memory. What other details about this moment stand out to you?", tone.acknowledgment)
}

// GenerateNarrationText weaves the analysis and the user's own words into a
// closing story narration.
func GenerateNarrationText(analysis *store.PhotoAnalysis, history []store.ConversationMessage, agent store.VoiceAgent) string {
	vc := analysis.VisualContent
	story := analysis.Story

	var userParts []string
	for _, m := range history {
		if m.Role == "user" {
			userParts = append(userParts, m.Content)
		}
	}
	shared := strings.Join(userParts, " ")

	var sb strings.Builder
	fmt.Fprintf(&sb, "This photograph captures a moment of %s. ", story.EmotionalTone)
	fmt.Fprintf(&sb, "%s during the %s, we see %s. ", vc.Setting, vc.TimeOfDay, strings.Join(firstN(vc.Objects, 3), ", "))
	if shared != "" {
		fmt.Fprintf(&sb, "From what you've shared, %s... ", truncateText(shared, 200))
	}
	fmt.Fprintf(&sb, "The %s in this image remind us that every photograph is more than just a picture. ", strings.Join(story.Themes, " and "))
	sb.WriteString("It's a doorway to our memories, a keeper of moments that shaped who we are. ")
	sb.WriteString("This memory, like all precious memories, deserves to be cherished and shared.")
	return sb.String()
}

func firstN(items []string, n int) []string {
	if len(items) < n {
		n = len(items)
	}
	if n == 0 {
		return []string{"this moment"}
	}
	return items[:n]
}

func questionAt(questions []string, i int) string {
	if i < len(questions) {
		return questions[i]
	}
	if len(questions) > 0 {
		return questions[0]
	}
	return "What memories does this photo bring back?"
}

func themeAt(themes []string, i int) string {
	if i < len(themes) {
		return themes[i]
	}
	return "memory"
}

func findQuestion(questions []string, keyword string) string {
	for _, q := range questions {
		if strings.Contains(strings.ToLower(q), keyword) {
			return q
		}
	}
	return ""
}

// questionAsked reports whether a question (matched by its opening words)
// already appears in the conversation.
func questionAsked(history []store.ConversationMessage, question string) bool {
	prefix := question
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	for _, m := range history {
		if strings.Contains(m.Content, prefix) {
			return true
		}
	}
	return false
}

// truncateText cuts at a rune boundary to keep the result valid UTF-8
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
