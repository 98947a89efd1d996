package utils

import "regexp"

// Privacy-mode redaction for text sent to external providers. One-way: the
// placeholders are not reversible, unlike the stored conversation which keeps
// the original content.
var redactPatterns = []struct {
	re          *regexp.Regexp
	placeholder string
}{
	{regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`), "[email]"},
	{regexp.MustCompile(`https?://[^\s"'<>]+`), "[url]"},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), "[ip]"},
	{regexp.MustCompile(`\b\+?\d[\d\s\-()]{8,}\d\b`), "[phone]"},
	{regexp.MustCompile(`\b(?:sk|pk|AIza|xi)[A-Za-z0-9_\-]{16,}\b`), "[key]"},
}

// Redact replaces emails, URLs, IPs, phone numbers, and credential-shaped
// tokens with neutral placeholders.
func Redact(text string) string {
	for _, p := range redactPatterns {
		text = p.re.ReplaceAllString(text, p.placeholder)
	}
	return text
}
