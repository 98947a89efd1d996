package utils

import (
	"strings"
	"testing"
)

func TestRedact_Email(t *testing.T) {
	got := Redact("write to grandma@example.com about it")
	if strings.Contains(got, "grandma@example.com") {
		t.Errorf("email should be redacted, got: %s", got)
	}
	if !strings.Contains(got, "[email]") {
		t.Errorf("placeholder missing, got: %s", got)
	}
}

func TestRedact_URL(t *testing.T) {
	got := Redact("the album is at https://photos.example.com/album/123")
	if strings.Contains(got, "photos.example.com") {
		t.Errorf("URL should be redacted, got: %s", got)
	}
}

func TestRedact_Phone(t *testing.T) {
	got := Redact("call me on +1 415 555 0192 tomorrow")
	if strings.Contains(got, "555 0192") {
		t.Errorf("phone should be redacted, got: %s", got)
	}
}

func TestRedact_PlainTextUntouched(t *testing.T) {
	text := "That was the summer we went to the lake with my cousins."
	if got := Redact(text); got != text {
		t.Errorf("plain text should be unchanged, got: %s", got)
	}
}
