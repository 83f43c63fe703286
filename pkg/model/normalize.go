package model

import (
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Normalize applies the input formatting a field receives on change: markup is
// stripped from free text, text-only fields keep letters, spaces and dots,
// phone numbers are grouped as "XXXXX XXXXX", postal codes keep up to six
// digits and MaxLength truncates. Choice values pass through untouched.
func Normalize(field Field, v Value) Value {
	if v.Multi || field.Kind == KindSingle || field.Kind == KindMulti {
		return v
	}

	text := v.Text
	switch field.Kind {
	case KindText, KindTextOnly, KindEmail:
		text = sanitizeText(text)
	}

	switch field.Kind {
	case KindTextOnly:
		text = keepRunes(text, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsSpace(r) || r == '.'
		})
	case KindPhone:
		text = FormatPhone(text)
	case KindPostal:
		text = truncate(Digits(text), 6)
	case KindNumber:
		text = Digits(text)
	case KindEmail, KindDate:
		text = strings.TrimSpace(text)
	}

	if field.MaxLength > 0 {
		text = truncate(text, field.MaxLength)
	}
	return Value{Text: text}
}

// FormatPhone keeps the first ten digits and groups them 5+5.
func FormatPhone(raw string) string {
	digits := truncate(Digits(raw), 10)
	if len(digits) > 5 {
		return digits[:5] + " " + digits[5:]
	}
	return digits
}

// Digits strips every non-digit rune.
func Digits(raw string) string {
	return keepRunes(raw, func(r rune) bool { return r >= '0' && r <= '9' })
}

func sanitizeText(raw string) string {
	if !strings.ContainsAny(raw, "<>&") {
		return raw
	}
	cleaned := textSanitizer().Sanitize(raw)
	return html.UnescapeString(cleaned)
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

func keepRunes(raw string, keep func(rune) bool) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
