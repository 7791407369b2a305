package nameutil

import (
	"strings"
	"unicode"
)

// ToFlagName converts a Go-style field or method name to the kebab-case
// spelling used on the command line.
//
// Rules:
//   - A lowercase-to-uppercase transition starts a new word ("webUrl" → "web-url").
//   - The last capital of an acronym followed by lowercase starts a new word
//     ("HTTPServer" → "http-server").
//   - Underscores and spaces become dashes; runs of separators collapse.
//   - Everything is lowercased.
func ToFlagName(field string) string {
	if field == "" {
		return ""
	}

	var b strings.Builder
	runes := []rune(field)
	pendingDash := false
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			pendingDash = b.Len() > 0
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				pendingDash = b.Len() > 0
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				pendingDash = b.Len() > 0
			}
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// NormalizeKey folds a flag, command or field name to the key used for
// lookups: lowercase with dashes and underscores removed. "web-url",
// "webUrl", "WEB_URL" and "weburl" share a key.
func NormalizeKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r == '-' || r == '_' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ToEnvName returns the environment variable that carries a field's value:
// PREFIX_UPPER_SNAKE. An empty prefix yields just the field part.
func ToEnvName(prefix, field string) string {
	name := strings.ToUpper(strings.ReplaceAll(ToFlagName(field), "-", "_"))
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(strings.ToUpper(prefix), "_") + "_" + name
}
