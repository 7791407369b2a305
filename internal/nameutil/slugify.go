package nameutil

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Slugify lowercases s, turns every run of non-alphanumeric characters into a
// single dash and trims dashes from both ends.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

// ToolName derives a display name for a tool from the program path it was
// started with: the base name without extension, slugified. Falls back to
// "tool" when nothing usable is left.
func ToolName(program string) string {
	base := filepath.Base(program)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if name := Slugify(base); name != "" {
		return name
	}
	return "tool"
}
