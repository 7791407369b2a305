// Package suggest finds the closest known name for a mistyped one, for the
// "did you mean" hints on unknown flags and commands.
package suggest

import "strings"

// MaxDistance is the largest edit distance still offered as a suggestion.
const MaxDistance = 3

// Closest returns the candidate nearest to name, comparing case-insensitively.
// Ties go to the earlier candidate. It returns "" when no candidate is within
// MaxDistance or when name is already an exact match.
func Closest(name string, candidates []string) string {
	needle := strings.ToLower(name)
	best, bestDist := "", MaxDistance+1
	for _, c := range candidates {
		d := Distance(needle, strings.ToLower(c))
		if d == 0 {
			return ""
		}
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
