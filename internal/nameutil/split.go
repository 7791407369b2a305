package nameutil

import (
	"errors"
	"strings"
)

// ErrUnterminatedQuote is returned by SplitWords for input with an open quote.
var ErrUnterminatedQuote = errors.New("nameutil: unterminated quote in command line")

type quoteState int

const (
	unquoted quoteState = iota
	singleQuoted
	doubleQuoted
)

// SplitWords splits a command line into words the way a POSIX shell would for
// a simple command: single quotes are literal, double quotes honour \" \\ and
// \$, and a backslash outside quotes escapes the next character. An empty
// quoted string produces an empty word.
func SplitWords(line string) ([]string, error) {
	var (
		words   []string
		word    strings.Builder
		inWord  bool
		state   = unquoted
		runes   = []rune(line)
		flushFn = func() {
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}
		}
	)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch state {
		case singleQuoted:
			if r == '\'' {
				state = unquoted
				continue
			}
			word.WriteRune(r)
		case doubleQuoted:
			switch {
			case r == '"':
				state = unquoted
			case r == '\\' && i+1 < len(runes) && strings.ContainsRune(`"\$`, runes[i+1]):
				i++
				word.WriteRune(runes[i])
			default:
				word.WriteRune(r)
			}
		default:
			switch {
			case r == ' ' || r == '\t' || r == '\n' || r == '\r':
				flushFn()
			case r == '\'':
				state, inWord = singleQuoted, true
			case r == '"':
				state, inWord = doubleQuoted, true
			case r == '\\' && i+1 < len(runes):
				i++
				word.WriteRune(runes[i])
				inWord = true
			default:
				word.WriteRune(r)
				inWord = true
			}
		}
	}

	if state != unquoted {
		return nil, ErrUnterminatedQuote
	}
	flushFn()
	return words, nil
}

// shellOperators are the characters that need a real shell to interpret:
// pipes, lists, redirections, subshells, expansions and globs.
const shellOperators = "|&;<>()$`*?[]{}~#"

// HasShellSyntax reports whether line uses anything beyond plain words and
// quoting, i.e. whether it has to be handed to /bin/sh -c. Characters inside
// single quotes do not count.
func HasShellSyntax(line string) bool {
	state := unquoted
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch state {
		case singleQuoted:
			if r == '\'' {
				state = unquoted
			}
		case doubleQuoted:
			switch {
			case r == '"':
				state = unquoted
			case r == '\\':
				i++
			case r == '$' || r == '`':
				return true
			}
		default:
			switch {
			case r == '\'':
				state = singleQuoted
			case r == '"':
				state = doubleQuoted
			case r == '\\':
				i++
			case r == '\n' || strings.ContainsRune(shellOperators, r):
				return true
			}
		}
	}
	return false
}

// SplitAssignments separates leading NAME=value words (inline environment
// assignments, as in "FOO=1 cmd arg") from the command words that follow.
func SplitAssignments(words []string) (env []string, rest []string) {
	for i, w := range words {
		if !isAssignment(w) {
			return env, words[i:]
		}
		env = append(env, w)
	}
	return env, nil
}

func isAssignment(word string) bool {
	name, _, ok := strings.Cut(word, "=")
	if !ok || name == "" {
		return false
	}
	for i, r := range name {
		alpha := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !alpha && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}
