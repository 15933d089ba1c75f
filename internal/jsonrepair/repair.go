// Package jsonrepair recovers a JSON object from imperfect model output.
// All transforms are pure and idempotent: repairing already-valid JSON
// returns it unchanged apart from dropped surrounding text.
package jsonrepair

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrMalformed is returned only after every repair strategy has failed
var ErrMalformed = errors.New("no valid JSON object could be recovered")

var (
	fencedRe  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	wrapperRe = regexp.MustCompile(`(?s)"response"\s*:\s*(\{.*\})`)
)

// Extract returns the first structurally valid JSON object recoverable
// from raw model output, applying the repair ladder then fallbacks.
func Extract(raw string) (string, error) {
	candidate := stripFence(raw)

	if i := strings.Index(candidate, "{"); i >= 0 {
		candidate = candidate[i:]
	} else {
		return "", ErrMalformed
	}

	repaired := repair(candidate)
	if json.Valid([]byte(repaired)) {
		return repaired, nil
	}

	// Fallbacks, in order: greedy outer-brace, balanced-brace scan,
	// nested response wrapper.
	if last := strings.LastIndex(candidate, "}"); last >= 0 {
		greedy := repair(candidate[:last+1])
		if json.Valid([]byte(greedy)) {
			return greedy, nil
		}
	}
	if balanced := balancedObject(candidate); balanced != "" {
		fixed := repair(balanced)
		if json.Valid([]byte(fixed)) {
			return fixed, nil
		}
	}
	if m := wrapperRe.FindStringSubmatch(candidate); m != nil {
		if inner := balancedObject(m[1]); inner != "" {
			fixed := repair(inner)
			if json.Valid([]byte(fixed)) {
				return fixed, nil
			}
		}
	}

	return "", ErrMalformed
}

// repair applies the in-place fixups: escape raw newlines inside strings,
// strip trailing commas, append missing closing braces/brackets.
func repair(s string) string {
	s = escapeNewlinesInStrings(s)
	s = stripTrailingCommas(s)
	s = closeOpenBraces(s)
	return s
}

func stripFence(raw string) string {
	if m := fencedRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// escapeNewlinesInStrings replaces literal newline and carriage-return
// characters occurring inside quoted string values with their escape
// sequences. Structural whitespace between tokens is untouched.
func escapeNewlinesInStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r == '\n':
				b.WriteString(`\n`)
				continue
			case r == '\r':
				b.WriteString(`\r`)
				continue
			}
		} else if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripTrailingCommas removes commas that directly precede a closing
// brace or bracket, ignoring commas inside strings.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	pendingComma := -1
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			b.WriteRune(r)
			continue
		}
		switch r {
		case '"':
			inString = true
			pendingComma = -1
		case ',':
			pendingComma = b.Len()
		case '}', ']':
			if pendingComma >= 0 {
				trimmed := b.String()[:pendingComma] + strings.TrimLeft(b.String()[pendingComma+1:], " \t\n\r")
				b.Reset()
				b.WriteString(trimmed)
			}
			pendingComma = -1
		case ' ', '\t', '\n', '\r':
			// whitespace does not clear a pending comma
		default:
			pendingComma = -1
		}
		b.WriteRune(r)
	}
	return b.String()
}

// closeOpenBraces appends the closers needed to balance the input,
// string-aware so braces inside values are not counted.
func closeOpenBraces(s string) string {
	var stack []rune
	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == r {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if inString {
		s += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		s += string(stack[i])
	}
	return s
}

// balancedObject returns the shortest prefix of s that is a brace-balanced
// object, or "" when the input never closes its first brace.
func balancedObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
