package ast

import (
	"strings"
)

// FindDirectives marks valueless attributes in attrs by scanning raw, the
// source of one opening tag. The parser reports a valueless attribute with an
// empty value, so the raw text is the only place where `d` and `d=""` differ.
//
// A bareword of [-\w] characters counts as a directive when it sits outside
// quotes, follows whitespace and is followed by whitespace, `>` or `/>`, and
// the next non-space character is not `=`. Matched keys get a nil Value; a
// match missing from attrs is appended. Keyed values are never touched and
// the scan never fails: anything it cannot decide is left as the parser gave it.
func FindDirectives(raw string, attrs []Attribute) []Attribute {
	out := make([]Attribute, len(attrs))
	copy(out, attrs)

	for _, key := range directiveKeys(raw) {
		out = markDirective(out, key)
	}
	return out
}

func markDirective(attrs []Attribute, key string) []Attribute {
	seen := false
	for i := range attrs {
		if !strings.EqualFold(attrs[i].Key, key) {
			continue
		}
		seen = true
		if attrs[i].Value != nil && *attrs[i].Value == "" {
			attrs[i].Value = nil
			return attrs
		}
	}
	if seen {
		return attrs
	}
	return append(attrs, Directive(key))
}

// directiveKeys returns bareword attribute names of the opening tag in raw.
func directiveKeys(raw string) []string {
	s := SquashWhitespace(raw)
	end := openTagEnd(s)
	if end >= 0 {
		s = s[:end+1]
	}

	var keys []string
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if !isWordByte(c) || i == 0 || s[i-1] != ' ' {
			continue
		}

		j := i
		for j < len(s) && isWordByte(s[j]) {
			j++
		}
		word := s[i:j]
		if terminatesBareword(s, j) && !assigned(s, i, j) {
			keys = append(keys, word)
		}
		i = j - 1
	}
	return keys
}

func terminatesBareword(s string, j int) bool {
	if j >= len(s) {
		return false
	}
	switch s[j] {
	case ' ', '>':
		return true
	case '/':
		return j+1 < len(s) && s[j+1] == '>'
	}
	return false
}

// assigned reports whether the word at s[i:j] is the key or the unquoted
// value of an `a = b` pair.
func assigned(s string, i, j int) bool {
	for k := j; k < len(s); k++ {
		if s[k] == ' ' {
			continue
		}
		if s[k] == '=' {
			return true
		}
		break
	}
	for k := i - 1; k >= 0; k-- {
		if s[k] == ' ' {
			continue
		}
		return s[k] == '='
	}
	return false
}

// openTagEnd returns the index of the first '>' outside quotes, or -1.
func openTagEnd(s string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	return -1
}

func isWordByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// SquashWhitespace collapses every whitespace run into one space and drops
// leading and trailing whitespace.
func SquashWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
