package sanitize

import (
	"errors"
	"regexp"
	"strings"
)

// Errors returned by the validation gate. Callers decide the blast
// radius: ErrUnsafePath skips the dependent write, ErrBadDevNum on an
// event's own MAJOR:MINOR rejects the whole event.
var (
	ErrUnsafePath = errors.New("unsafe path field")
	ErrBadDevNum  = errors.New("invalid device identity")
)

var (
	pathChars = regexp.MustCompile(`^[-A-Za-z0-9#+.:=@_/\\]+$`)
	devNum    = regexp.MustCompile(`^\d+:\d+$`)
)

// Path validates a field that will become a path segment or symlink
// target. The charset match alone does not stop traversal ("." and "/"
// are both legal characters), so ".." components are checked separately.
func Path(s string) (string, error) {
	if s == "" || !pathChars.MatchString(s) {
		return "", ErrUnsafePath
	}
	if hasDotDot(s) {
		return "", ErrUnsafePath
	}
	return s, nil
}

// DevNum validates a major:minor pair.
func DevNum(s string) (string, error) {
	if !devNum.MatchString(s) {
		return "", ErrBadDevNum
	}
	return s, nil
}

// Value normalizes an attribute value: quoting and whitespace framing
// are stripped. An empty result means "unknown" and the caller must not
// write a file for it.
func Value(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

// hasDotDot reports whether any slash-separated component of s is "..".
func hasDotDot(s string) bool {
	for _, part := range strings.Split(s, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
