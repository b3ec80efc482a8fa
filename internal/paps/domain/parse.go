package domain

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseLenient reads a free-form numeric-as-text value. It is total:
// commas are stripped, blanks and garbage read as 0, sign is preserved.
func ParseLenient(v string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}

var linkSeparators = regexp.MustCompile(`[\n,\s]+`)

// ParseLinks splits free-form evidence input on newlines, commas, and
// whitespace, dropping empties.
func ParseLinks(text string) []string {
	parts := linkSeparators.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsValidURL reports whether s is an absolute http or https URL.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		return ParseLenient(n)
	}
	return 0
}

func asTimePtr(v any) *time.Time {
	switch t := v.(type) {
	case *time.Time:
		return t
	case time.Time:
		return &t
	}
	return nil
}

func asStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return []string{}
}
