package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps/domain"
)

// FormatPHP renders a peso amount as "Php 1,234.56".
func FormatPHP(value float64) string {
	neg := value < 0
	if neg {
		value = -value
	}

	s := fmt.Sprintf("%.2f", value)
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	out := "Php " + b.String() + frac
	if neg {
		out = "Php -" + b.String() + frac
	}
	return out
}

// numCell renders a lenient-parsed quarter value, em-dash for zero.
func numCell(v string) string {
	n := domain.ParseLenient(v)
	if n == 0 {
		return "—"
	}
	return trimFloat(n)
}

// actualOverTarget renders the accomplishment cell "actual / target",
// em-dash when both are zero.
func actualOverTarget(target, actual string) string {
	t := domain.ParseLenient(target)
	a := domain.ParseLenient(actual)
	if t == 0 && a == 0 {
		return "—"
	}
	return trimFloat(a) + " / " + trimFloat(t)
}

func trimFloat(n float64) string {
	s := fmt.Sprintf("%g", n)
	return s
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func status(p domain.PAP) string {
	if p.Completed {
		return "Accomplished"
	}
	return "Ongoing"
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Filename builds the download name for an export, e.g.
// "PAPs_Report_Maria_Cruz_2026-01-15.pdf".
func Filename(kind Kind, displayName string, now time.Time) string {
	name := unsafeFilename.ReplaceAllString(displayName, "_")
	if name == "" {
		name = "user"
	}
	prefix := "PAPs_Report"
	if kind == KindList {
		prefix = "PAPs_List"
	}
	return fmt.Sprintf("%s_%s_%s.pdf", prefix, name, now.Format("2006-01-02"))
}
