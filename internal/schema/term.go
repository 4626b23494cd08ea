package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Season is an academic season.
type Season int

const (
	Spring Season = iota
	Summer
	Fall
)

func (s Season) String() string {
	switch s {
	case Spring:
		return "Spring"
	case Summer:
		return "Summer"
	case Fall:
		return "Fall"
	default:
		return "Unknown"
	}
}

// Term is a parsed "<Season> <Year>" or "Summer <1|2> <Year>" label.
// Session is 1 or 2 for split summer sessions and 0 otherwise.
type Term struct {
	Season  Season
	Session int
	Year    int
}

var termRe = regexp.MustCompile(`(?i)^(spring|summer|fall|autumn)(?:\s+(1|2|i|ii))?\s+(\d{4})$`)

var spaceRe = regexp.MustCompile(`\s+`)

// ParseTerm parses a term label case-insensitively. Extra whitespace is
// tolerated and "Autumn" is read as Fall.
func ParseTerm(s string) (Term, bool) {
	s = spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	m := termRe.FindStringSubmatch(s)
	if m == nil {
		return Term{}, false
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return Term{}, false
	}
	t := Term{Year: year}
	switch strings.ToLower(m[1]) {
	case "spring":
		t.Season = Spring
	case "summer":
		t.Season = Summer
	default:
		t.Season = Fall
	}
	switch strings.ToLower(m[2]) {
	case "1", "i":
		t.Session = 1
	case "2", "ii":
		t.Session = 2
	}
	if t.Season != Summer {
		t.Session = 0
	}
	return t, true
}

// String returns the canonical label, e.g. "Fall 2025" or "Summer 2 2026".
func (t Term) String() string {
	if t.Season == Summer && t.Session > 0 {
		return fmt.Sprintf("Summer %d %d", t.Session, t.Year)
	}
	return fmt.Sprintf("%s %d", t.Season, t.Year)
}

// SortKey orders terms chronologically: year*10 + season order, where
// Spring=0, Summer=1 (Summer 2=2), Fall=3.
func (t Term) SortKey() int {
	order := 0
	switch t.Season {
	case Summer:
		order = 1
		if t.Session == 2 {
			order = 2
		}
	case Fall:
		order = 3
	}
	return t.Year*10 + order
}

// Next returns the term that follows t. When splitSummer is set, Spring is
// followed by Summer 1; Summer 1 is always followed by Summer 2.
func (t Term) Next(splitSummer bool) Term {
	switch t.Season {
	case Spring:
		if splitSummer {
			return Term{Season: Summer, Session: 1, Year: t.Year}
		}
		return Term{Season: Summer, Year: t.Year}
	case Summer:
		if t.Session == 1 {
			return Term{Season: Summer, Session: 2, Year: t.Year}
		}
		return Term{Season: Fall, Year: t.Year}
	default:
		return Term{Season: Spring, Year: t.Year + 1}
	}
}

// CanonicalTerm returns the canonical form of a term label, or the trimmed
// input when it does not parse.
func CanonicalTerm(s string) string {
	if t, ok := ParseTerm(s); ok {
		return t.String()
	}
	return strings.TrimSpace(s)
}

// TermSortKey returns the sort key of a term label.
func TermSortKey(s string) (int, bool) {
	t, ok := ParseTerm(s)
	if !ok {
		return 0, false
	}
	return t.SortKey(), true
}

// SameTerm compares two term labels after canonicalization.
func SameTerm(a, b string) bool {
	return strings.EqualFold(CanonicalTerm(a), CanonicalTerm(b))
}
