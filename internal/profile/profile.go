// Package profile defines built-in school profiles. A profile carries the
// per-school data the validation engine and the agent prompts need: the
// discontinued-course table, whether summers are split into two sessions,
// the default degree credit target, and a prompt addendum.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/coursecheck/internal/schema"
)

// DefaultID is the profile used when a school is not recognized.
const DefaultID = "general"

// Profile describes one school.
type Profile struct {
	ID          string
	Name        string
	Description string
	// Aliases are lower-case substrings matched against a plan's school name.
	Aliases []string
	// DiscontinuedCourses are catalog codes no longer offered. Codes are
	// compared with schema.NormalizeCode.
	DiscontinuedCourses []string
	SplitSummer         bool
	TargetCredits       int
	PromptAddendum      string
}

// builtins is the registry of built-in profiles keyed by id.
var builtins = map[string]Profile{
	"general": {
		ID:            "general",
		Name:          "General",
		Description:   "Default profile for schools without specific rules.",
		TargetCredits: 120,
		PromptAddendum: "Use the school's published catalog. Prefer specific catalog courses over " +
			"ELECTIVE slots whenever the requirement names a course.",
	},
	"northeastern": {
		ID:          "northeastern",
		Name:        "Northeastern University",
		Description: "Semester calendar with split summer sessions and up to three co-op terms.",
		Aliases:     []string{"northeastern", "neu"},
		DiscontinuedCourses: []string{
			"CS 1500",
			"CS 1100",
			"CS 2550",
			"ENGW 1102",
			"ENGW 1110",
		},
		SplitSummer:   true,
		TargetCredits: 128,
		PromptAddendum: "Northeastern uses Summer 1 and Summer 2 sessions. Co-op terms carry no courses. " +
			"NUpath attributes are satisfied by specific courses; list example courses in the options " +
			"field of each ELECTIVE slot.",
	},
	"umass-amherst": {
		ID:          "umass-amherst",
		Name:        "University of Massachusetts Amherst",
		Description: "Standard semester calendar, 120-credit degrees.",
		Aliases:     []string{"umass amherst", "university of massachusetts amherst", "umass"},
		DiscontinuedCourses: []string{
			"COMPSCI 119",
			"COMPSCI 191A",
		},
		TargetCredits:  120,
		PromptAddendum: "General education designations (e.g. AT, SB, SI) are satisfied by ELECTIVE slots with options.",
	},
	"drexel": {
		ID:          "drexel",
		Name:        "Drexel University",
		Description: "Quarter-based co-op school; schedules are expressed in semester-equivalent terms.",
		Aliases:     []string{"drexel"},
		DiscontinuedCourses: []string{
			"CS 130",
			"CS 131",
		},
		TargetCredits:  180,
		PromptAddendum: "Drexel credits are quarter credits; keep the school's own credit values.",
	},
}

// Load returns the named built-in profile or an error if the id is unknown.
func Load(id string) (Profile, error) {
	p, ok := builtins[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Profile{}, fmt.Errorf("profile: unknown school profile %q (available: %s)", id, strings.Join(IDs(), ", "))
	}
	return p, nil
}

// IDs returns the built-in profile ids in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(builtins))
	for id := range builtins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve picks a profile by explicit id, falling back to matching the
// school name against profile aliases, then to the general profile.
func Resolve(id, schoolName string) Profile {
	if id != "" {
		if p, err := Load(id); err == nil {
			return p
		}
	}
	name := strings.ToLower(schoolName)
	if name != "" {
		// Longest alias wins so "umass amherst" beats "umass".
		best, bestLen := Profile{}, 0
		for _, pid := range IDs() {
			p := builtins[pid]
			for _, a := range p.Aliases {
				if len(a) > bestLen && containsWord(name, a) {
					best, bestLen = p, len(a)
				}
			}
		}
		if bestLen > 0 {
			return best
		}
	}
	return builtins[DefaultID]
}

func containsWord(haystack, needle string) bool {
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if (start == 0 || !isWordByte(haystack[start-1])) && (end == len(haystack) || !isWordByte(haystack[end])) {
			return true
		}
		from = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// IsDiscontinued reports whether code is in the profile's discontinued table.
func (p Profile) IsDiscontinued(code string) bool {
	n := schema.NormalizeCode(code)
	if n == "" {
		return false
	}
	for _, d := range p.DiscontinuedCourses {
		if schema.NormalizeCode(d) == n {
			return true
		}
	}
	return false
}

// WithDiscontinued returns a copy of p with extra discontinued codes
// appended, for configuration overrides.
func (p Profile) WithDiscontinued(codes ...string) Profile {
	p.DiscontinuedCourses = append(append([]string(nil), p.DiscontinuedCourses...), codes...)
	return p
}
