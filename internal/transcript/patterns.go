package transcript

import (
	"fmt"
	"math"
	"strings"

	"github.com/dshills/coursecheck/internal/schema"
)

// Pattern summarizes a student's historical course load.
type Pattern struct {
	Semesters            int     `json:"semesters"`
	AverageCredits       float64 `json:"averageCredits"`
	AverageCourses       float64 `json:"averageCourses"`
	TypicalCourseCredits int     `json:"typicalCourseCredits"`
	SummerTerms          int     `json:"summerTerms"`
	CompletedCoops       int     `json:"completedCoops"`
}

// Patterns derives load statistics from grouped transcript data. Only
// semesters with a parseable term are counted.
func Patterns(data schema.TranscriptData) Pattern {
	p := Pattern{CompletedCoops: data.CompletedCoops}
	credits, courses := 0, 0
	counts := make(map[int]int)
	for _, s := range data.CompletedSemesters {
		t, ok := schema.ParseTerm(s.Term)
		if !ok {
			continue
		}
		p.Semesters++
		if t.Season == schema.Summer {
			p.SummerTerms++
		}
		credits += s.TotalCredits
		courses += len(s.Courses)
		for _, c := range s.Courses {
			if c.Credits > 1 {
				counts[c.Credits]++
			}
		}
	}
	if p.Semesters > 0 {
		p.AverageCredits = round1(float64(credits) / float64(p.Semesters))
		p.AverageCourses = round1(float64(courses) / float64(p.Semesters))
	}
	best := 0
	for cr, n := range counts {
		if n > best || (n == best && cr > p.TypicalCourseCredits) {
			p.TypicalCourseCredits, best = cr, n
		}
	}
	return p
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Describe renders the pattern as prompt text. It returns "" when there is
// no history.
func (p Pattern) Describe() string {
	if p.Semesters == 0 && p.CompletedCoops == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "The student has completed %d semester(s), averaging %.1f credits and %.1f courses per semester.",
		p.Semesters, p.AverageCredits, p.AverageCourses)
	if p.TypicalCourseCredits > 0 {
		fmt.Fprintf(&sb, " Most courses carry %d credits.", p.TypicalCourseCredits)
	}
	if p.SummerTerms > 0 {
		fmt.Fprintf(&sb, " They have taken %d summer term(s).", p.SummerTerms)
	}
	if p.CompletedCoops > 0 {
		fmt.Fprintf(&sb, " They have completed %d co-op(s).", p.CompletedCoops)
	}
	return sb.String()
}
