package validate

import "github.com/dshills/coursecheck/internal/schema"

// DefaultMainCourseThreshold is used when a plan has no non-elective
// course worth more than one credit.
const DefaultMainCourseThreshold = 3

// MainCourseThreshold derives the credit value at or above which a course
// counts as a main (full-weight) course. It takes the most common credit
// value among non-elective courses worth more than one credit, preferring
// the larger value on ties, and returns max(2, mode-1). A 4-credit school
// yields 3 and a 3-credit school yields 2.
func MainCourseThreshold(p schema.SchedulePlan) int {
	counts := make(map[int]int)
	for _, s := range p.Semesters {
		if s.IsCoop() {
			continue
		}
		for _, c := range s.Courses {
			if schema.IsElectiveCode(c.Code) || c.Credits <= 1 {
				continue
			}
			counts[c.Credits]++
		}
	}
	if len(counts) == 0 {
		return DefaultMainCourseThreshold
	}
	mode, best := 0, 0
	for credits, n := range counts {
		if n > best || (n == best && credits > mode) {
			mode, best = credits, n
		}
	}
	return max(2, mode-1)
}
