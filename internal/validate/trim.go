package validate

import (
	"sort"
	"strings"

	"github.com/dshills/coursecheck/internal/schema"
)

// minMainAfterTrim is the fewest main courses a semester may keep when a
// main-weight elective is trimmed from it.
const minMainAfterTrim = 3

// electivePriority tiers, lowest trimmed first. The first matching tier wins.
var electiveTiers = []struct {
	priority int
	words    []string
}{
	{6, []string{"writing", "composition"}},
	{5, []string{"concentration", "major", "technical", "core"}},
	{4, []string{"science", "lab", "math", "quantitative"}},
	{2, []string{"humanities", "social", "arts", "culture", "nupath"}},
	{1, []string{"free", "general", "open", "unrestricted"}},
}

const defaultElectivePriority = 3

// ElectivePriority ranks an elective slot by its name. Lower values are
// trimmed first.
func ElectivePriority(name string) int {
	n := strings.ToLower(name)
	for _, tier := range electiveTiers {
		for _, w := range tier.words {
			if strings.Contains(n, w) {
				return tier.priority
			}
		}
	}
	return defaultElectivePriority
}

type trimCandidate struct {
	sem, idx int
	priority int
	course   schema.Course
}

// trimElectives removes elective slots from p until its academic total is
// at or below target or no safe candidate remains. A candidate is unsafe when
// removing it would leave its semester with fewer than minMainAfterTrim main
// courses. Trimmed semesters
// have their stored totals reduced by the removed credits so that any
// pre-existing mismatch is still reported afterwards.
//
// The pass is greedy: cheapest tier first, latest semester first. It does
// not search for the minimal set of removals.
func trimElectives(p *schema.SchedulePlan, target, threshold int) ([]schema.Course, int) {
	var cands []trimCandidate
	mainCount := make(map[int]int)
	for si, s := range p.Semesters {
		if s.IsCoop() {
			continue
		}
		for ci, c := range s.Courses {
			if c.Credits >= threshold {
				mainCount[si]++
			}
			if schema.IsElectiveCode(c.Code) {
				cands = append(cands, trimCandidate{sem: si, idx: ci, priority: ElectivePriority(c.Name), course: c})
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		if a.sem != b.sem {
			return a.sem > b.sem
		}
		return a.idx > b.idx
	})

	total := schema.AcademicCredits(*p)
	drop := make(map[[2]int]bool)
	var removed []schema.Course
	credits := 0
	for _, c := range cands {
		if total <= target {
			break
		}
		isMain := c.course.Credits >= threshold
		if isMain && mainCount[c.sem]-1 < minMainAfterTrim {
			continue
		}
		drop[[2]int{c.sem, c.idx}] = true
		total -= c.course.Credits
		credits += c.course.Credits
		if isMain {
			mainCount[c.sem]--
		}
		removed = append(removed, c.course)
	}
	if len(drop) == 0 {
		return removed, credits
	}

	for si := range p.Semesters {
		s := &p.Semesters[si]
		kept := s.Courses[:0:0]
		for ci, c := range s.Courses {
			if drop[[2]int{si, ci}] {
				s.TotalCredits -= c.Credits
				continue
			}
			kept = append(kept, c)
		}
		s.Courses = kept
	}
	return removed, credits
}
