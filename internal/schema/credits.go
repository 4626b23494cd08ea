package schema

import (
	"strings"
	"unicode"
)

// NormalizeCode upper-cases a course code and removes all whitespace, so
// "cs 1800" and "CS1800" compare equal.
func NormalizeCode(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, code)
}

// IsElectiveCode reports whether code marks a flexible elective slot.
func IsElectiveCode(code string) bool {
	n := NormalizeCode(code)
	return n == ElectiveCode || n == "ELEC"
}

// SumCredits returns the credit sum of courses.
func SumCredits(courses []Course) int {
	total := 0
	for _, c := range courses {
		total += c.Credits
	}
	return total
}

// AcademicCredits returns the credit sum over academic semesters, using the
// courses rather than any stored semester totals.
func AcademicCredits(p SchedulePlan) int {
	total := 0
	for _, s := range p.Semesters {
		if s.IsCoop() {
			continue
		}
		total += SumCredits(s.Courses)
	}
	return total
}

// RecomputeCredits re-derives every total bottom-up: course credits into
// semester totals, semester totals into the plan total. Co-op semesters are
// cleared of courses and carry zero credits.
func RecomputeCredits(p *SchedulePlan) {
	total := 0
	for i := range p.Semesters {
		s := &p.Semesters[i]
		if s.IsCoop() {
			s.Courses = nil
			s.TotalCredits = 0
			continue
		}
		s.Type = SemesterAcademic
		s.TotalCredits = SumCredits(s.Courses)
		total += s.TotalCredits
	}
	p.TotalCredits = total
}

// Clone returns a deep copy of the plan.
func (p SchedulePlan) Clone() SchedulePlan {
	out := p
	if p.Semesters != nil {
		out.Semesters = make([]Semester, len(p.Semesters))
		for i, s := range p.Semesters {
			out.Semesters[i] = s
			if s.Courses != nil {
				out.Semesters[i].Courses = append([]Course(nil), s.Courses...)
			}
		}
	}
	if p.Warnings != nil {
		out.Warnings = append([]string(nil), p.Warnings...)
	}
	if p.TransferCredits != nil {
		out.TransferCredits = append([]Course(nil), p.TransferCredits...)
	}
	return out
}

// FindSemester returns the index of the semester with the given term, or -1.
func (p SchedulePlan) FindSemester(term string) int {
	for i, s := range p.Semesters {
		if SameTerm(s.Term, term) {
			return i
		}
	}
	return -1
}

// FindCourse returns the index of the first course in s whose normalized code
// equals code, or -1.
func (s Semester) FindCourse(code string) int {
	want := NormalizeCode(code)
	for i, c := range s.Courses {
		if NormalizeCode(c.Code) == want {
			return i
		}
	}
	return -1
}
