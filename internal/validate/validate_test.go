package validate

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/coursecheck/internal/schema"
)

func course(code, name string, credits int) schema.Course {
	return schema.Course{Code: code, Name: name, Credits: credits}
}

func academic(term string, courses ...schema.Course) schema.Semester {
	return schema.Semester{
		Term:         term,
		Type:         schema.SemesterAcademic,
		Courses:      courses,
		TotalCredits: schema.SumCredits(courses),
	}
}

// fullLoad returns four distinct 4-credit courses with codes seeded by n.
func fullLoad(n int) []schema.Course {
	out := make([]schema.Course, 4)
	for i := range out {
		out[i] = course(fmt.Sprintf("CS %d", 1000+n*10+i), fmt.Sprintf("Course %d-%d", n, i), 4)
	}
	return out
}

func TestValidate_DuplicateRemoved(t *testing.T) {
	p := schema.SchedulePlan{
		School: "Northeastern University",
		Semesters: []schema.Semester{{
			Term: "Fall 2025",
			Type: schema.SemesterAcademic,
			Courses: []schema.Course{
				course("CS 1800", "Discrete Structures", 4),
				course("cs 1800", "Discrete Structures", 4),
			},
		}},
	}
	res := Validate(p, Options{})

	if got := res.Count(schema.IssueDuplicate); got != 1 {
		t.Fatalf("duplicate issues = %d, want 1", got)
	}
	s := res.Schedule.Semesters[0]
	if len(s.Courses) != 1 || s.Courses[0].Code != "CS 1800" {
		t.Errorf("expected the first occurrence kept, got %+v", s.Courses)
	}
	if s.TotalCredits != 4 {
		t.Errorf("semester total = %d, want 4", s.TotalCredits)
	}
	if res.Stats.DuplicatesRemoved != 1 {
		t.Errorf("DuplicatesRemoved = %d", res.Stats.DuplicatesRemoved)
	}
}

func TestValidate_DroppedDuplicateNotTallied(t *testing.T) {
	first := append(fullLoad(0)[:3:3], course("cs 1000", "Course 0-0 again", 4))
	p := schema.SchedulePlan{
		School:    "Test U",
		Semesters: []schema.Semester{academic("Fall 2025", first...), academic("Spring 2026", fullLoad(1)...)},
	}
	res := Validate(p, Options{})

	if got := res.Count(schema.IssueDuplicate); got != 1 {
		t.Fatalf("duplicate issues = %d, want 1", got)
	}
	if got := res.Count(schema.IssueFullTimeViolation); got != 1 {
		t.Errorf("full-time violations = %d, want 1 (three main courses remain)", got)
	}
	if res.Stats.TotalCourses != 7 || res.Stats.SpecificCourses != 7 {
		t.Errorf("courses = %d total / %d specific, want 7 / 7", res.Stats.TotalCourses, res.Stats.SpecificCourses)
	}
}

func TestValidate_DuplicateAcrossSemesters(t *testing.T) {
	p := schema.SchedulePlan{Semesters: []schema.Semester{
		academic("Fall 2025", course("CS 2500", "Fundies 1", 4)),
		academic("Spring 2026", course("CS2500", "Fundies 1", 4), course("CS 2510", "Fundies 2", 4)),
	}}
	res := Validate(p, Options{})
	if got := res.Count(schema.IssueDuplicate); got != 1 {
		t.Fatalf("duplicate issues = %d, want 1", got)
	}
	if len(res.Schedule.Semesters[1].Courses) != 1 {
		t.Errorf("second semester should keep only CS 2510, got %+v", res.Schedule.Semesters[1].Courses)
	}
}

func TestValidate_ElectivesNeverDeduplicated(t *testing.T) {
	p := schema.SchedulePlan{Semesters: []schema.Semester{
		academic("Fall 2025",
			course("ELECTIVE", "Free Elective", 4),
			course("ELECTIVE", "Free Elective", 4),
			course("elec", "Free Elective", 4),
		),
	}}
	res := Validate(p, Options{})
	if got := res.Count(schema.IssueDuplicate); got != 0 {
		t.Errorf("duplicate issues = %d, want 0", got)
	}
	if got := len(res.Schedule.Semesters[0].Courses); got != 3 {
		t.Errorf("courses = %d, want 3", got)
	}
	if res.Stats.ElectiveCourses != 3 {
		t.Errorf("ElectiveCourses = %d, want 3", res.Stats.ElectiveCourses)
	}
}

func TestValidate_FullTimeAndUnderage(t *testing.T) {
	p := schema.SchedulePlan{Semesters: []schema.Semester{
		academic("Fall 2025", course("CS 1800", "Discrete", 4), course("CS 2500", "Fundies", 4), course("MATH 1341", "Calc", 4)),
		academic("Spring 2026", fullLoad(1)...),
	}}
	res := Validate(p, Options{})
	if got := res.Count(schema.IssueFullTimeViolation); got != 1 {
		t.Errorf("full_time_violation = %d, want 1", got)
	}
	if got := res.Count(schema.IssueCreditUnderage); got != 1 {
		t.Errorf("credit_underage = %d, want 1", got)
	}
	for _, is := range res.Issues {
		if is.Type == schema.IssueFullTimeViolation && is.Semester != "Fall 2025" {
			t.Errorf("violation attributed to %q", is.Semester)
		}
	}
}

func TestValidate_LastSemesterExempt(t *testing.T) {
	p := schema.SchedulePlan{Semesters: []schema.Semester{
		academic("Fall 2025", fullLoad(1)...),
		academic("Spring 2026", course("CS 4500", "Software Dev", 4), course("CS 4410", "Compilers", 4), course("CS 4400", "PL", 4)),
		{Term: "Summer 1 2026", Type: schema.SemesterCoop, CoopNumber: 1},
	}}
	res := Validate(p, Options{})
	if got := res.Count(schema.IssueFullTimeViolation); got != 0 {
		t.Errorf("last academic semester must be exempt from full-time checks, got %d", got)
	}
	if got := res.Count(schema.IssueCreditUnderage); got != 0 {
		t.Errorf("12 credits meets the final-semester minimum, got %d underage", got)
	}
}

func TestValidate_Overage(t *testing.T) {
	courses := append(fullLoad(1), course("CS 3000", "Algo", 4), course("CS 3200", "DB", 4))
	p := schema.SchedulePlan{Semesters: []schema.Semester{
		academic("Fall 2025", courses...),
		academic("Spring 2026", fullLoad(2)...),
	}}
	res := Validate(p, Options{})
	if got := res.Count(schema.IssueCreditOverage); got != 1 {
		t.Errorf("credit_overage = %d, want 1", got)
	}
	if res.Stats.CreditOverages != 1 {
		t.Errorf("CreditOverages = %d", res.Stats.CreditOverages)
	}
}

func TestValidate_CreditMismatchCorrected(t *testing.T) {
	s := academic("Fall 2025", fullLoad(1)...)
	s.TotalCredits = 20
	res := Validate(schema.SchedulePlan{Semesters: []schema.Semester{s}}, Options{})
	if got := res.Count(schema.IssueCreditMismatch); got != 1 {
		t.Fatalf("credit_mismatch = %d, want 1", got)
	}
	if got := res.Schedule.Semesters[0].TotalCredits; got != 16 {
		t.Errorf("semester total = %d, want 16", got)
	}
	if res.Schedule.TotalCredits != 16 {
		t.Errorf("plan total = %d, want 16", res.Schedule.TotalCredits)
	}
}

func TestValidate_InvalidAndDiscontinued(t *testing.T) {
	p := schema.SchedulePlan{
		School: "Northeastern University",
		Semesters: []schema.Semester{
			academic("Fall 2025",
				course("CS 1500", "Old Intro", 4),
				course("COMPUTER101", "Bad Code", 4),
				course("cs 2500", "Fundies", 4),
				course("MATH 1341", "Calc", 4),
			),
		},
	}
	res := Validate(p, Options{})
	if got := res.Count(schema.IssueDiscontinued); got != 1 {
		t.Errorf("discontinued = %d, want 1", got)
	}
	if got := res.Count(schema.IssueInvalidCode); got != 1 {
		t.Errorf("invalid_code = %d, want 1", got)
	}
	for _, is := range res.Issues {
		if is.Type == schema.IssueDiscontinued && is.Severity != schema.SeverityError {
			t.Errorf("discontinued must be an error, got %q", is.Severity)
		}
	}
	if len(res.Schedule.Semesters[0].Courses) != 4 {
		t.Error("flagged courses must be kept")
	}
}

func TestValidate_SchoolIDOverridesName(t *testing.T) {
	p := schema.SchedulePlan{
		School:    "Some College",
		Semesters: []schema.Semester{academic("Fall 2025", course("CS 130", "Old", 4))},
	}
	if got := Validate(p, Options{}).Count(schema.IssueDiscontinued); got != 0 {
		t.Errorf("general profile flagged %d discontinued", got)
	}
	if got := Validate(p, Options{SchoolID: "drexel"}).Count(schema.IssueDiscontinued); got != 1 {
		t.Errorf("drexel profile flagged %d discontinued, want 1", got)
	}
}

func TestValidate_Placeholders(t *testing.T) {
	p := schema.SchedulePlan{Semesters: []schema.Semester{
		academic("Fall 2025",
			course("CS 1800", "Discrete", 4),
			course("TBD", "TBD", 4),
			course("ELECTIVE", "NUpath Elective", 4),
			schema.Course{Code: "ELECTIVE", Name: "Science with Lab", Credits: 4, Options: "PHYS 1151, CHEM 1211"},
		),
	}}
	res := Validate(p, Options{})
	if got := res.Count(schema.IssuePlaceholder); got != 2 {
		t.Errorf("placeholder = %d, want 2: %+v", got, res.Issues)
	}
	if len(res.Schedule.Semesters[0].Courses) != 4 {
		t.Error("placeholders must be kept")
	}
}

func TestValidate_MissingData(t *testing.T) {
	p := schema.SchedulePlan{Semesters: []schema.Semester{
		academic("Fall 2025", append(fullLoad(1), course("", "", 4), course("CS 9999", "Huge", 8))...),
	}}
	res := Validate(p, Options{})
	if got := res.Count(schema.IssueMissingData); got != 2 {
		t.Errorf("missing_data = %d, want 2", got)
	}
	if got := len(res.Schedule.Semesters[0].Courses); got != 5 {
		t.Errorf("courses = %d, want 5 (blank dropped, out-of-range kept)", got)
	}
}

func TestValidate_EmptyPlan(t *testing.T) {
	res := Validate(schema.SchedulePlan{}, Options{})
	if got := res.Count(schema.IssueMissingData); got != 1 {
		t.Fatalf("missing_data = %d, want 1", got)
	}
	if res.Issues[0].Severity != schema.SeverityError {
		t.Errorf("empty plan severity = %q, want error", res.Issues[0].Severity)
	}
	if res.Schedule.Semesters == nil {
		t.Error("semesters should be an empty slice, not nil")
	}
}

func TestValidate_CoopCarriesNothing(t *testing.T) {
	p := schema.SchedulePlan{Semesters: []schema.Semester{
		academic("Fall 2025", fullLoad(1)...),
		{Term: "Spring 2026", Type: schema.SemesterCoop, CoopNumber: 1, TotalCredits: 12, Courses: []schema.Course{course("CS 1800", "x", 4)}},
		academic("Fall 2026", fullLoad(2)...),
	}}
	res := Validate(p, Options{})
	coop := res.Schedule.Semesters[1]
	if len(coop.Courses) != 0 || coop.TotalCredits != 0 {
		t.Errorf("co-op semester should be empty, got %+v", coop)
	}
	if res.Schedule.TotalCredits != 32 {
		t.Errorf("plan total = %d, want 32", res.Schedule.TotalCredits)
	}
	if res.Stats.CoopSemesters != 1 || res.Stats.AcademicSemesters != 2 {
		t.Errorf("semester counts = %d academic, %d co-op", res.Stats.AcademicSemesters, res.Stats.CoopSemesters)
	}
}

func TestValidate_ExcessiveElectives(t *testing.T) {
	var sems []schema.Semester
	for i := 0; i < 3; i++ {
		cs := []schema.Course{course(fmt.Sprintf("CS %d", 2000+i), "Core", 4)}
		for j := 0; j < 4; j++ {
			cs = append(cs, course("ELECTIVE", "Free Elective", 4))
		}
		sems = append(sems, academic(fmt.Sprintf("Fall %d", 2025+i), cs...))
	}
	res := Validate(schema.SchedulePlan{Semesters: sems}, Options{})
	if got := res.Count(schema.IssueExcessiveElectives); got != 1 {
		t.Errorf("excessive_electives = %d, want 1", got)
	}
}

func TestValidate_SummaryWarnings(t *testing.T) {
	p := schema.SchedulePlan{
		Warnings: []string{"agent note"},
		Semesters: []schema.Semester{{
			Term:    "Fall 2025",
			Type:    schema.SemesterAcademic,
			Courses: []schema.Course{course("CS 1800", "Discrete", 4), course("CS 1800", "Discrete", 4)},
		}},
	}
	res := Validate(p, Options{})
	w := res.Schedule.Warnings
	if w[0] != "agent note" {
		t.Errorf("existing warnings must be preserved first, got %v", w)
	}
	found := false
	for _, line := range w {
		if strings.HasPrefix(line, "Removed 1 duplicate") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing duplicate summary line in %v", w)
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	p := schema.SchedulePlan{Semesters: []schema.Semester{{
		Term:    "Fall 2025",
		Type:    schema.SemesterAcademic,
		Courses: []schema.Course{course("CS 1800", "Discrete", 4), course("CS 1800", "Discrete", 4)},
	}}}
	before := p.Clone()
	Validate(p, Options{TrimExcessCredits: true})
	if !reflect.DeepEqual(before, p) {
		t.Error("Validate modified its input")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	p := schema.SchedulePlan{
		School:       "Northeastern University",
		TotalCredits: 128,
		Semesters: []schema.Semester{
			{Term: "Fall 2025", Type: schema.SemesterAcademic, TotalCredits: 3, Courses: append(fullLoad(1), course("cs 1010", "dup", 4))},
			academic("Spring 2026", append(fullLoad(2), course("CS 1010", "dup", 4), course("TBD", "TBD", 4))...),
			{Term: "Summer 1 2026", Type: schema.SemesterCoop, CoopNumber: 1},
			academic("Fall 2026", course("CS 4500", "SD", 4)),
		},
	}
	first := Validate(p, Options{TrimExcessCredits: true})
	second := Validate(first.Schedule, Options{TrimExcessCredits: true})

	if !reflect.DeepEqual(first.Schedule, second.Schedule) {
		t.Errorf("second pass changed the schedule:\nfirst:  %+v\nsecond: %+v", first.Schedule, second.Schedule)
	}
	for _, typ := range []schema.IssueType{schema.IssueDuplicate, schema.IssueCreditMismatch} {
		if n := second.Count(typ); n != 0 {
			t.Errorf("second pass reported %d %s issues", n, typ)
		}
	}
}

func TestValidate_CreditSumInvariant(t *testing.T) {
	p := schema.SchedulePlan{Semesters: []schema.Semester{
		{Term: "Fall 2025", Type: schema.SemesterAcademic, TotalCredits: 99, Courses: fullLoad(1)},
		{Term: "Spring 2026", Type: schema.SemesterCoop, CoopNumber: 1},
		{Term: "Fall 2026", TotalCredits: 0, Courses: fullLoad(2)},
	}}
	res := Validate(p, Options{})
	sum := 0
	for _, s := range res.Schedule.Semesters {
		if got := schema.SumCredits(s.Courses); got != s.TotalCredits {
			t.Errorf("%s: total %d, course sum %d", s.Term, s.TotalCredits, got)
		}
		if !s.IsCoop() {
			sum += s.TotalCredits
		}
	}
	if res.Schedule.TotalCredits != sum {
		t.Errorf("plan total %d, semester sum %d", res.Schedule.TotalCredits, sum)
	}
}

func TestValidate_NoDuplicatesInOutput(t *testing.T) {
	p := schema.SchedulePlan{Semesters: []schema.Semester{
		academic("Fall 2025", course("CS 1800", "a", 4), course("CS 2500", "b", 4), course("cs1800", "c", 4)),
		academic("Spring 2026", course("CS 2500", "d", 4), course("CS 2510", "e", 4)),
	}}
	res := Validate(p, Options{})
	seen := map[string]bool{}
	for _, s := range res.Schedule.Semesters {
		for _, c := range s.Courses {
			n := schema.NormalizeCode(c.Code)
			if seen[n] {
				t.Errorf("duplicate %s in output", n)
			}
			seen[n] = true
		}
	}
}

func TestResolveTarget(t *testing.T) {
	cases := []struct {
		planTotal, opt, want int
	}{
		{128, 0, 128},
		{0, 0, DefaultTargetCredits},
		{250, 0, DefaultTargetCredits},
		{128, 120, 120},
		{199, 0, 199},
	}
	for _, c := range cases {
		got := ResolveTarget(schema.SchedulePlan{TotalCredits: c.planTotal}, Options{TargetCredits: c.opt})
		if got != c.want {
			t.Errorf("ResolveTarget(plan=%d, opt=%d) = %d, want %d", c.planTotal, c.opt, got, c.want)
		}
	}
}

func TestValidCourseCode(t *testing.T) {
	cases := map[string]bool{
		"CS 1800":     true,
		"cs1800":      true,
		" ENGW 3302 ": true,
		"MATH 1341H":  true,
		"COMPSCI 119": false,
		"C 100":       false,
		"TBD":         false,
		"":            false,
	}
	for code, want := range cases {
		if got := ValidCourseCode(code); got != want {
			t.Errorf("ValidCourseCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	cases := []struct {
		c    schema.Course
		want bool
	}{
		{course("CS 1800", "Discrete Structures", 4), false},
		{course("TBD", "Something", 4), true},
		{course("CS 18XX", "Upper level CS", 4), true},
		{course("CS XXXX", "Upper level CS", 4), true},
		{course("ELECTIVE", "Elective", 4), true},
		{course("ELECTIVE", "NUpath: Writing Intensive", 4), true},
		{course("CS 3000", "Algorithms (placeholder)", 4), true},
		{schema.Course{Code: "ELECTIVE", Name: "Elective", Credits: 4, Options: "CS 3200"}, false},
		{course("ELECTIVE", "Science with Lab", 4), false},
	}
	for _, c := range cases {
		if got := IsPlaceholder(c.c); got != c.want {
			t.Errorf("IsPlaceholder(%+v) = %v, want %v", c.c, got, c.want)
		}
	}
}
