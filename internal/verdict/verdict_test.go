package verdict

import (
	"testing"

	"github.com/dshills/coursecheck/internal/schema"
	"github.com/dshills/coursecheck/internal/validate"
)

func result(academic int, issues ...schema.ValidationIssue) validate.Result {
	return validate.Result{
		Issues: issues,
		Stats:  validate.Stats{AcademicSemesters: academic},
	}
}

func issue(t schema.IssueType, sev schema.Severity) schema.ValidationIssue {
	return schema.ValidationIssue{Type: t, Severity: sev}
}

func TestComputeScore(t *testing.T) {
	cases := []struct {
		errs, warn, rep int
		want            int
	}{
		{0, 0, 0, 100},
		{1, 0, 0, 80},  // 100 - 20
		{0, 1, 0, 95},  // 100 - 5
		{0, 0, 1, 99},  // 100 - 1
		{5, 0, 0, 0},   // clamped at 0
		{1, 1, 1, 74},  // 100 - 20 - 5 - 1
		{0, 0, 101, 0}, // clamped at 0
	}
	for _, c := range cases {
		got := ComputeScore(c.errs, c.warn, c.rep)
		if got != c.want {
			t.Errorf("ComputeScore(%d, %d, %d) = %d, want %d", c.errs, c.warn, c.rep, got, c.want)
		}
	}
}

func TestVerdictOrdinal(t *testing.T) {
	ordered := []Verdict{VerdictAccept, VerdictReview, VerdictRegenerate}
	for i := 1; i < len(ordered); i++ {
		if VerdictOrdinal(ordered[i-1]) >= VerdictOrdinal(ordered[i]) {
			t.Errorf("VerdictOrdinal(%q) >= VerdictOrdinal(%q): not strictly ascending", ordered[i-1], ordered[i])
		}
	}
	if got := VerdictOrdinal(Verdict("UNKNOWN")); got != -1 {
		t.Errorf("VerdictOrdinal(UNKNOWN) = %d, want -1", got)
	}
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict(" review ")
	if err != nil || v != VerdictReview {
		t.Errorf("ParseVerdict(review) = %q, %v", v, err)
	}
	if _, err := ParseVerdict("ALIGNED"); err == nil {
		t.Error("expected error for unknown verdict")
	}
}

func TestDetermine_NoSemesters(t *testing.T) {
	if got := Determine(result(0)); got != VerdictRegenerate {
		t.Errorf("Determine with no academic semesters = %q, want REGENERATE", got)
	}
}

func TestDetermine_ErrorIssue(t *testing.T) {
	r := result(8, issue(schema.IssueDiscontinued, schema.SeverityError))
	if got := Determine(r); got != VerdictRegenerate {
		t.Errorf("Determine with discontinued course = %q, want REGENERATE", got)
	}
	if !ShouldRetry(r) {
		t.Error("ShouldRetry = false, want true")
	}
}

func TestDetermine_ReviewWarning(t *testing.T) {
	r := result(8, issue(schema.IssuePlaceholder, schema.SeverityWarning))
	if got := Determine(r); got != VerdictReview {
		t.Errorf("Determine with placeholder = %q, want REVIEW", got)
	}
	if ShouldRetry(r) {
		t.Error("warnings alone must not trigger a retry")
	}
}

func TestDetermine_RepairedOnly(t *testing.T) {
	// Duplicates and credit mismatches are fixed by the engine, so the
	// schedule is accepted.
	r := result(8,
		issue(schema.IssueDuplicate, schema.SeverityWarning),
		issue(schema.IssueCreditMismatch, schema.SeverityWarning),
	)
	if got := Determine(r); got != VerdictAccept {
		t.Errorf("Determine with repaired findings only = %q, want ACCEPT", got)
	}
}

func TestCountSeverities(t *testing.T) {
	r := result(8,
		issue(schema.IssueDiscontinued, schema.SeverityError),
		issue(schema.IssueMissingData, schema.SeverityError),
		issue(schema.IssuePlaceholder, schema.SeverityWarning),
		issue(schema.IssueDuplicate, schema.SeverityWarning),
		issue(schema.IssueCreditMismatch, schema.SeverityWarning),
		issue(schema.IssueCreditMismatch, schema.SeverityWarning),
	)
	e, w, rep := CountSeverities(r)
	if e != 2 || w != 1 || rep != 3 {
		t.Errorf("CountSeverities = (%d, %d, %d), want (2, 1, 3)", e, w, rep)
	}
}

func TestSummarize_FromEngine(t *testing.T) {
	plan := schema.SchedulePlan{Semesters: []schema.Semester{{
		Term: "Fall 2025",
		Type: schema.SemesterAcademic,
		Courses: []schema.Course{
			{Code: "CS 1800", Name: "Discrete", Credits: 4},
			{Code: "CS 2500", Name: "Fundies", Credits: 4},
			{Code: "CS 2510", Name: "Fundies 2", Credits: 4},
		},
		TotalCredits: 12,
	}}}
	s := Summarize(validate.Validate(plan, validate.Options{}))
	if s.Verdict != VerdictAccept {
		t.Errorf("clean single-semester plan: verdict %q, want ACCEPT", s.Verdict)
	}
	if s.Score != 100 {
		t.Errorf("score = %d, want 100", s.Score)
	}
}
