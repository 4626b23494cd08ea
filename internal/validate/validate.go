// Package validate is the schedule validation and repair engine.
//
// Validate takes a normalized SchedulePlan and returns a cleaned copy plus a
// list of findings. It removes duplicate courses, recomputes every credit
// total, flags placeholders, invalid and discontinued codes, and load-policy
// violations, and optionally trims surplus elective credits. It performs no
// I/O and is deterministic for identical input and options.
package validate

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/dshills/coursecheck/internal/profile"
	"github.com/dshills/coursecheck/internal/schema"
)

// Policy constants.
const (
	// DefaultTargetCredits applies when neither options nor the plan give a
	// usable target.
	DefaultTargetCredits = 128
	// TrimTolerance is how far above target a plan may run before trimming.
	TrimTolerance = 15
	// PlanCreditCeiling is the absolute plan total above which an overage is
	// reported.
	PlanCreditCeiling = 160
	// MaxSemesterCredits and MinSemesterCredits bound one academic semester;
	// MinFinalSemesterCredits applies to the last academic semester.
	MaxSemesterCredits      = 21
	MinSemesterCredits      = 16
	MinFinalSemesterCredits = 12
	// MinMainCourses is the full-time load for every academic semester but
	// the last.
	MinMainCourses = 4
	// ElectiveShareLimit and ElectiveCountLimit must both be exceeded for an
	// excessive_electives finding.
	ElectiveShareLimit = 0.5
	ElectiveCountLimit = 10
)

// Options configures a validation run.
type Options struct {
	// SchoolID selects the school profile. When empty the profile is
	// resolved from the plan's school name.
	SchoolID          string
	TrimExcessCredits bool
	// TargetCredits overrides the degree target when positive.
	TargetCredits int
	// Profile, when set, is used instead of resolving SchoolID.
	Profile *profile.Profile
}

// Stats exposes every counter computed during a run.
type Stats struct {
	SchoolID            string `json:"schoolId"`
	MainCourseThreshold int    `json:"mainCourseThreshold"`
	TargetCredits       int    `json:"targetCredits"`
	OriginalCredits     int    `json:"originalCredits"`
	FinalCredits        int    `json:"finalCredits"`
	AcademicSemesters   int    `json:"academicSemesters"`
	CoopSemesters       int    `json:"coopSemesters"`
	TotalCourses        int    `json:"totalCourses"`
	ElectiveCourses     int    `json:"electiveCourses"`
	SpecificCourses     int    `json:"specificCourses"`
	DuplicatesRemoved   int    `json:"duplicatesRemoved"`
	PlaceholdersFound   int    `json:"placeholdersFound"`
	InvalidCodes        int    `json:"invalidCodes"`
	DiscontinuedCourses int    `json:"discontinuedCourses"`
	FullTimeViolations  int    `json:"fullTimeViolations"`
	CreditOverages      int    `json:"creditOverages"`
	CreditUnderages     int    `json:"creditUnderages"`
	CreditMismatches    int    `json:"creditMismatches"`
	MissingData         int    `json:"missingData"`
	ElectivesTrimmed    int    `json:"electivesTrimmed"`
	CreditsTrimmed      int    `json:"creditsTrimmed"`
	ExcessiveElectives  bool   `json:"excessiveElectives"`
	PlanOverCeiling     bool   `json:"planOverCeiling"`
}

// Result is the output of Validate.
type Result struct {
	Schedule schema.SchedulePlan      `json:"schedule"`
	Issues   []schema.ValidationIssue `json:"issues"`
	Stats    Stats                    `json:"stats"`
}

// Count returns the number of issues of type t.
func (r Result) Count(t schema.IssueType) int {
	n := 0
	for _, is := range r.Issues {
		if is.Type == t {
			n++
		}
	}
	return n
}

// CountBySeverity returns the error and warning counts.
func (r Result) CountBySeverity() (errs, warnings int) {
	for _, is := range r.Issues {
		switch is.Severity {
		case schema.SeverityError:
			errs++
		case schema.SeverityWarning:
			warnings++
		}
	}
	return
}

// courseCodeRe is the shape of a specific catalog code, e.g. "CS 1800".
var courseCodeRe = regexp.MustCompile(`^[A-Z]{2,5}\s*\d{3,4}[A-Z]?$`)

// ValidCourseCode reports whether code looks like a catalog code.
func ValidCourseCode(code string) bool {
	return courseCodeRe.MatchString(strings.ToUpper(strings.TrimSpace(code)))
}

type run struct {
	issues []schema.ValidationIssue
	stats  Stats
}

func (r *run) add(t schema.IssueType, sev schema.Severity, term, course, format string, args ...any) {
	r.issues = append(r.issues, schema.ValidationIssue{
		Type:     t,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Semester: term,
		Course:   course,
	})
}

// Validate checks and repairs plan. The input is not modified.
func Validate(plan schema.SchedulePlan, opts Options) Result {
	p := plan.Clone()
	if p.Semesters == nil {
		p.Semesters = []schema.Semester{}
	}
	if p.Warnings == nil {
		p.Warnings = []string{}
	}

	prof := profile.Resolve(opts.SchoolID, p.School)
	if opts.Profile != nil {
		prof = *opts.Profile
	}

	r := &run{issues: []schema.ValidationIssue{}}
	r.stats.SchoolID = prof.ID
	r.stats.MainCourseThreshold = MainCourseThreshold(p)
	r.stats.TargetCredits = ResolveTarget(p, opts)
	r.stats.OriginalCredits = schema.AcademicCredits(p)

	if len(p.Semesters) == 0 {
		r.add(schema.IssueMissingData, schema.SeverityError, "", "", "Schedule contains no semesters")
		r.stats.MissingData++
	}

	if opts.TrimExcessCredits && r.stats.OriginalCredits > r.stats.TargetCredits+TrimTolerance {
		removed, credits := trimElectives(&p, r.stats.TargetCredits, r.stats.MainCourseThreshold)
		r.stats.ElectivesTrimmed = len(removed)
		r.stats.CreditsTrimmed = credits
		r.add(schema.IssueCreditOverage, schema.SeverityWarning, "", "",
			"Schedule totaled %d credits against a %d-credit target; removed %d elective course(s) (%d credits)",
			r.stats.OriginalCredits, r.stats.TargetCredits, len(removed), credits)
	}

	r.scanSemesters(&p, prof)

	p.TotalCredits = schema.AcademicCredits(p)
	r.stats.FinalCredits = p.TotalCredits
	if p.TotalCredits > PlanCreditCeiling {
		r.stats.PlanOverCeiling = true
		r.add(schema.IssueCreditOverage, schema.SeverityWarning, "", "",
			"Schedule totals %d credits, above the %d-credit ceiling", p.TotalCredits, PlanCreditCeiling)
	}

	total := r.stats.TotalCourses
	if total > 0 && float64(r.stats.ElectiveCourses)/float64(total) > ElectiveShareLimit && r.stats.ElectiveCourses > ElectiveCountLimit {
		r.stats.ExcessiveElectives = true
		r.add(schema.IssueExcessiveElectives, schema.SeverityWarning, "", "",
			"%d of %d courses are generic elective slots; required courses may be missing",
			r.stats.ElectiveCourses, total)
	}

	for _, w := range summarize(r.stats) {
		if !slices.Contains(p.Warnings, w) {
			p.Warnings = append(p.Warnings, w)
		}
	}
	return Result{Schedule: p, Issues: r.issues, Stats: r.stats}
}

// scanSemesters runs the per-course and per-semester checks, dropping
// duplicates and recomputing semester totals in place.
func (r *run) scanSemesters(p *schema.SchedulePlan, prof profile.Profile) {
	lastAcademic := -1
	for i, s := range p.Semesters {
		if !s.IsCoop() {
			lastAcademic = i
		}
	}

	seen := make(map[string]bool)
	for i := range p.Semesters {
		s := &p.Semesters[i]
		if s.IsCoop() {
			r.stats.CoopSemesters++
			s.Courses = nil
			s.TotalCredits = 0
			continue
		}
		s.Type = schema.SemesterAcademic
		r.stats.AcademicSemesters++

		kept := make([]schema.Course, 0, len(s.Courses))
		mainCount := 0
		for _, c := range s.Courses {
			code := strings.TrimSpace(c.Code)
			if code == "" && strings.TrimSpace(c.Name) == "" {
				r.stats.MissingData++
				r.add(schema.IssueMissingData, schema.SeverityWarning, s.Term, "",
					"Dropped a course with neither code nor name in %s", s.Term)
				continue
			}
			if c.Credits < 1 || c.Credits > 6 {
				r.stats.MissingData++
				r.add(schema.IssueMissingData, schema.SeverityWarning, s.Term, code,
					"%s in %s has %d credits; expected 1 to 6", courseLabel(c), s.Term, c.Credits)
			}

			elective := schema.IsElectiveCode(code)
			if !elective {
				if !ValidCourseCode(code) {
					r.stats.InvalidCodes++
					r.add(schema.IssueInvalidCode, schema.SeverityWarning, s.Term, code,
						"%q in %s is not a valid course code", code, s.Term)
				}
				if prof.IsDiscontinued(code) {
					r.stats.DiscontinuedCourses++
					r.add(schema.IssueDiscontinued, schema.SeverityError, s.Term, code,
						"%s in %s is no longer offered", courseLabel(c), s.Term)
				}
				if n := schema.NormalizeCode(code); n != "" {
					if seen[n] {
						r.stats.DuplicatesRemoved++
						r.add(schema.IssueDuplicate, schema.SeverityWarning, s.Term, code,
							"Removed duplicate %s from %s", courseLabel(c), s.Term)
						continue
					}
					seen[n] = true
				}
			}
			if IsPlaceholder(c) {
				r.stats.PlaceholdersFound++
				r.add(schema.IssuePlaceholder, schema.SeverityWarning, s.Term, code,
					"%s in %s is a placeholder, not a specific course", courseLabel(c), s.Term)
			}

			if c.Credits >= r.stats.MainCourseThreshold {
				mainCount++
			}
			r.stats.TotalCourses++
			if elective {
				r.stats.ElectiveCourses++
			} else {
				r.stats.SpecificCourses++
			}
			kept = append(kept, c)
		}

		calculated := schema.SumCredits(kept)
		if i != lastAcademic && mainCount < MinMainCourses {
			r.stats.FullTimeViolations++
			r.add(schema.IssueFullTimeViolation, schema.SeverityWarning, s.Term, "",
				"%s has %d main course(s); full-time status needs %d", s.Term, mainCount, MinMainCourses)
		}
		if calculated > MaxSemesterCredits {
			r.stats.CreditOverages++
			r.add(schema.IssueCreditOverage, schema.SeverityWarning, s.Term, "",
				"%s has %d credits, above the %d-credit maximum", s.Term, calculated, MaxSemesterCredits)
		}
		minimum := MinSemesterCredits
		if i == lastAcademic {
			minimum = MinFinalSemesterCredits
		}
		if calculated < minimum {
			r.stats.CreditUnderages++
			r.add(schema.IssueCreditUnderage, schema.SeverityWarning, s.Term, "",
				"%s has %d credits, below the %d-credit minimum", s.Term, calculated, minimum)
		}
		if s.TotalCredits != calculated {
			r.stats.CreditMismatches++
			r.add(schema.IssueCreditMismatch, schema.SeverityWarning, s.Term, "",
				"%s listed %d credits but its courses sum to %d", s.Term, s.TotalCredits, calculated)
		}
		s.Courses = kept
		s.TotalCredits = calculated
	}
}

func courseLabel(c schema.Course) string {
	code := strings.TrimSpace(c.Code)
	name := strings.TrimSpace(c.Name)
	switch {
	case code != "" && name != "" && !schema.IsElectiveCode(code):
		return code + " (" + name + ")"
	case name != "":
		return name
	default:
		return code
	}
}

// ResolveTarget returns the credit target for a run: the option when
// positive, else the plan's declared total when in [1, 200), else 128.
func ResolveTarget(p schema.SchedulePlan, opts Options) int {
	if opts.TargetCredits > 0 {
		return opts.TargetCredits
	}
	if p.TotalCredits >= 1 && p.TotalCredits < 200 {
		return p.TotalCredits
	}
	return DefaultTargetCredits
}

// summarize renders one warning line per finding category.
func summarize(st Stats) []string {
	var out []string
	if st.DuplicatesRemoved > 0 {
		out = append(out, fmt.Sprintf("Removed %d duplicate course(s)", st.DuplicatesRemoved))
	}
	if st.PlaceholdersFound > 0 {
		out = append(out, fmt.Sprintf("Found %d placeholder course(s) that need a specific course", st.PlaceholdersFound))
	}
	if st.FullTimeViolations > 0 {
		out = append(out, fmt.Sprintf("%d semester(s) have fewer than %d main courses; full-time status is at risk", st.FullTimeViolations, MinMainCourses))
	}
	if st.CreditOverages > 0 {
		out = append(out, fmt.Sprintf("%d semester(s) exceed %d credits", st.CreditOverages, MaxSemesterCredits))
	}
	if st.PlanOverCeiling {
		out = append(out, fmt.Sprintf("Schedule totals %d credits, above the %d-credit ceiling", st.FinalCredits, PlanCreditCeiling))
	}
	if st.CreditUnderages > 0 {
		out = append(out, fmt.Sprintf("%d semester(s) are below the minimum credit load", st.CreditUnderages))
	}
	if st.DiscontinuedCourses > 0 {
		out = append(out, fmt.Sprintf("%d discontinued course(s) must be replaced", st.DiscontinuedCourses))
	}
	if st.InvalidCodes > 0 {
		out = append(out, fmt.Sprintf("%d course code(s) do not look like catalog codes", st.InvalidCodes))
	}
	if st.CreditMismatches > 0 {
		out = append(out, fmt.Sprintf("Corrected %d semester credit total(s)", st.CreditMismatches))
	}
	if st.MissingData > 0 {
		out = append(out, fmt.Sprintf("%d entr(ies) had missing or out-of-range data", st.MissingData))
	}
	if st.ElectivesTrimmed > 0 {
		out = append(out, fmt.Sprintf("Trimmed %d elective course(s) (%d credits) toward the %d-credit target", st.ElectivesTrimmed, st.CreditsTrimmed, st.TargetCredits))
	}
	if st.ExcessiveElectives {
		out = append(out, fmt.Sprintf("%d of %d courses are generic electives; required courses may be missing", st.ElectiveCourses, st.TotalCourses))
	}
	return out
}
