package transcript

import (
	"sort"

	"github.com/dshills/coursecheck/internal/schema"
)

// Merge prepends a student's completed history to a planned schedule.
// Completed semesters and completed co-ops become status "completed"
// semesters in chronological order; planned semesters whose term is already
// completed are dropped; co-op numbers are reassigned across the whole plan
// and every credit total is recomputed. Transfer credit is attached to the
// plan but not counted in its total.
func Merge(data schema.TranscriptData, planned schema.SchedulePlan) schema.SchedulePlan {
	out := planned.Clone()

	var history []schema.Semester
	for _, cs := range data.CompletedSemesters {
		courses := make([]schema.Course, 0, len(cs.Courses))
		for _, c := range cs.Courses {
			courses = append(courses, schema.Course{Code: c.Code, Name: c.Name, Credits: c.Credits})
		}
		history = append(history, schema.Semester{
			Term:    cs.Term,
			Type:    schema.SemesterAcademic,
			Courses: courses,
			Status:  schema.StatusCompleted,
		})
	}
	for _, term := range data.CoopTerms {
		history = append(history, schema.Semester{
			Term:   term,
			Type:   schema.SemesterCoop,
			Status: schema.StatusCompleted,
		})
	}
	sort.SliceStable(history, func(i, j int) bool {
		a, aok := schema.TermSortKey(history[i].Term)
		b, bok := schema.TermSortKey(history[j].Term)
		if aok != bok {
			return aok
		}
		return aok && a < b
	})

	semesters := history
	for _, s := range out.Semesters {
		if completedTerm(history, s.Term) {
			continue
		}
		if s.Status == "" {
			s.Status = schema.StatusPlanned
		}
		semesters = append(semesters, s)
	}

	n := 0
	for i := range semesters {
		if semesters[i].IsCoop() {
			n++
			semesters[i].CoopNumber = n
		}
	}

	out.Semesters = semesters
	if len(data.TransferCredits) > 0 {
		out.TransferCredits = append([]schema.Course(nil), data.TransferCredits...)
	}
	schema.RecomputeCredits(&out)
	return out
}

func completedTerm(history []schema.Semester, term string) bool {
	for _, h := range history {
		if schema.SameTerm(h.Term, term) {
			return true
		}
	}
	return false
}
