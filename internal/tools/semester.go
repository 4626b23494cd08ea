package tools

import (
	"fmt"

	"github.com/dshills/coursecheck/internal/schema"
)

// AddSemester inserts an empty semester in chronological position.
type AddSemester struct {
	Term string              `json:"term" validate:"required"`
	Type schema.SemesterType `json:"type" validate:"omitempty,oneof=academic coop"`
}

func (AddSemester) Name() string { return NameAddSemester }

func (t AddSemester) Apply(p schema.SchedulePlan) (schema.SchedulePlan, error) {
	term, ok := schema.ParseTerm(t.Term)
	if !ok {
		return p, fmt.Errorf("%w: %q", ErrUnparseableTerm, t.Term)
	}
	if p.FindSemester(term.String()) >= 0 {
		return p, fmt.Errorf("%w: %q", ErrDuplicateSemester, term.String())
	}
	s := schema.Semester{Term: term.String(), Type: schema.SemesterAcademic, Courses: []schema.Course{}}
	if t.Type == schema.SemesterCoop {
		s = schema.Semester{Term: term.String(), Type: schema.SemesterCoop}
	}

	// Insert before the first semester that sorts after the new term.
	// Semesters with unparseable terms keep their place.
	key := term.SortKey()
	at := len(p.Semesters)
	for i, existing := range p.Semesters {
		if k, ok := schema.TermSortKey(existing.Term); ok && k > key {
			at = i
			break
		}
	}
	p.Semesters = append(p.Semesters, schema.Semester{})
	copy(p.Semesters[at+1:], p.Semesters[at:])
	p.Semesters[at] = s
	renumberCoops(&p)
	return p, nil
}

// RemoveSemester drops a semester and all its courses.
type RemoveSemester struct {
	Term string `json:"term" validate:"required"`
}

func (RemoveSemester) Name() string { return NameRemoveSemester }

func (t RemoveSemester) Apply(p schema.SchedulePlan) (schema.SchedulePlan, error) {
	i := p.FindSemester(t.Term)
	if i < 0 {
		return p, fmt.Errorf("%w: %q", ErrSemesterNotFound, t.Term)
	}
	p.Semesters = append(p.Semesters[:i:i], p.Semesters[i+1:]...)
	renumberCoops(&p)
	return p, nil
}
