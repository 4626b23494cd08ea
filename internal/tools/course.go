package tools

import (
	"fmt"
	"strings"

	"github.com/dshills/coursecheck/internal/schema"
)

// AddCourse appends a course to an academic semester.
type AddCourse struct {
	Semester string `json:"semester" validate:"required"`
	Code     string `json:"code" validate:"required"`
	Title    string `json:"name"`
	Credits  int    `json:"credits" validate:"min=1,max=6"`
	Options  string `json:"options,omitempty"`
}

func (AddCourse) Name() string { return NameAddCourse }

func (t AddCourse) Apply(p schema.SchedulePlan) (schema.SchedulePlan, error) {
	si, err := academicSemester(p, t.Semester)
	if err != nil {
		return p, err
	}
	if inSchedule(p, t.Code) {
		return p, fmt.Errorf("%w: %q", ErrDuplicateCourse, t.Code)
	}
	s := &p.Semesters[si]
	s.Courses = append(s.Courses, schema.Course{
		Code:    strings.TrimSpace(t.Code),
		Name:    strings.TrimSpace(t.Title),
		Credits: t.Credits,
		Options: t.Options,
	})
	return p, nil
}

// RemoveCourse drops the first course with Code from a semester.
type RemoveCourse struct {
	Semester string `json:"semester" validate:"required"`
	Code     string `json:"code" validate:"required"`
}

func (RemoveCourse) Name() string { return NameRemoveCourse }

func (t RemoveCourse) Apply(p schema.SchedulePlan) (schema.SchedulePlan, error) {
	si, ci, err := findCourse(p, t.Semester, t.Code)
	if err != nil {
		return p, err
	}
	p.Semesters[si].Courses = removeAt(p.Semesters[si].Courses, ci)
	return p, nil
}

// MoveCourse moves a course from one semester to the end of another.
type MoveCourse struct {
	Code string `json:"code" validate:"required"`
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

func (MoveCourse) Name() string { return NameMoveCourse }

func (t MoveCourse) Apply(p schema.SchedulePlan) (schema.SchedulePlan, error) {
	si, ci, err := findCourse(p, t.From, t.Code)
	if err != nil {
		return p, err
	}
	di, err := academicSemester(p, t.To)
	if err != nil {
		return p, err
	}
	if si == di {
		return p, nil
	}
	c := p.Semesters[si].Courses[ci]
	p.Semesters[si].Courses = removeAt(p.Semesters[si].Courses, ci)
	p.Semesters[di].Courses = append(p.Semesters[di].Courses, c)
	return p, nil
}

// SwapCourses exchanges two courses between semesters, each taking the
// other's position.
type SwapCourses struct {
	SemesterA string `json:"semesterA" validate:"required"`
	CodeA     string `json:"codeA" validate:"required"`
	SemesterB string `json:"semesterB" validate:"required"`
	CodeB     string `json:"codeB" validate:"required"`
}

func (SwapCourses) Name() string { return NameSwapCourses }

func (t SwapCourses) Apply(p schema.SchedulePlan) (schema.SchedulePlan, error) {
	ai, aci, err := findCourse(p, t.SemesterA, t.CodeA)
	if err != nil {
		return p, err
	}
	bi, bci, err := findCourse(p, t.SemesterB, t.CodeB)
	if err != nil {
		return p, err
	}
	a := &p.Semesters[ai].Courses[aci]
	b := &p.Semesters[bi].Courses[bci]
	*a, *b = *b, *a
	return p, nil
}

// FillToCredits appends elective slots to a semester until its credits
// reach Target. The last slot is shortened so the total lands exactly on
// Target.
type FillToCredits struct {
	Semester    string `json:"semester" validate:"required"`
	Target      int    `json:"target" validate:"min=1,max=24"`
	SlotName    string `json:"slotName,omitempty"`
	SlotCredits int    `json:"slotCredits,omitempty" validate:"omitempty,min=1,max=6"`
}

// Default elective slot used by FillToCredits.
const (
	DefaultSlotName    = "Free Elective"
	DefaultSlotCredits = 4
)

func (FillToCredits) Name() string { return NameFillToCredits }

func (t FillToCredits) Apply(p schema.SchedulePlan) (schema.SchedulePlan, error) {
	si, err := academicSemester(p, t.Semester)
	if err != nil {
		return p, err
	}
	name := t.SlotName
	if name == "" {
		name = DefaultSlotName
	}
	per := t.SlotCredits
	if per == 0 {
		per = DefaultSlotCredits
	}
	s := &p.Semesters[si]
	have := schema.SumCredits(s.Courses)
	if have >= t.Target {
		return p, fmt.Errorf("%w: %q has %d of %d credits", ErrCreditsUnreachable, t.Semester, have, t.Target)
	}
	for have < t.Target {
		cr := min(per, t.Target-have)
		s.Courses = append(s.Courses, schema.Course{Code: schema.ElectiveCode, Name: name, Credits: cr})
		have += cr
	}
	return p, nil
}
