// Package tools implements the named schedule mutations the agent and the
// HTTP API can invoke. Each tool is a pure transformation of a
// SchedulePlan; Run applies one through the store so that the change is
// atomic and versioned under the tool's name.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dshills/coursecheck/internal/schema"
	"github.com/dshills/coursecheck/internal/store"
)

// Tool names.
const (
	NameAddCourse      = "add_course"
	NameRemoveCourse   = "remove_course"
	NameMoveCourse     = "move_course"
	NameSwapCourses    = "swap_courses"
	NameAddSemester    = "add_semester"
	NameRemoveSemester = "remove_semester"
	NameFillToCredits  = "fill_to_credits"
)

// Sentinel errors.
var (
	ErrUnknownTool        = errors.New("tools: unknown tool")
	ErrInvalidArgs        = errors.New("tools: invalid arguments")
	ErrSemesterNotFound   = errors.New("tools: semester not found")
	ErrCourseNotFound     = errors.New("tools: course not found")
	ErrCoopSemester       = errors.New("tools: co-op semester cannot hold courses")
	ErrDuplicateSemester  = errors.New("tools: semester already exists")
	ErrDuplicateCourse    = errors.New("tools: course already in schedule")
	ErrUnparseableTerm    = errors.New("tools: term does not parse")
	ErrCreditsUnreachable = errors.New("tools: semester already at or above target")
)

// Tool is one named schedule mutation.
type Tool interface {
	Name() string
	Apply(p schema.SchedulePlan) (schema.SchedulePlan, error)
}

var validate = validator.New()

var registry = map[string]func() Tool{
	NameAddCourse:      func() Tool { return &AddCourse{} },
	NameRemoveCourse:   func() Tool { return &RemoveCourse{} },
	NameMoveCourse:     func() Tool { return &MoveCourse{} },
	NameSwapCourses:    func() Tool { return &SwapCourses{} },
	NameAddSemester:    func() Tool { return &AddSemester{} },
	NameRemoveSemester: func() Tool { return &RemoveSemester{} },
	NameFillToCredits:  func() Tool { return &FillToCredits{} },
}

// Names returns the registered tool names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Decode builds the named tool from JSON arguments and validates them.
func Decode(name string, raw []byte) (Tool, error) {
	mk, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTool, name, strings.Join(Names(), ", "))
	}
	t := mk()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, t); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgs, name, err)
		}
	}
	if err := Check(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Check validates a tool's arguments against its struct tags.
func Check(t Tool) error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidArgs, t.Name(), err)
	}
	return nil
}

// Apply validates t, applies it to a copy of p and recomputes every credit
// total.
func Apply(p schema.SchedulePlan, t Tool) (schema.SchedulePlan, error) {
	if err := Check(t); err != nil {
		return schema.SchedulePlan{}, err
	}
	out, err := t.Apply(p.Clone())
	if err != nil {
		return schema.SchedulePlan{}, err
	}
	schema.RecomputeCredits(&out)
	return out, nil
}

// Run applies t to the schedule stored under id, recording t's name as the
// updating tool.
func Run(st *store.Store, id string, t Tool) (schema.SchedulePlan, store.LastUpdate, error) {
	return st.Modify(id, t.Name(), func(p schema.SchedulePlan) (schema.SchedulePlan, error) {
		return Apply(p, t)
	})
}

// academicSemester returns the index of the academic semester with term.
func academicSemester(p schema.SchedulePlan, term string) (int, error) {
	i := p.FindSemester(term)
	if i < 0 {
		return -1, fmt.Errorf("%w: %q", ErrSemesterNotFound, term)
	}
	if p.Semesters[i].IsCoop() {
		return -1, fmt.Errorf("%w: %q", ErrCoopSemester, term)
	}
	return i, nil
}

// findCourse returns the semester and course index of code within term.
func findCourse(p schema.SchedulePlan, term, code string) (int, int, error) {
	si := p.FindSemester(term)
	if si < 0 {
		return -1, -1, fmt.Errorf("%w: %q", ErrSemesterNotFound, term)
	}
	ci := p.Semesters[si].FindCourse(code)
	if ci < 0 {
		return -1, -1, fmt.Errorf("%w: %q in %q", ErrCourseNotFound, code, term)
	}
	return si, ci, nil
}

// inSchedule reports whether a specific (non-elective) code is already
// planned anywhere.
func inSchedule(p schema.SchedulePlan, code string) bool {
	if schema.IsElectiveCode(code) {
		return false
	}
	for _, s := range p.Semesters {
		if s.FindCourse(code) >= 0 {
			return true
		}
	}
	return false
}

func removeAt(cs []schema.Course, i int) []schema.Course {
	return append(cs[:i:i], cs[i+1:]...)
}

// renumberCoops assigns co-op numbers in schedule order.
func renumberCoops(p *schema.SchedulePlan) {
	n := 0
	for i := range p.Semesters {
		if p.Semesters[i].IsCoop() {
			n++
			p.Semesters[i].CoopNumber = n
		}
	}
}
