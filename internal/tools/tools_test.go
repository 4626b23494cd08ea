package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/coursecheck/internal/schema"
	"github.com/dshills/coursecheck/internal/store"
)

func samplePlan() schema.SchedulePlan {
	return schema.SchedulePlan{
		School: "Northeastern University",
		Semesters: []schema.Semester{
			{Term: "Fall 2025", Type: schema.SemesterAcademic, Courses: []schema.Course{
				{Code: "CS 1800", Name: "Discrete", Credits: 4},
				{Code: "CS 2500", Name: "Fundies 1", Credits: 4},
			}, TotalCredits: 8},
			{Term: "Spring 2026", Type: schema.SemesterAcademic, Courses: []schema.Course{
				{Code: "CS 2510", Name: "Fundies 2", Credits: 4},
			}, TotalCredits: 4},
			{Term: "Fall 2026", Type: schema.SemesterCoop, CoopNumber: 1},
		},
		TotalCredits: 12,
	}
}

func codes(s schema.Semester) []string {
	var out []string
	for _, c := range s.Courses {
		out = append(out, c.Code)
	}
	return out
}

func TestDecode(t *testing.T) {
	tool, err := Decode(NameAddCourse, []byte(`{"semester":"Fall 2025","code":"MATH 1341","name":"Calc","credits":4}`))
	require.NoError(t, err)
	assert.Equal(t, NameAddCourse, tool.Name())

	_, err = Decode("teleport", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)

	_, err = Decode(NameAddCourse, []byte(`{"semester":"Fall 2025","code":"MATH 1341","credits":9}`))
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = Decode(NameRemoveCourse, []byte(`{"semester":""}`))
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = Decode(NameMoveCourse, []byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = Decode(NameAddSemester, []byte(`{"term":"Spring 2027","type":"vacation"}`))
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		NameAddCourse, NameAddSemester, NameFillToCredits, NameMoveCourse,
		NameRemoveCourse, NameRemoveSemester, NameSwapCourses,
	}, Names())
}

func TestAddCourse(t *testing.T) {
	out, err := Apply(samplePlan(), &AddCourse{Semester: "fall 2025", Code: "MATH 1341", Title: "Calc", Credits: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"CS 1800", "CS 2500", "MATH 1341"}, codes(out.Semesters[0]))
	assert.Equal(t, 12, out.Semesters[0].TotalCredits)
	assert.Equal(t, 16, out.TotalCredits)

	_, err = Apply(samplePlan(), &AddCourse{Semester: "Spring 2026", Code: "cs1800", Credits: 4})
	assert.ErrorIs(t, err, ErrDuplicateCourse)

	_, err = Apply(samplePlan(), &AddCourse{Semester: "Fall 2026", Code: "MATH 1341", Credits: 4})
	assert.ErrorIs(t, err, ErrCoopSemester)

	_, err = Apply(samplePlan(), &AddCourse{Semester: "Fall 2030", Code: "MATH 1341", Credits: 4})
	assert.ErrorIs(t, err, ErrSemesterNotFound)

	out, err = Apply(samplePlan(), &AddCourse{Semester: "Fall 2025", Code: "ELECTIVE", Title: "Free Elective", Credits: 4})
	require.NoError(t, err)
	out, err = Apply(out, &AddCourse{Semester: "Fall 2025", Code: "ELECTIVE", Title: "Free Elective", Credits: 4})
	require.NoError(t, err, "elective slots may repeat")
	assert.Len(t, out.Semesters[0].Courses, 4)
}

func TestRemoveCourse(t *testing.T) {
	out, err := Apply(samplePlan(), &RemoveCourse{Semester: "Fall 2025", Code: "cs 1800"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CS 2500"}, codes(out.Semesters[0]))
	assert.Equal(t, 8, out.TotalCredits)

	_, err = Apply(samplePlan(), &RemoveCourse{Semester: "Fall 2025", Code: "CS 9999"})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestMoveCourse(t *testing.T) {
	in := samplePlan()
	out, err := Apply(in, &MoveCourse{Code: "CS 2500", From: "Fall 2025", To: "Spring 2026"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CS 1800"}, codes(out.Semesters[0]))
	assert.Equal(t, []string{"CS 2510", "CS 2500"}, codes(out.Semesters[1]))
	assert.Equal(t, 4, out.Semesters[0].TotalCredits)
	assert.Equal(t, 8, out.Semesters[1].TotalCredits)
	assert.Equal(t, 12, out.TotalCredits)

	assert.Equal(t, []string{"CS 1800", "CS 2500"}, codes(in.Semesters[0]), "input must not change")

	_, err = Apply(samplePlan(), &MoveCourse{Code: "CS 2500", From: "Fall 2025", To: "Fall 2026"})
	assert.ErrorIs(t, err, ErrCoopSemester)
}

func TestSwapCourses(t *testing.T) {
	out, err := Apply(samplePlan(), &SwapCourses{SemesterA: "Fall 2025", CodeA: "CS 1800", SemesterB: "Spring 2026", CodeB: "CS 2510"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CS 2510", "CS 2500"}, codes(out.Semesters[0]))
	assert.Equal(t, []string{"CS 1800"}, codes(out.Semesters[1]))
}

func TestAddSemester(t *testing.T) {
	out, err := Apply(samplePlan(), &AddSemester{Term: "summer 1 2026"})
	require.NoError(t, err)
	require.Len(t, out.Semesters, 4)
	assert.Equal(t, "Summer 1 2026", out.Semesters[2].Term)
	assert.Equal(t, schema.SemesterAcademic, out.Semesters[2].Type)

	out, err = Apply(out, &AddSemester{Term: "Spring 2025", Type: schema.SemesterCoop})
	require.NoError(t, err)
	assert.Equal(t, "Spring 2025", out.Semesters[0].Term)
	assert.Equal(t, 1, out.Semesters[0].CoopNumber)
	assert.Equal(t, 2, out.Semesters[4].CoopNumber, "later co-ops are renumbered")

	_, err = Apply(samplePlan(), &AddSemester{Term: "Fall 2025"})
	assert.ErrorIs(t, err, ErrDuplicateSemester)

	_, err = Apply(samplePlan(), &AddSemester{Term: "Winter 2025"})
	assert.ErrorIs(t, err, ErrUnparseableTerm)
}

func TestRemoveSemester(t *testing.T) {
	out, err := Apply(samplePlan(), &RemoveSemester{Term: "Fall 2025"})
	require.NoError(t, err)
	require.Len(t, out.Semesters, 2)
	assert.Equal(t, 4, out.TotalCredits)

	_, err = Apply(samplePlan(), &RemoveSemester{Term: "Fall 2040"})
	assert.ErrorIs(t, err, ErrSemesterNotFound)
}

func TestFillToCredits(t *testing.T) {
	out, err := Apply(samplePlan(), &FillToCredits{Semester: "Spring 2026", Target: 18})
	require.NoError(t, err)
	s := out.Semesters[1]
	assert.Equal(t, 18, s.TotalCredits)
	require.Len(t, s.Courses, 5)
	assert.Equal(t, schema.ElectiveCode, s.Courses[4].Code)
	assert.Equal(t, 2, s.Courses[4].Credits, "last slot is shortened to land on target")
	assert.Equal(t, DefaultSlotName, s.Courses[1].Name)

	_, err = Apply(samplePlan(), &FillToCredits{Semester: "Fall 2025", Target: 8})
	assert.ErrorIs(t, err, ErrCreditsUnreachable)
}

func TestRun_ThroughStore(t *testing.T) {
	st := store.New()
	require.NoError(t, st.Put("x", samplePlan(), 0))

	out, lu, err := Run(st, "x", &MoveCourse{Code: "CS 2500", From: "Fall 2025", To: "Spring 2026"})
	require.NoError(t, err)
	assert.Equal(t, store.LastUpdate{Version: 2, Tool: NameMoveCourse}, lu)
	assert.Equal(t, 8, out.Semesters[1].TotalCredits)

	got, ok := st.Get("x")
	require.True(t, ok)
	assert.Equal(t, out, got)

	_, lu, err = Run(st, "x", &RemoveCourse{Semester: "Fall 2025", Code: "CS 9999"})
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.Equal(t, 2, lu.Version, "failed tool must not bump the version")

	_, _, err = Run(st, "missing", &RemoveSemester{Term: "Fall 2025"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
