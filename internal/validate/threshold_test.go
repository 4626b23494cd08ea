package validate

import (
	"testing"

	"github.com/dshills/coursecheck/internal/schema"
)

func TestMainCourseThreshold(t *testing.T) {
	cases := []struct {
		name    string
		credits []int
		want    int
	}{
		{"four-credit school", []int{4, 4, 4, 4, 1}, 3},
		{"three-credit school", []int{3, 3, 3, 4}, 2},
		{"tie prefers larger", []int{3, 3, 4, 4}, 3},
		{"one-credit only", []int{1, 1}, DefaultMainCourseThreshold},
		{"no courses", nil, DefaultMainCourseThreshold},
		{"two-credit floor", []int{2, 2, 2}, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var cs []schema.Course
			for i, cr := range c.credits {
				cs = append(cs, schema.Course{Code: "CS 10" + string(rune('0'+i)) + "0", Credits: cr})
			}
			p := schema.SchedulePlan{Semesters: []schema.Semester{academic("Fall 2025", cs...)}}
			if got := MainCourseThreshold(p); got != c.want {
				t.Errorf("MainCourseThreshold(%v) = %d, want %d", c.credits, got, c.want)
			}
		})
	}
}

func TestMainCourseThreshold_IgnoresElectivesAndCoops(t *testing.T) {
	p := schema.SchedulePlan{Semesters: []schema.Semester{
		academic("Fall 2025",
			course("CS 1800", "a", 4),
			course("ELECTIVE", "b", 3),
			course("ELECTIVE", "c", 3),
			course("ELECTIVE", "d", 3),
		),
		{Term: "Spring 2026", Type: schema.SemesterCoop, CoopNumber: 1},
	}}
	if got := MainCourseThreshold(p); got != 3 {
		t.Errorf("MainCourseThreshold = %d, want 3", got)
	}
}
