package pipeline

import (
	"os"
	"testing"

	"github.com/dshills/coursecheck/internal/normalize"
	"github.com/dshills/coursecheck/internal/profile"
	"github.com/dshills/coursecheck/internal/schema"
	"github.com/dshills/coursecheck/internal/verdict"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile("../../testdata/schedules/" + name)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(b)
}

func TestCheck_Clean(t *testing.T) {
	rep := Check(readFixture(t, "clean.json"), Options{Source: "clean.json"})
	if rep.Tool != Tool || rep.Version != Version {
		t.Errorf("report identity = %s %s", rep.Tool, rep.Version)
	}
	if rep.Summary.Verdict != verdict.VerdictAccept {
		t.Errorf("verdict = %s, want ACCEPT; issues %+v", rep.Summary.Verdict, rep.Result.Issues)
	}
	if rep.Meta.Strategy != normalize.StrategyDirectShape {
		t.Errorf("strategy = %s, want direct_shape", rep.Meta.Strategy)
	}
	if rep.Input.SchoolID != "northeastern" {
		t.Errorf("school = %q, want northeastern resolved from the school name", rep.Input.SchoolID)
	}
	if rep.Input.Source != "clean.json" || rep.Input.TargetCredits != 128 {
		t.Errorf("input = %+v", rep.Input)
	}
}

func TestCheck_Garbage(t *testing.T) {
	rep := Check("no schedule here", Options{})
	if rep.Meta.Strategy != normalize.StrategyNone {
		t.Errorf("strategy = %s, want none", rep.Meta.Strategy)
	}
	if rep.Summary.Verdict != verdict.VerdictRegenerate {
		t.Errorf("verdict = %s, want REGENERATE", rep.Summary.Verdict)
	}
}

func TestCheck_TrimOption(t *testing.T) {
	raw := readFixture(t, "overloaded.json")

	untrimmed := Check(raw, Options{TargetCredits: 128})
	if untrimmed.Result.Stats.ElectivesTrimmed != 0 {
		t.Errorf("trimmed without the option: %+v", untrimmed.Result.Stats)
	}
	trimmed := Check(raw, Options{TargetCredits: 128, Trim: true})
	if trimmed.Result.Stats.FinalCredits != 128 {
		t.Errorf("final credits = %d, want 128", trimmed.Result.Stats.FinalCredits)
	}
	if !trimmed.Input.Trim {
		t.Error("report should record the trim option")
	}
}

func TestCheckPlan_Customize(t *testing.T) {
	plan := schema.SchedulePlan{
		School: "Northeastern University",
		Semesters: []schema.Semester{{
			Term: "Fall 2025", Type: schema.SemesterAcademic,
			Courses: []schema.Course{{Code: "CS 4999", Name: "Retired", Credits: 4}},
		}},
	}
	base := CheckPlan(plan, Options{})
	if base.Result.Stats.DiscontinuedCourses != 0 {
		t.Fatalf("CS 4999 should not be discontinued by default")
	}
	rep := CheckPlan(plan, Options{Customize: func(p profile.Profile) profile.Profile {
		return p.WithDiscontinued("CS 4999")
	}})
	if rep.Result.Stats.DiscontinuedCourses != 1 {
		t.Errorf("discontinued = %d, want 1", rep.Result.Stats.DiscontinuedCourses)
	}
}

func TestResolveProfile_ExplicitID(t *testing.T) {
	p := ResolveProfile(schema.SchedulePlan{School: "Northeastern University"}, Options{SchoolID: "drexel"})
	if p.ID != "drexel" {
		t.Errorf("profile = %s, want drexel", p.ID)
	}
}
