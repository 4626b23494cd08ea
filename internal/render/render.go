// Package render produces output from a validation report or grouped
// transcript.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/coursecheck/internal/normalize"
	"github.com/dshills/coursecheck/internal/schema"
	"github.com/dshills/coursecheck/internal/validate"
	"github.com/dshills/coursecheck/internal/verdict"
)

// Report is the complete output of one validation run.
type Report struct {
	Tool    string          `json:"tool"`
	Version string          `json:"version"`
	Input   Input           `json:"input"`
	Summary verdict.Summary `json:"summary"`
	Result  validate.Result `json:"result"`
	Meta    Meta            `json:"meta"`
}

// Input records how the run was invoked.
type Input struct {
	Source        string `json:"source"`
	SchoolID      string `json:"schoolId,omitempty"`
	Trim          bool   `json:"trim"`
	TargetCredits int    `json:"targetCredits,omitempty"`
}

// Meta records how the schedule was obtained.
type Meta struct {
	Strategy normalize.StrategyName `json:"strategy"`
	Attempts int                    `json:"attempts,omitempty"`
	Provider string                 `json:"provider,omitempty"`
	Model    string                 `json:"model,omitempty"`
}

// RenderJSON produces a pretty-printed JSON representation of the report.
// The output round-trips through json.Unmarshal back to an equal Report.
func RenderJSON(report *Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("render: nil report")
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: json marshal: %w", err)
	}
	return b, nil
}

// RenderMarkdown produces a GitHub-flavoured Markdown summary of the report,
// suitable for terminal output or sharing with an advisor. Every issue in
// the report appears in the output.
func RenderMarkdown(report *Report) string {
	if report == nil {
		return ""
	}
	var sb strings.Builder
	sched := report.Result.Schedule
	st := report.Result.Stats

	// Summary section.
	sb.WriteString("## Schedule Check\n\n")
	if sched.School != "" || sched.Major != "" {
		fmt.Fprintf(&sb, "**%s** %s %s  \n", mdEscape(sched.School), mdEscape(sched.Degree), mdEscape(sched.Major))
	}
	fmt.Fprintf(&sb, "**Verdict:** %s  \n", report.Summary.Verdict)
	fmt.Fprintf(&sb, "**Score:** %d/100  \n", report.Summary.Score)
	fmt.Fprintf(&sb, "**Errors:** %d | **Warnings:** %d | **Repaired:** %d\n\n",
		report.Summary.Errors, report.Summary.Warnings, report.Summary.Repaired)
	fmt.Fprintf(&sb, "**Credits:** %d of %d target (originally %d)  \n", st.FinalCredits, st.TargetCredits, st.OriginalCredits)
	fmt.Fprintf(&sb, "**Semesters:** %d academic, %d co-op  \n", st.AcademicSemesters, st.CoopSemesters)
	fmt.Fprintf(&sb, "**Courses:** %d specific, %d elective slots\n\n", st.SpecificCourses, st.ElectiveCourses)

	// Semester table.
	if len(sched.Semesters) > 0 {
		sb.WriteString("## Semesters\n\n")
		sb.WriteString("| Term | Type | Credits | Courses |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, s := range sched.Semesters {
			kind := string(s.Type)
			if s.IsCoop() {
				kind = fmt.Sprintf("co-op %d", s.CoopNumber)
			}
			if s.Status != "" {
				kind += " (" + string(s.Status) + ")"
			}
			fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n", mdEscape(s.Term), kind, s.TotalCredits, mdEscape(courseList(s.Courses)))
		}
		sb.WriteString("\n")
	}

	// Issues grouped by type, in taxonomy order.
	if len(report.Result.Issues) > 0 {
		sb.WriteString("## Issues\n\n")
		for _, typ := range schema.IssueTypes {
			var lines []schema.ValidationIssue
			for _, is := range report.Result.Issues {
				if is.Type == typ {
					lines = append(lines, is)
				}
			}
			if len(lines) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "<details>\n<summary><strong>%s</strong> (%d)</summary>\n\n", typ, len(lines))
			for _, is := range lines {
				fmt.Fprintf(&sb, "- [%s] %s\n", is.Severity, mdEscape(is.Message))
			}
			sb.WriteString("\n</details>\n\n")
		}
	}

	if len(sched.Warnings) > 0 {
		sb.WriteString("## Notes\n\n")
		for _, w := range sched.Warnings {
			fmt.Fprintf(&sb, "- %s\n", mdEscape(w))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderTranscriptMarkdown summarizes grouped transcript data.
func RenderTranscriptMarkdown(data schema.TranscriptData) string {
	var sb strings.Builder
	sb.WriteString("## Transcript\n\n")
	fmt.Fprintf(&sb, "**Completed credits:** %d | **Transfer credits:** %d | **Completed co-ops:** %d\n\n",
		data.TotalCompletedCredits, data.TotalTransferCredits, data.CompletedCoops)
	if data.LastCompletedTerm != "" {
		fmt.Fprintf(&sb, "**Last completed term:** %s  \n", data.LastCompletedTerm)
	}
	if data.NextSemester != nil {
		fmt.Fprintf(&sb, "**Next term:** %s\n\n", *data.NextSemester)
	}
	if len(data.CompletedSemesters) > 0 {
		sb.WriteString("| Term | Credits | Courses |\n")
		sb.WriteString("|---|---|---|\n")
		for _, s := range data.CompletedSemesters {
			codes := make([]string, 0, len(s.Courses))
			for _, c := range s.Courses {
				codes = append(codes, c.Code)
			}
			fmt.Fprintf(&sb, "| %s | %d | %s |\n", mdEscape(s.Term), s.TotalCredits, mdEscape(strings.Join(codes, ", ")))
		}
		sb.WriteString("\n")
	}
	if len(data.TransferCredits) > 0 {
		sb.WriteString("**Transfer credit:** ")
		sb.WriteString(mdEscape(courseList(data.TransferCredits)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func courseList(cs []schema.Course) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		if schema.IsElectiveCode(c.Code) {
			parts = append(parts, c.Name)
			continue
		}
		parts = append(parts, c.Code)
	}
	return strings.Join(parts, ", ")
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
