package llm

import (
	"fmt"
	"strings"

	"github.com/dshills/coursecheck/internal/profile"
	"github.com/dshills/coursecheck/internal/schema"
	"github.com/dshills/coursecheck/internal/transcript"
)

// buildSystemPrompt assembles the LLM system prompt.
func buildSystemPrompt(prof profile.Profile) string {
	var sb strings.Builder

	sb.WriteString("You are a course planning assistant that builds multi-year degree schedules.\n\n")

	sb.WriteString("Output ONLY valid JSON conforming to the schema below. " +
		"No prose, no markdown, no explanation outside the JSON.\n\n")

	sb.WriteString("Use real catalog course codes. Never list the same course twice. " +
		"When a requirement can be met by several courses, use the code ELECTIVE, " +
		"name the requirement, and list example courses in options.\n\n")

	sb.WriteString("Every academic semester except the last must have at least four full-weight courses " +
		"and between 16 and 21 credits. Co-op semesters have no courses and zero credits.\n\n")

	if prof.PromptAddendum != "" {
		sb.WriteString(prof.PromptAddendum)
		sb.WriteString("\n\n")
	}

	sb.WriteString(outputSchema)

	return sb.String()
}

// outputSchema is the JSON schema fragment shown to the LLM.
const outputSchema = `Output schema (JSON only):
{
  "school": "...",
  "major": "...",
  "degree": "...",
  "startTerm": "Fall 2025",
  "graduationTerm": "Spring 2029",
  "totalCredits": 128,
  "semesters": [
    {
      "term": "Fall 2025",
      "type": "academic",
      "courses": [
        {"code": "CS 1800", "name": "Discrete Structures", "credits": 4},
        {"code": "ELECTIVE", "name": "Science with Lab", "credits": 4, "options": "PHYS 1151, CHEM 1211"}
      ],
      "totalCredits": 16
    },
    {"term": "Summer 1 2027", "type": "coop", "coopNumber": 1}
  ],
  "warnings": [],
  "sourceUrl": "https://catalog.example.edu/..."
}
`

// buildUserPrompt assembles the LLM user prompt.
func buildUserPrompt(req Request, prof profile.Profile) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "SCHOOL: %s\n", req.School)
	fmt.Fprintf(&sb, "MAJOR: %s\n", req.Major)
	if req.Degree != "" {
		fmt.Fprintf(&sb, "DEGREE: %s\n", req.Degree)
	}
	fmt.Fprintf(&sb, "START TERM: %s\n", schema.CanonicalTerm(req.StartTerm))
	fmt.Fprintf(&sb, "GRADUATION TERM: %s\n", schema.CanonicalTerm(req.GraduationTerm))
	fmt.Fprintf(&sb, "TARGET CREDITS: %d\n", targetCredits(req, prof))

	if tr := req.Transcript; tr != nil {
		sb.WriteString("\nCOMPLETED HISTORY:\n")
		for _, s := range tr.CompletedSemesters {
			codes := make([]string, 0, len(s.Courses))
			for _, c := range s.Courses {
				codes = append(codes, c.Code)
			}
			fmt.Fprintf(&sb, "  %s (%d credits): %s\n", s.Term, s.TotalCredits, strings.Join(codes, ", "))
		}
		if len(tr.TransferCredits) > 0 {
			codes := make([]string, 0, len(tr.TransferCredits))
			for _, c := range tr.TransferCredits {
				codes = append(codes, c.Code)
			}
			fmt.Fprintf(&sb, "  Transfer credit (%d credits): %s\n", tr.TotalTransferCredits, strings.Join(codes, ", "))
		}
		if d := transcript.Patterns(*tr).Describe(); d != "" {
			fmt.Fprintf(&sb, "\nLOAD PATTERN: %s\n", d)
		}
		if tr.NextSemester != nil {
			fmt.Fprintf(&sb, "\nPlan only terms from %s onward. Do not repeat completed or transferred courses.\n", *tr.NextSemester)
		}
	}

	if req.Notes != "" {
		fmt.Fprintf(&sb, "\nSTUDENT NOTES:\n%s\n", req.Notes)
	}

	sb.WriteString("\nProduce the JSON schedule now.")

	return sb.String()
}

// buildRepairPrompt constructs the repair message. It includes the original
// user prompt and the previous response so the LLM has full context, plus
// the findings that made the schedule unusable.
func buildRepairPrompt(originalUserPrompt, previousResponse string, issues []schema.ValidationIssue) string {
	var sb strings.Builder
	sb.WriteString(originalUserPrompt)
	sb.WriteString("\n\nYour previous response was:\n")
	sb.WriteString(previousResponse)
	sb.WriteString("\n\nThat schedule has problems:\n")
	if len(issues) == 0 {
		sb.WriteString("  - it could not be read as a schedule with academic semesters\n")
	}
	for _, is := range issues {
		fmt.Fprintf(&sb, "  - [%s] %s\n", is.Severity, is.Message)
	}
	sb.WriteString("\nPlease output only the corrected JSON conforming to the schema. Do not repeat the errors.")
	return sb.String()
}
