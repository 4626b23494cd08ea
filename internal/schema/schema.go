// Package schema defines the canonical data types for course schedules,
// transcripts, and validation findings.
package schema

import "encoding/json"

// ElectiveCode is the sentinel course code marking a flexible elective slot.
const ElectiveCode = "ELECTIVE"

// SemesterType discriminates academic terms from co-op work terms.
type SemesterType string

const (
	SemesterAcademic SemesterType = "academic"
	SemesterCoop     SemesterType = "coop"
)

// SemesterStatus records whether a semester already happened.
type SemesterStatus string

const (
	StatusCompleted SemesterStatus = "completed"
	StatusPlanned   SemesterStatus = "planned"
)

// Severity is the severity of a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueType classifies a validation finding.
type IssueType string

const (
	IssueDuplicate          IssueType = "duplicate"
	IssuePlaceholder        IssueType = "placeholder"
	IssueCreditMismatch     IssueType = "credit_mismatch"
	IssueFullTimeViolation  IssueType = "full_time_violation"
	IssueCreditOverage      IssueType = "credit_overage"
	IssueCreditUnderage     IssueType = "credit_underage"
	IssueInvalidCode        IssueType = "invalid_code"
	IssueDiscontinued       IssueType = "discontinued_course"
	IssueExcessiveElectives IssueType = "excessive_electives"
	IssueMissingData        IssueType = "missing_data"
)

// IssueTypes lists every issue type in reporting order.
var IssueTypes = []IssueType{
	IssueDuplicate,
	IssuePlaceholder,
	IssueCreditMismatch,
	IssueFullTimeViolation,
	IssueCreditOverage,
	IssueCreditUnderage,
	IssueInvalidCode,
	IssueDiscontinued,
	IssueExcessiveElectives,
	IssueMissingData,
}

// Course is a single catalog course or elective slot.
type Course struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	// Options lists example courses that satisfy an ELECTIVE slot.
	Options string `json:"options,omitempty"`
}

// Semester is either an academic term carrying courses or a co-op work term.
// Only the fields of the active variant are encoded.
type Semester struct {
	Term         string         `json:"term"`
	Type         SemesterType   `json:"type"`
	Courses      []Course       `json:"courses,omitempty"`
	TotalCredits int            `json:"totalCredits"`
	CoopNumber   int            `json:"coopNumber,omitempty"`
	Status       SemesterStatus `json:"status,omitempty"`
}

type academicJSON struct {
	Term         string         `json:"term"`
	Type         SemesterType   `json:"type"`
	Courses      []Course       `json:"courses"`
	TotalCredits int            `json:"totalCredits"`
	Status       SemesterStatus `json:"status,omitempty"`
}

type coopJSON struct {
	Term       string         `json:"term"`
	Type       SemesterType   `json:"type"`
	CoopNumber int            `json:"coopNumber"`
	Status     SemesterStatus `json:"status,omitempty"`
}

// MarshalJSON encodes the semester as its tagged variant.
func (s Semester) MarshalJSON() ([]byte, error) {
	if s.Type == SemesterCoop {
		return json.Marshal(coopJSON{
			Term:       s.Term,
			Type:       SemesterCoop,
			CoopNumber: s.CoopNumber,
			Status:     s.Status,
		})
	}
	courses := s.Courses
	if courses == nil {
		courses = []Course{}
	}
	return json.Marshal(academicJSON{
		Term:         s.Term,
		Type:         SemesterAcademic,
		Courses:      courses,
		TotalCredits: s.TotalCredits,
		Status:       s.Status,
	})
}

// IsCoop reports whether the semester is a co-op work term.
func (s Semester) IsCoop() bool { return s.Type == SemesterCoop }

// SchedulePlan is the aggregate root of a multi-year schedule.
//
// On input TotalCredits is the degree target. After validation or any
// mutation it holds the recomputed sum over academic semesters.
type SchedulePlan struct {
	School          string     `json:"school"`
	Major           string     `json:"major"`
	Degree          string     `json:"degree"`
	StartTerm       string     `json:"startTerm"`
	GraduationTerm  string     `json:"graduationTerm"`
	TotalCredits    int        `json:"totalCredits"`
	Semesters       []Semester `json:"semesters"`
	Warnings        []string   `json:"warnings"`
	SourceURL       string     `json:"sourceUrl"`
	StudentContext  string     `json:"studentContext,omitempty"`
	TransferCredits []Course   `json:"transferCredits,omitempty"`
}

// ValidationIssue is a single finding produced by the validation engine.
type ValidationIssue struct {
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Semester string    `json:"semester,omitempty"`
	Course   string    `json:"course,omitempty"`
}

// CompletedCourse is one row of a parsed transcript.
type CompletedCourse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Credits  int    `json:"credits"`
	Grade    string `json:"grade"`
	Semester string `json:"semester"`
}

// CompletedSemesterData groups the transcript rows of one term.
type CompletedSemesterData struct {
	Term         string            `json:"term"`
	Courses      []CompletedCourse `json:"courses"`
	TotalCredits int               `json:"totalCredits"`
}

// TranscriptData is the structured view of a transcript.
type TranscriptData struct {
	CompletedSemesters    []CompletedSemesterData `json:"completedSemesters"`
	TransferCredits       []Course                `json:"transferCredits"`
	TotalCompletedCredits int                     `json:"totalCompletedCredits"`
	TotalTransferCredits  int                     `json:"totalTransferCredits"`
	LastCompletedTerm     string                  `json:"lastCompletedTerm"`
	NextSemester          *string                 `json:"nextSemester"`
	CompletedCoops        int                     `json:"completedCoops"`
	// CoopTerms lists the canonical terms of completed co-ops in
	// chronological order.
	CoopTerms []string `json:"coopTerms,omitempty"`
}
