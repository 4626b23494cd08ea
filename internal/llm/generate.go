package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/dshills/coursecheck/internal/normalize"
	"github.com/dshills/coursecheck/internal/profile"
	"github.com/dshills/coursecheck/internal/schema"
	"github.com/dshills/coursecheck/internal/transcript"
	"github.com/dshills/coursecheck/internal/validate"
	"github.com/dshills/coursecheck/internal/verdict"
)

// ErrNoUsableSemesters is returned when neither the initial nor the repair
// response yields a schedule with at least one academic semester.
var ErrNoUsableSemesters = errors.New("llm: no usable semesters after repair attempt")

// ErrInvalidRequest wraps request validation failures.
var ErrInvalidRequest = errors.New("llm: invalid generate request")

// Default generation parameters.
const (
	DefaultMaxTokens   = 8192
	DefaultTemperature = 0.2
)

// Request describes the schedule a student wants generated.
type Request struct {
	School         string `json:"school" validate:"required"`
	SchoolID       string `json:"schoolId,omitempty"`
	Major          string `json:"major" validate:"required"`
	Degree         string `json:"degree,omitempty"`
	StartTerm      string `json:"startTerm" validate:"required"`
	GraduationTerm string `json:"graduationTerm" validate:"required"`
	TargetCredits  int    `json:"targetCredits,omitempty" validate:"omitempty,min=1,max=300"`
	Notes          string `json:"notes,omitempty" validate:"max=4000"`
	// Transcript, when present, is merged into the generated schedule as
	// completed history before the final validation.
	Transcript *schema.TranscriptData `json:"transcript,omitempty"`
}

// Options configures a Generate call.
type Options struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
	// Profile overrides the profile resolved from the request.
	Profile *profile.Profile
	Logger  *slog.Logger
}

// Outcome is the result of a Generate call.
type Outcome struct {
	Result   validate.Result       `json:"result"`
	Summary  verdict.Summary       `json:"summary"`
	Strategy normalize.StrategyName `json:"strategy"`
	Attempts int                   `json:"attempts"`
}

var requestValidator = validator.New()

// Generate asks the agent for a schedule, normalizes and validates the
// response, and performs one repair round-trip when the verdict calls for
// regeneration. The returned outcome is the best usable attempt.
func Generate(ctx context.Context, req Request, opts Options) (*Outcome, error) {
	if err := requestValidator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}

	prof := profile.Resolve(req.SchoolID, req.School)
	if opts.Profile != nil {
		prof = *opts.Profile
	}

	provider, err := NewProvider(opts.Provider, opts.Model)
	if err != nil {
		return nil, fmt.Errorf("llm: create provider: %w", err)
	}

	sysPrompt := buildSystemPrompt(prof)
	userPrompt := buildUserPrompt(req, prof)
	logger.Debug("generate prompts", "system", sysPrompt, "user", userPrompt)

	raw, err := provider.Complete(ctx, sysPrompt, userPrompt, opts.MaxTokens, opts.Temperature)
	if err != nil {
		return nil, fmt.Errorf("llm: complete: %w", err)
	}
	first := evaluate(raw, req, prof)
	first.Attempts = 1
	logger.Info("schedule generated",
		"strategy", first.Strategy,
		"verdict", first.Summary.Verdict,
		"issues", len(first.Result.Issues))
	if !verdict.ShouldRetry(first.Result) {
		return first, nil
	}

	// One repair attempt: include the original prompt, the previous
	// response and the findings so the agent has full context.
	repairPrompt := buildRepairPrompt(userPrompt, raw, first.Result.Issues)
	raw2, err := provider.Complete(ctx, sysPrompt, repairPrompt, opts.MaxTokens, opts.Temperature)
	if err != nil {
		return nil, fmt.Errorf("llm: repair complete: %w", err)
	}
	second := evaluate(raw2, req, prof)
	second.Attempts = 2
	logger.Info("schedule repaired",
		"strategy", second.Strategy,
		"verdict", second.Summary.Verdict,
		"issues", len(second.Result.Issues))

	switch {
	case usable(second):
		return second, nil
	case usable(first):
		first.Attempts = 2
		return first, nil
	default:
		return nil, ErrNoUsableSemesters
	}
}

func usable(o *Outcome) bool {
	return o.Result.Stats.AcademicSemesters > 0
}

// evaluate runs one agent response through the normalizer, the transcript
// merge and the validation engine.
func evaluate(raw string, req Request, prof profile.Profile) *Outcome {
	plan, rep := normalize.NormalizeWithReport(raw)
	if plan.School == "" {
		plan.School = req.School
	}
	if plan.TotalCredits == 0 {
		plan.TotalCredits = req.TargetCredits
	}
	if req.Transcript != nil && len(plan.Semesters) > 0 {
		plan = transcript.Merge(*req.Transcript, plan)
	}
	res := validate.Validate(plan, validate.Options{
		TrimExcessCredits: true,
		TargetCredits:     targetCredits(req, prof),
		Profile:           &prof,
	})
	return &Outcome{
		Result:   res,
		Summary:  verdict.Summarize(res),
		Strategy: rep.Strategy,
	}
}

func targetCredits(req Request, prof profile.Profile) int {
	if req.TargetCredits > 0 {
		return req.TargetCredits
	}
	return prof.TargetCredits
}
