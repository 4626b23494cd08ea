package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/coursecheck/internal/llm"
	"github.com/dshills/coursecheck/internal/metrics"
	"github.com/dshills/coursecheck/internal/pipeline"
	"github.com/dshills/coursecheck/internal/profile"
	"github.com/dshills/coursecheck/internal/render"
)

type generateFlags struct {
	school     string
	schoolID   string
	major      string
	degree     string
	start      string
	grad       string
	target     int
	notes      string
	transcript string
	provider   string
	model      string
	offline    bool // skip the API key pre-flight
	outputFlags
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ask the agent for a schedule, then normalize, validate and repair it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("provider") {
				f.provider = a.cfg.LLM.Provider
			}
			if !cmd.Flags().Changed("model") {
				f.model = a.cfg.LLM.Model
			}
			return runGenerate(cmd.Context(), a, cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().StringVar(&f.school, "school", "", "school name (required)")
	cmd.Flags().StringVar(&f.schoolID, "school-id", "", "school profile id; resolved from --school when empty")
	cmd.Flags().StringVar(&f.major, "major", "", "major (required)")
	cmd.Flags().StringVar(&f.degree, "degree", "", "degree, e.g. BS")
	cmd.Flags().StringVar(&f.start, "start", "", "first term, e.g. \"Fall 2025\" (required)")
	cmd.Flags().StringVar(&f.grad, "grad", "", "graduation term, e.g. \"Spring 2029\" (required)")
	cmd.Flags().IntVar(&f.target, "target", 0, "degree credit target (default: the school profile's)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form student notes passed to the agent")
	cmd.Flags().StringVar(&f.transcript, "transcript", "", "transcript rows (JSON array) to merge as completed history")
	cmd.Flags().StringVar(&f.provider, "provider", "anthropic", "LLM provider: anthropic, openai or google")
	cmd.Flags().StringVar(&f.model, "model", "", "LLM model name")
	f.register(cmd)
	return cmd
}

func runGenerate(ctx context.Context, a *app, stdout io.Writer, f generateFlags) error {
	a.ensure()
	failOn, err := f.check()
	if err != nil {
		return err
	}
	if !f.offline {
		env, err := llm.APIKeyEnv(f.provider)
		if err != nil {
			return exitWith(exitCodeBadInput, "%v", err)
		}
		if os.Getenv(env) == "" {
			return exitWith(exitCodeAPIError, "%s environment variable not set", env)
		}
	}

	req := llm.Request{
		School:         f.school,
		SchoolID:       f.schoolID,
		Major:          f.major,
		Degree:         f.degree,
		StartTerm:      f.start,
		GraduationTerm: f.grad,
		TargetCredits:  f.target,
		Notes:          f.notes,
	}
	if f.transcript != "" {
		data, err := loadTranscript(a, nil, f.transcript)
		if err != nil {
			return err
		}
		req.Transcript = &data
	}

	prof := a.cfg.ApplyProfile(profile.Resolve(req.SchoolID, req.School))
	out, err := llm.Generate(ctx, req, llm.Options{
		Provider:    f.provider,
		Model:       f.model,
		MaxTokens:   a.cfg.LLM.MaxTokens,
		Temperature: a.cfg.LLM.Temperature,
		Profile:     &prof,
		Logger:      a.logger,
	})
	attempts := 0
	if out != nil {
		attempts = out.Attempts
	}
	metrics.ObserveGeneration(f.provider, attempts, err)
	switch {
	case errors.Is(err, llm.ErrInvalidRequest):
		return exitWith(exitCodeBadInput, "%v", err)
	case errors.Is(err, llm.ErrNoUsableSemesters):
		return exitWith(exitCodeBadOutput, "%v", err)
	case err != nil:
		return exitWith(exitCodeAPIError, "%v", err)
	}

	report := pipeline.NewReport(out.Result, out.Summary, pipeline.Options{Source: "generate", Trim: true})
	report.Meta = render.Meta{
		Strategy: out.Strategy,
		Attempts: out.Attempts,
		Provider: f.provider,
		Model:    f.model,
	}
	return emitReport(stdout, report, f.outputFlags, failOn)
}
