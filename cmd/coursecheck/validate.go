package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/coursecheck/internal/pipeline"
	"github.com/dshills/coursecheck/internal/profile"
)

type checkFlags struct {
	input  string
	school string
	trim   bool
	target int
	outputFlags
}

func newValidateCmd(a *app) *cobra.Command {
	var f checkFlags
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Normalize and validate a generated schedule (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.input = args[0]
			}
			if !cmd.Flags().Changed("school") {
				f.school = a.cfg.Validation.School
			}
			if !cmd.Flags().Changed("trim") {
				f.trim = a.cfg.Validation.Trim
			}
			if !cmd.Flags().Changed("target") {
				f.target = a.cfg.Validation.TargetCredits
			}
			return runValidate(a, cmd.InOrStdin(), cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().StringVar(&f.school, "school", "", "school profile id ("+strings.Join(profile.IDs(), ", ")+")")
	cmd.Flags().BoolVar(&f.trim, "trim", false, "trim excess elective credits toward the target")
	cmd.Flags().IntVar(&f.target, "target", 0, "degree credit target (default: the schedule's declared total)")
	f.register(cmd)
	return cmd
}

func runValidate(a *app, stdin io.Reader, stdout io.Writer, f checkFlags) error {
	a.ensure()
	failOn, err := f.check()
	if err != nil {
		return err
	}
	if f.school != "" {
		if _, err := profile.Load(f.school); err != nil {
			return exitWith(exitCodeBadInput, "--school: %v", err)
		}
	}
	if f.target < 0 {
		return exitWith(exitCodeBadInput, "--target must not be negative")
	}

	raw, source, err := readInput(stdin, f.input)
	if err != nil {
		return err
	}

	report := pipeline.Check(string(raw), pipeline.Options{
		Source:        source,
		SchoolID:      f.school,
		Trim:          f.trim,
		TargetCredits: f.target,
		Customize:     a.cfg.ApplyProfile,
	})
	a.logger.Info("schedule validated",
		"source", source,
		"strategy", report.Meta.Strategy,
		"verdict", report.Summary.Verdict,
		"score", report.Summary.Score,
		"issues", len(report.Result.Issues))
	return emitReport(stdout, report, f.outputFlags, failOn)
}
