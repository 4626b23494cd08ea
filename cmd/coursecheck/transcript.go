package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/coursecheck/internal/render"
	"github.com/dshills/coursecheck/internal/schema"
	"github.com/dshills/coursecheck/internal/transcript"
)

type transcriptFlags struct {
	input  string
	format string
	out    string
}

func newTranscriptCmd(a *app) *cobra.Command {
	var f transcriptFlags
	cmd := &cobra.Command{
		Use:   "transcript [file]",
		Short: "Group parsed transcript rows (a JSON array) into completed semesters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.input = args[0]
			}
			return runTranscript(a, cmd.InOrStdin(), cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().StringVar(&f.format, "format", "json", "output format: json or md")
	cmd.Flags().StringVar(&f.out, "out", "", "write the result to this file instead of stdout")
	return cmd
}

// loadTranscript reads and groups a transcript file.
func loadTranscript(a *app, stdin io.Reader, path string) (schema.TranscriptData, error) {
	raw, _, err := readInput(stdin, path)
	if err != nil {
		return schema.TranscriptData{}, err
	}
	var rows []schema.CompletedCourse
	if err := json.Unmarshal(raw, &rows); err != nil {
		return schema.TranscriptData{}, exitWith(exitCodeBadInput, "parse transcript: %v", err)
	}
	data := transcript.Group(rows, a.cfg.TranscriptOptions())
	a.logger.Info("transcript grouped",
		"rows", len(rows),
		"semesters", len(data.CompletedSemesters),
		"completed_credits", data.TotalCompletedCredits,
		"transfer_credits", data.TotalTransferCredits,
		"coops", data.CompletedCoops)
	return data, nil
}

func runTranscript(a *app, stdin io.Reader, stdout io.Writer, f transcriptFlags) error {
	a.ensure()
	if f.format != "json" && f.format != "md" {
		return exitWith(exitCodeBadInput, "--format must be json or md, got %q", f.format)
	}
	data, err := loadTranscript(a, stdin, f.input)
	if err != nil {
		return err
	}
	var out []byte
	if f.format == "md" {
		out = []byte(render.RenderTranscriptMarkdown(data))
	} else {
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		out = append(b, '\n')
	}
	return writeOutput(stdout, f.out, out)
}
