package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/coursecheck/internal/config"
	"github.com/dshills/coursecheck/internal/pipeline"
	"github.com/dshills/coursecheck/internal/render"
	"github.com/dshills/coursecheck/internal/verdict"
)

// Exit codes.
const (
	exitCodeFailOn    = 2 // verdict at or above --fail-on
	exitCodeBadInput  = 3 // missing or unreadable input, bad flags
	exitCodeAPIError  = 4 // provider creation or API call failed
	exitCodeBadOutput = 5 // agent output unusable after repair
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, format string, args ...any) error {
	return &exitError{code: code, err: fmt.Errorf(format, args...)}
}

// app holds state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	logger     *slog.Logger
}

func main() {
	root := newRootCmd(&app{})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "coursecheck",
		Short:         "Validate and repair AI-generated multi-year course schedules",
		Version:       pipeline.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (overrides user and project config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newTranscriptCmd(a))
	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}

// init loads configuration and builds the logger. Logs go to stderr so
// that reports on stdout stay machine-readable.
func (a *app) init(stderr io.Writer) error {
	boot := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg, err := config.NewLoader(boot).Load(a.configPath)
	if err != nil {
		return exitWith(exitCodeBadInput, "%v", err)
	}
	if a.logLevel != "" {
		if _, err := config.ParseLevel(a.logLevel); err != nil {
			return exitWith(exitCodeBadInput, "%v", err)
		}
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = cfg.Log.NewLogger(stderr)
	return nil
}

// ensure returns a's config, loading defaults when init has not run, as
// when tests call the run functions directly.
func (a *app) ensure() {
	if a.cfg == nil {
		a.cfg = config.DefaultConfig()
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
}

// outputFlags are shared by every command that writes a report.
type outputFlags struct {
	format string
	out    string
	failOn string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", "json", "output format: json or md")
	cmd.Flags().StringVar(&o.out, "out", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&o.failOn, "fail-on", "", "exit 2 when the verdict is at or above this level (REVIEW or REGENERATE)")
}

func (o outputFlags) check() (verdict.Verdict, error) {
	if o.format != "json" && o.format != "md" {
		return "", exitWith(exitCodeBadInput, "--format must be json or md, got %q", o.format)
	}
	if o.failOn == "" {
		return "", nil
	}
	v, err := verdict.ParseVerdict(o.failOn)
	if err != nil {
		return "", exitWith(exitCodeBadInput, "--fail-on: %v", err)
	}
	return v, nil
}

// emitReport renders report, writes it and applies the --fail-on threshold.
func emitReport(stdout io.Writer, report *render.Report, o outputFlags, failOn verdict.Verdict) error {
	var data []byte
	if o.format == "md" {
		data = []byte(render.RenderMarkdown(report))
	} else {
		b, err := render.RenderJSON(report)
		if err != nil {
			return err
		}
		data = append(b, '\n')
	}
	if err := writeOutput(stdout, o.out, data); err != nil {
		return err
	}
	if failOn != "" && verdict.VerdictOrdinal(report.Summary.Verdict) >= verdict.VerdictOrdinal(failOn) {
		return exitWith(exitCodeFailOn, "verdict %s is at or above --fail-on %s", report.Summary.Verdict, failOn)
	}
	return nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(stdin io.Reader, path string) ([]byte, string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", exitWith(exitCodeBadInput, "read stdin: %v", err)
		}
		return b, "stdin", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", exitWith(exitCodeBadInput, "read input: %v", err)
	}
	return b, path, nil
}
