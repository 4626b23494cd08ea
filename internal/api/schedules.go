package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dshills/coursecheck/internal/llm"
	"github.com/dshills/coursecheck/internal/metrics"
	"github.com/dshills/coursecheck/internal/pipeline"
	"github.com/dshills/coursecheck/internal/profile"
	"github.com/dshills/coursecheck/internal/render"
	"github.com/dshills/coursecheck/internal/schema"
	"github.com/dshills/coursecheck/internal/store"
	"github.com/dshills/coursecheck/internal/tools"
	"github.com/dshills/coursecheck/internal/transcript"
)

// storedResponse is returned by every endpoint that creates or changes a
// stored schedule.
type storedResponse struct {
	ID      string         `json:"id"`
	Version int            `json:"version"`
	Tool    string         `json:"tool,omitempty"`
	Report  *render.Report `json:"report"`
}

type profileInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	TargetCredits int    `json:"targetCredits"`
}

// checkOptions builds pipeline options from config defaults overridden by
// the school, trim and target query parameters.
func (s *Server) checkOptions(r *http.Request, source string) (pipeline.Options, error) {
	opts := pipeline.Options{
		Source:        source,
		SchoolID:      s.cfg.Validation.School,
		Trim:          s.cfg.Validation.Trim,
		TargetCredits: s.cfg.Validation.TargetCredits,
		Customize:     s.cfg.ApplyProfile,
	}
	q := r.URL.Query()
	if v := q.Get("school"); v != "" {
		if _, err := profile.Load(v); err != nil {
			return opts, err
		}
		opts.SchoolID = v
	}
	if v := q.Get("trim"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("trim must be a boolean")
		}
		opts.Trim = b
	}
	if v := q.Get("target"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, errors.New("target must be a positive integer")
		}
		opts.TargetCredits = n
	}
	return opts, nil
}

// check normalizes and validates the raw request body.
func (s *Server) check(w http.ResponseWriter, r *http.Request) (*render.Report, bool) {
	opts, err := s.checkOptions(r, "api")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	body, err := readBody(r)
	if err != nil {
		s.writeBodyError(w, err)
		return nil, false
	}
	return pipeline.Check(string(body), opts), true
}

func (s *Server) writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// handleValidate validates a raw agent response without storing it.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	report, ok := s.check(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleCreate validates a raw agent response and stores the repaired
// schedule.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	report, ok := s.check(w, r)
	if !ok {
		return
	}
	s.storeReport(w, report)
}

func (s *Server) storeReport(w http.ResponseWriter, report *render.Report) {
	id, err := s.store.Create(report.Result.Schedule, s.cfg.Server.StoreTTL)
	if err != nil {
		s.logger.Error("store schedule", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.StoreEntries.Set(float64(s.store.Len()))
	s.logger.Info("schedule created", "id", id, "verdict", report.Summary.Verdict)
	writeJSON(w, http.StatusCreated, storedResponse{ID: id, Version: 1, Report: report})
}

// handleGenerate asks the agent for a schedule and stores the outcome.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req llm.Request
	if err := decodeJSON(r, &req); err != nil {
		s.writeBodyError(w, err)
		return
	}

	prof := s.cfg.ApplyProfile(profile.Resolve(req.SchoolID, req.School))
	llmCfg := s.cfg.LLM
	out, err := llm.Generate(r.Context(), req, llm.Options{
		Provider:    llmCfg.Provider,
		Model:       llmCfg.Model,
		MaxTokens:   llmCfg.MaxTokens,
		Temperature: llmCfg.Temperature,
		Profile:     &prof,
		Logger:      s.logger,
	})
	attempts := 0
	if out != nil {
		attempts = out.Attempts
	}
	metrics.ObserveGeneration(llmCfg.Provider, attempts, err)
	switch {
	case errors.Is(err, llm.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, llm.ErrNoUsableSemesters):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.logger.Error("generate schedule", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	metrics.ObserveStrategy(out.Strategy)
	metrics.ObserveValidation(out.Result, out.Summary)

	report := pipeline.NewReport(out.Result, out.Summary, pipeline.Options{Source: "generate", Trim: true})
	report.Meta = render.Meta{
		Strategy: out.Strategy,
		Attempts: out.Attempts,
		Provider: llmCfg.Provider,
		Model:    llmCfg.Model,
	}
	s.storeReport(w, report)
}

// handleGet returns a stored schedule.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	plan, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "schedule not found")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// handleVersion returns the version and last tool of a stored schedule.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lu, ok := s.store.LastUpdate(id)
	if !ok {
		writeError(w, http.StatusNotFound, "schedule not found")
		return
	}
	writeJSON(w, http.StatusOK, lu)
}

// handleTool applies a named tool to a stored schedule and returns the
// validation of the new version.
func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "tool")
	opts, err := s.checkOptions(r, "tool:"+name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts.Trim = false

	body, err := readBody(r)
	if err != nil {
		s.writeBodyError(w, err)
		return
	}
	t, err := tools.Decode(name, body)
	if err != nil {
		metrics.ObserveTool(name, err)
		writeError(w, toolStatus(err), err.Error())
		return
	}
	plan, lu, err := tools.Run(s.store, id, t)
	metrics.ObserveTool(name, err)
	if err != nil {
		writeError(w, toolStatus(err), err.Error())
		return
	}
	s.logger.Info("tool applied", "id", id, "tool", name, "version", lu.Version)

	report := pipeline.CheckPlan(plan, opts)
	writeJSON(w, http.StatusOK, storedResponse{ID: id, Version: lu.Version, Tool: lu.Tool, Report: report})
}

func toolStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, tools.ErrUnknownTool):
		return http.StatusNotFound
	case errors.Is(err, tools.ErrInvalidArgs):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

// handleGroupTranscript groups transcript rows into semesters.
func (s *Server) handleGroupTranscript(w http.ResponseWriter, r *http.Request) {
	var rows []schema.CompletedCourse
	if err := decodeJSON(r, &rows); err != nil {
		s.writeBodyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transcript.Group(rows, s.cfg.TranscriptOptions()))
}

// handleProfiles lists the built-in school profiles.
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	ids := profile.IDs()
	out := make([]profileInfo, 0, len(ids))
	for _, id := range ids {
		p, err := profile.Load(id)
		if err != nil {
			continue
		}
		out = append(out, profileInfo{ID: p.ID, Name: p.Name, Description: p.Description, TargetCredits: p.TargetCredits})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleToolNames lists the registered tools.
func (s *Server) handleToolNames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tools": tools.Names()})
}
