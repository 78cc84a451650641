package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/engine"
	"github.com/Caspar241/releasehub/internal/errors"
	"github.com/Caspar241/releasehub/internal/grouping"
)

type applyRequest struct {
	TemplateID string `json:"template_id"`
	AnchorID   string `json:"anchor_id"`
}

type commandRequest struct {
	Version int64 `json:"version"`
	Hours   int   `json:"hours,omitempty"`
}

type errorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// handleApply applies a template to a release or routine. For releases
// the anchor date comes from the release registry; for routines the
// batch is scoped to the current ISO week.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.TemplateID == "" || req.AnchorID == "" {
		s.writeBadRequest(w, "template_id and anchor_id are required")
		return
	}

	ctx := r.Context()
	tpl, err := s.deps.Catalog.Template(req.TemplateID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	anchor := engine.Anchor{ID: req.AnchorID}
	var cycleKey domain.CycleKey
	if tpl.IsRecurring() {
		if _, err := s.deps.Routines.Routine(ctx, req.AnchorID); err != nil {
			s.writeError(w, err)
			return
		}
		cycleKey = domain.CycleKeyFor(time.Now().UTC())
	} else {
		release, err := s.deps.Releases.Release(ctx, req.AnchorID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		anchor.Date = release.ReleaseDate
	}

	start := time.Now()
	result, err := s.deps.Engine.Apply(ctx, req.TemplateID, anchor, cycleKey)
	s.deps.Metrics.TemplateApplications.WithLabelValues(req.TemplateID, string(tpl.Type), strconv.FormatBool(err == nil)).Inc()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.deps.Metrics.ApplyDuration.WithLabelValues(req.TemplateID).Observe(time.Since(start).Seconds())
	s.deps.Metrics.TasksInstantiated.WithLabelValues(req.TemplateID).Add(float64(len(result.Created)))
	s.deps.Metrics.TasksSkipped.WithLabelValues(req.TemplateID).Add(float64(len(result.Skipped)))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	inst, err := s.deps.Lifecycle.Complete(r.Context(), domain.InstanceID(r.PathValue("id")), req.Version)
	s.recordCommand("complete", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, inst)
}

func (s *Server) handleSnooze(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	inst, err := s.deps.Lifecycle.Snooze(r.Context(), domain.InstanceID(r.PathValue("id")), req.Hours, req.Version)
	s.recordCommand("snooze", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, inst)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	inst, err := s.deps.Lifecycle.Dismiss(r.Context(), domain.InstanceID(r.PathValue("id")), req.Version)
	s.recordCommand("dismiss", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, inst)
}

// handleListGroups lists the caller's groups. An explicit ?user= wins;
// otherwise the identity collaborator decides who is asking.
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("user")
	if userID == "" {
		user, err := s.deps.Identity.CurrentUser(ctx)
		if err != nil {
			s.writeError(w, err)
			return
		}
		userID = user.ID
	}

	groups, err := s.deps.Grouping.ListGroups(ctx, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if groups == nil {
		groups = []*grouping.TaskGroup{}
	}
	s.writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.deps.Grouping.Group(r.Context(), r.PathValue("anchorID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.Catalog.List())
}

// handleTick runs one scheduler pass. Invoked by an external cron, not
// self-triggered; repeating it within a cycle is harmless.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Scheduler.Tick(r.Context(), time.Now().UTC())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.deps.Metrics.RoutineTicks.Inc()
	s.deps.Metrics.RoutinesApplied.Add(float64(result.Applied))
	s.deps.Metrics.RoutinesUpToDate.Add(float64(result.UpToDate))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) recordCommand(command string, err error) {
	s.deps.Metrics.TaskCommands.WithLabelValues(command, strconv.FormatBool(err == nil)).Inc()
	if rhErr, ok := err.(*errors.ReleaseHubError); ok {
		s.deps.Metrics.CommandErrors.WithLabelValues(command, string(rhErr.Code)).Inc()
	}
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeBadRequest(w, "failed to read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeBadRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
		Code:    "REQUEST-001",
		Message: message,
	}})
}

// writeError maps the error taxonomy onto HTTP statuses: lookups that
// missed are 404, validation failures 400, and version or state
// conflicts 409 so callers know to re-fetch and retry.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsCode(err, errors.ErrCodeTemplateNotFound),
		errors.IsCode(err, errors.ErrCodeAnchorNotFound),
		errors.IsCode(err, errors.ErrCodeInstanceNotFound):
		status = http.StatusNotFound
	case errors.IsCode(err, errors.ErrCodeMissingAnchorDate),
		errors.IsCode(err, errors.ErrCodeInvalidOffset),
		errors.IsCode(err, errors.ErrCodeInvalidSnoozeDuration),
		errors.IsCode(err, errors.ErrCodeTemplateInvalid):
		status = http.StatusBadRequest
	case errors.IsCode(err, errors.ErrCodeInvalidStateTransition),
		errors.IsCode(err, errors.ErrCodeConcurrentModification):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed")
	}

	body := errorResponse{Error: errorBody{Message: err.Error()}}
	if rhErr, ok := err.(*errors.ReleaseHubError); ok {
		body.Error.Code = string(rhErr.Code)
		body.Error.Message = rhErr.Message
		body.Error.Suggestions = rhErr.Suggestions
		s.deps.Metrics.Errors.WithLabelValues(string(rhErr.Code)).Inc()
	}
	s.writeJSON(w, status, body)
}
