package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/fiche-dentaire/export"
	"github.com/giygas/fiche-dentaire/form"
	"github.com/giygas/fiche-dentaire/interfaces"
	"github.com/giygas/fiche-dentaire/logging"
	"github.com/giygas/fiche-dentaire/registry"
	"github.com/giygas/fiche-dentaire/render"
	"github.com/giygas/fiche-dentaire/report"
	"github.com/giygas/fiche-dentaire/session"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

const maxBodyBytes = 1 << 20

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	sessions  interfaces.SessionStore
	exporter  interfaces.Exporter
	drugs     interfaces.DrugValidator
	validator interfaces.InputValidator
	health    interfaces.HealthChecker
	startTime time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies.
// drugs may be nil when no registry is configured.
func NewHTTPHandler(
	sessions interfaces.SessionStore,
	exporter interfaces.Exporter,
	drugs interfaces.DrugValidator,
	validator interfaces.InputValidator,
	health interfaces.HealthChecker,
) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		sessions:  sessions,
		exporter:  exporter,
		drugs:     drugs,
		validator: validator,
		health:    health,
		startTime: time.Now(),
	}
}

// SessionResponse is the state of a form session
type SessionResponse struct {
	ID       string             `json:"id"`
	Answers  form.Answers       `json:"answers"`
	Visible  []string           `json:"visible"`
	Advisory *registry.Advisory `json:"advisory,omitempty"`
}

// ReportResponse carries the assembled report entries
type ReportResponse struct {
	ID      string         `json:"id"`
	Entries []report.Entry `json:"entries"`
}

// ExportResponse describes a written report file
type ExportResponse struct {
	Format string `json:"format"`
	File   string `json:"file"`
	Path   string `json:"path"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

func newSessionResponse(id string, answers form.Answers) SessionResponse {
	return SessionResponse{ID: id, Answers: answers, Visible: form.Visible(answers)}
}

// sessionID validates the {id} URL parameter, answering 400 when unusable
func (h *HTTPHandlerImpl) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateSessionID(id); err != nil {
		logging.Warn("Unusual user input", "session_id", id, "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}

// respondStoreError maps store and decoding errors to HTTP statuses
func (h *HTTPHandlerImpl) respondStoreError(w http.ResponseWriter, err error) {
	var decodeErr *form.DecodeError
	switch {
	case errors.Is(err, session.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, "Session not found")
	case errors.As(err, &decodeErr):
		RespondWithError(w, http.StatusBadRequest, decodeErr.Error())
	default:
		logging.Error("Session operation failed", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal error")
	}
}

// ServeFields returns the field catalog, optionally restricted to ?tab=
func (h *HTTPHandlerImpl) ServeFields(w http.ResponseWriter, r *http.Request) {
	tab := r.URL.Query().Get("tab")
	if tab == "" {
		RespondWithJSON(w, http.StatusOK, form.Catalog())
		return
	}

	fields := form.Fields(form.Tab(tab))
	if len(fields) == 0 {
		RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unknown tab %q", tab))
		return
	}
	RespondWithJSON(w, http.StatusOK, fields)
}

// CreateSession opens a new form session
func (h *HTTPHandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := h.sessions.Create()
	answers, err := h.sessions.Snapshot(id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/sessions/"+id)
	RespondWithJSON(w, http.StatusCreated, newSessionResponse(id, answers))
}

// GetSession returns the answers of a session and the fields currently shown
func (h *HTTPHandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	answers, err := h.sessions.Snapshot(id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, newSessionResponse(id, answers))
}

// DeleteSession drops a session
func (h *HTTPHandlerImpl) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Delete(id); err != nil {
		h.respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MergeAnswers sets the answers in the body, a flat JSON object keyed by
// field name; null clears a field. When the medication changed, the
// registry advisory is returned alongside the new state.
func (h *HTTPHandlerImpl) MergeAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var values map[string]form.Answer
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&values); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Body must be a JSON object of answers")
		return
	}

	before, err := h.sessions.Snapshot(id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	answers, err := h.sessions.Merge(id, values)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	resp := newSessionResponse(id, answers)
	if _, touched := values["medicament"]; touched {
		if name := answers.Text("medicament"); name != "" && name != before.Text("medicament") {
			advisory := h.advise(r, name)
			resp.Advisory = &advisory
		}
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// ResetAnswers brings a session back to a fresh form
func (h *HTTPHandlerImpl) ResetAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Reset(id); err != nil {
		h.respondStoreError(w, err)
		return
	}

	answers, err := h.sessions.Snapshot(id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, newSessionResponse(id, answers))
}

// assemble builds the report of a session and keeps its text for editing
func (h *HTTPHandlerImpl) assemble(id string) (form.Answers, []report.Entry, error) {
	answers, err := h.sessions.Snapshot(id)
	if err != nil {
		return form.Answers{}, nil, err
	}

	entries := report.Assemble(answers)
	if err := h.sessions.SetGeneratedText(id, render.Text(entries)); err != nil {
		return form.Answers{}, nil, err
	}
	return answers, entries, nil
}

// ServeReport returns the report entries as JSON
func (h *HTTPHandlerImpl) ServeReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	_, entries, err := h.assemble(id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, ReportResponse{ID: id, Entries: entries})
}

// ServeReportText returns the plain text report
func (h *HTTPHandlerImpl) ServeReportText(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	_, entries, err := h.assemble(id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	RespondWithText(w, http.StatusOK, render.Text(entries))
}

// Export writes the report of a session to the output directory in the
// {format} given: text, pdf or hygiene
func (h *HTTPHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	format := chi.URLParam(r, "format")
	if !slices.Contains(export.Formats, format) {
		RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unknown export format %q, expected %s", format, strings.Join(export.Formats, ", ")))
		return
	}

	answers, entries, err := h.assemble(id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	path, err := export.Write(h.exporter, format, answers, entries)
	if err != nil {
		logging.Error("Export failed", "session_id", id, "format", format, "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to write the report file")
		return
	}

	RespondWithJSON(w, http.StatusCreated, ExportResponse{Format: format, File: filepath.Base(path), Path: path})
}

// ExportEdited writes a text report edited by the practitioner. Without a
// text in the body, the last generated report of the session is written.
func (h *HTTPHandlerImpl) ExportEdited(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			RespondWithError(w, http.StatusBadRequest, `Body must be a JSON object {"text": ...}`)
			return
		}
	}

	answers, err := h.sessions.Snapshot(id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	text := body.Text
	if strings.TrimSpace(text) == "" {
		if text, err = h.sessions.GeneratedText(id); err != nil {
			h.respondStoreError(w, err)
			return
		}
	}
	if strings.TrimSpace(text) == "" {
		RespondWithError(w, http.StatusBadRequest, "No report text to export, generate the report first")
		return
	}

	path, err := h.exporter.WriteEdited(answers.Text("nom_prenom"), text)
	if err != nil {
		logging.Error("Export failed", "session_id", id, "format", "edited", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to write the report file")
		return
	}

	RespondWithJSON(w, http.StatusCreated, ExportResponse{Format: export.FormatEdited, File: filepath.Base(path), Path: path})
}

// ValidateMedicament looks ?nom= up in the registry. The answer is always
// an advisory; only a malformed name is rejected.
func (h *HTTPHandlerImpl) ValidateMedicament(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("nom"))
	if name == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing nom parameter")
		return
	}

	if err := h.validator.ValidateDrugName(name); err != nil {
		logging.Warn("Unusual user input", "nom", name, "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, registry.Advise(r.Context(), h.drugs, name))
}

// advise runs the registry lookup for a merged medication name
func (h *HTTPHandlerImpl) advise(r *http.Request, name string) registry.Advisory {
	if err := h.validator.ValidateDrugName(name); err != nil {
		return registry.Advisory{
			Level:   registry.LevelWarning,
			Message: fmt.Sprintf("Nom de médicament non vérifiable : %v", err),
		}
	}
	return registry.Advise(r.Context(), h.drugs, name)
}

// HealthCheck returns service health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.health.HealthCheck()
	uptime := time.Since(h.startTime)

	RespondWithJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	})
}
