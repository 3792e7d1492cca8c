// Package interfaces defines core abstractions for the intake service
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/fiche-dentaire/form"
	"github.com/giygas/fiche-dentaire/registry"
	"github.com/giygas/fiche-dentaire/report"
)

// SessionStore defines the contract for session-scoped answer storage.
// Sessions are isolated from each other and safe for concurrent use.
type SessionStore interface {
	// Lifecycle
	Create() string
	Delete(id string) error
	Count() int
	Expire() int
	LastAccess(id string) (time.Time, error)

	// Answers
	Snapshot(id string) (form.Answers, error)
	Merge(id string, values map[string]form.Answer) (form.Answers, error)
	Reset(id string) error

	// Last generated text report, kept for editing
	SetGeneratedText(id, text string) error
	GeneratedText(id string) (string, error)
}

// Exporter defines the contract for writing report files.
// Every method returns the path of the written file.
type Exporter interface {
	WriteText(patient string, entries []report.Entry) (string, error)
	WritePDF(patient string, entries []report.Entry) (string, error)
	WriteHygiene(h report.Hygiene) (string, error)
	WriteEdited(patient, text string) (string, error)
	Dir() string
}

// DrugValidator checks medication names against the reference registry
type DrugValidator interface {
	Validate(ctx context.Context, name string) (*registry.ValidationInfo, error)
}

// Scheduler defines the contract for background jobs.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	// Catalog
	ServeFields(w http.ResponseWriter, r *http.Request)

	// Sessions
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	DeleteSession(w http.ResponseWriter, r *http.Request)
	MergeAnswers(w http.ResponseWriter, r *http.Request)
	ResetAnswers(w http.ResponseWriter, r *http.Request)

	// Reports
	ServeReport(w http.ResponseWriter, r *http.Request)
	ServeReportText(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	ExportEdited(w http.ResponseWriter, r *http.Request)

	// Registry
	ValidateMedicament(w http.ResponseWriter, r *http.Request)

	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
// It provides system health monitoring and reporting.
type HealthChecker interface {
	// HealthCheck returns current system health status, its details and
	// the HTTP status to answer with
	HealthCheck() (status string, data map[string]any, httpStatus int)
}

// InputValidator checks user supplied strings
type InputValidator interface {
	// ValidateDrugName validates a medication name before lookup
	ValidateDrugName(input string) error

	// ValidateSessionID validates a session id taken from a URL
	ValidateSessionID(id string) error
}
