package interfaces

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/giygas/fiche-dentaire/form"
	"github.com/giygas/fiche-dentaire/registry"
	"github.com/giygas/fiche-dentaire/report"
)

// MockSessionStore implements SessionStore with a single map and no expiry
type MockSessionStore struct {
	sessions  map[string]form.Answers
	generated map[string]string
	next      int
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: map[string]form.Answers{}, generated: map[string]string{}}
}

var errNoSession = errors.New("no session")

func (m *MockSessionStore) Create() string {
	m.next++
	id := "session-" + string(rune('0'+m.next))
	m.sessions[id] = form.Answers{}
	return id
}

func (m *MockSessionStore) Delete(id string) error {
	if _, ok := m.sessions[id]; !ok {
		return errNoSession
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionStore) Count() int { return len(m.sessions) }
func (m *MockSessionStore) Expire() int { return 0 }

func (m *MockSessionStore) LastAccess(id string) (time.Time, error) {
	if _, ok := m.sessions[id]; !ok {
		return time.Time{}, errNoSession
	}
	return time.Now(), nil
}

func (m *MockSessionStore) Snapshot(id string) (form.Answers, error) {
	a, ok := m.sessions[id]
	if !ok {
		return form.Answers{}, errNoSession
	}
	return a, nil
}

func (m *MockSessionStore) Merge(id string, values map[string]form.Answer) (form.Answers, error) {
	a, ok := m.sessions[id]
	if !ok {
		return form.Answers{}, errNoSession
	}
	for name, v := range values {
		if err := form.Validate(name, v); err != nil {
			return form.Answers{}, err
		}
	}
	for name, v := range values {
		a = a.With(name, v)
	}
	m.sessions[id] = a
	return a, nil
}

func (m *MockSessionStore) Reset(id string) error {
	if _, ok := m.sessions[id]; !ok {
		return errNoSession
	}
	m.sessions[id] = form.Answers{}
	return nil
}

func (m *MockSessionStore) SetGeneratedText(id, text string) error {
	m.generated[id] = text
	return nil
}

func (m *MockSessionStore) GeneratedText(id string) (string, error) {
	return m.generated[id], nil
}

// MockExporter records what it was asked to write
type MockExporter struct {
	dir     string
	written []string
}

func (m *MockExporter) record(kind, patient string) (string, error) {
	m.written = append(m.written, kind)
	return filepath.Join(m.dir, kind+"_"+patient), nil
}

func (m *MockExporter) WriteText(patient string, entries []report.Entry) (string, error) {
	return m.record("text", patient)
}

func (m *MockExporter) WritePDF(patient string, entries []report.Entry) (string, error) {
	return m.record("pdf", patient)
}

func (m *MockExporter) WriteHygiene(h report.Hygiene) (string, error) {
	return m.record("hygiene", h.Patient)
}

func (m *MockExporter) WriteEdited(patient, text string) (string, error) {
	return m.record("edited", patient)
}

func (m *MockExporter) Dir() string { return m.dir }

// MockDrugValidator knows a fixed set of names
type MockDrugValidator struct {
	known map[string]bool
}

func (m *MockDrugValidator) Validate(ctx context.Context, name string) (*registry.ValidationInfo, error) {
	if !m.known[name] {
		return nil, registry.ErrNotFound
	}
	return &registry.ValidationInfo{Name: name, Matches: 1}, nil
}

// MockScheduler implements Scheduler interface for testing
type MockScheduler struct {
	started bool
	stopped bool
}

func (m *MockScheduler) Start() error {
	m.started = true
	return nil
}

func (m *MockScheduler) Stop() {
	m.stopped = true
}

// MockHTTPHandler answers every endpoint with the same status
type MockHTTPHandler struct {
	responseCode int
	calls        []string
}

func (m *MockHTTPHandler) respond(name string, w http.ResponseWriter) {
	m.calls = append(m.calls, name)
	w.WriteHeader(m.responseCode)
}

func (m *MockHTTPHandler) ServeFields(w http.ResponseWriter, r *http.Request) {
	m.respond("fields", w)
}
func (m *MockHTTPHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	m.respond("create", w)
}
func (m *MockHTTPHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	m.respond("get", w)
}
func (m *MockHTTPHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	m.respond("delete", w)
}
func (m *MockHTTPHandler) MergeAnswers(w http.ResponseWriter, r *http.Request) {
	m.respond("merge", w)
}
func (m *MockHTTPHandler) ResetAnswers(w http.ResponseWriter, r *http.Request) {
	m.respond("reset", w)
}
func (m *MockHTTPHandler) ServeReport(w http.ResponseWriter, r *http.Request) {
	m.respond("report", w)
}
func (m *MockHTTPHandler) ServeReportText(w http.ResponseWriter, r *http.Request) {
	m.respond("report.txt", w)
}
func (m *MockHTTPHandler) Export(w http.ResponseWriter, r *http.Request) {
	m.respond("export", w)
}
func (m *MockHTTPHandler) ExportEdited(w http.ResponseWriter, r *http.Request) {
	m.respond("edited", w)
}
func (m *MockHTTPHandler) ValidateMedicament(w http.ResponseWriter, r *http.Request) {
	m.respond("validate", w)
}
func (m *MockHTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	m.respond("health", w)
}

// MockHealthChecker implements HealthChecker interface for testing
type MockHealthChecker struct {
	status     string
	details    map[string]any
	httpStatus int
}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, m.details, m.httpStatus
}

// MockInputValidator rejects empty input only
type MockInputValidator struct{}

func (m *MockInputValidator) ValidateDrugName(input string) error {
	if input == "" {
		return errors.New("empty")
	}
	return nil
}

func (m *MockInputValidator) ValidateSessionID(id string) error {
	if id == "" {
		return errors.New("empty")
	}
	return nil
}

// Test functions demonstrating the benefits of interfaces

func TestSessionStoreInterface(t *testing.T) {
	var store SessionStore = NewMockSessionStore()

	id := store.Create()
	if store.Count() != 1 {
		t.Fatalf("Expected 1 session, got %d", store.Count())
	}

	answers, err := store.Merge(id, map[string]form.Answer{"cigarette": form.TextAnswer("Oui")})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if answers.Choice("cigarette") != "Oui" {
		t.Errorf("Expected cigarette 'Oui', got %q", answers.Choice("cigarette"))
	}

	// The catalog check is shared by every implementation
	if _, err := store.Merge(id, map[string]form.Answer{"inconnu": form.TextAnswer("x")}); !errors.Is(err, form.ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}

	if err := store.Delete(id); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if _, err := store.Snapshot(id); err == nil {
		t.Error("Expected error for a deleted session")
	}
}

func TestExporterInterface(t *testing.T) {
	exporter := &MockExporter{dir: "rapports"}

	var e Exporter = exporter
	path, err := e.WriteHygiene(report.Hygiene{Patient: "Jean"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if path != filepath.Join("rapports", "hygiene_Jean") {
		t.Errorf("Unexpected path %q", path)
	}
	if len(exporter.written) != 1 || exporter.written[0] != "hygiene" {
		t.Errorf("Unexpected writes %v", exporter.written)
	}
}

func TestDrugValidatorInterface(t *testing.T) {
	var v DrugValidator = &MockDrugValidator{known: map[string]bool{"Xarelto": true}}

	if a := registry.Advise(context.Background(), v, "Xarelto"); a.Level != registry.LevelOK {
		t.Errorf("Expected ok advisory, got %+v", a)
	}
	if a := registry.Advise(context.Background(), v, "Inconnu"); a.Level != registry.LevelWarning {
		t.Errorf("Expected warning advisory, got %+v", a)
	}
}

func TestSchedulerInterface(t *testing.T) {
	scheduler := &MockScheduler{}

	err := scheduler.Start()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	if !scheduler.started {
		t.Error("Scheduler should be started")
	}

	scheduler.Stop()
	if !scheduler.stopped {
		t.Error("Scheduler should be stopped")
	}
}

func TestHTTPHandlerInterface(t *testing.T) {
	handler := &MockHTTPHandler{responseCode: http.StatusTeapot}

	var h HTTPHandler = handler
	w := httptest.NewRecorder()
	h.ServeFields(w, httptest.NewRequest(http.MethodGet, "/v1/fields", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
	}
	if len(handler.calls) != 1 || handler.calls[0] != "fields" {
		t.Errorf("Unexpected calls %v", handler.calls)
	}
}

func TestHealthCheckerInterface(t *testing.T) {
	checker := &MockHealthChecker{
		status:     "degraded",
		details:    map[string]any{"registry_configured": false},
		httpStatus: http.StatusOK,
	}

	status, details, httpStatus := checker.HealthCheck()
	if status != "degraded" {
		t.Errorf("Expected status 'degraded', got '%s'", status)
	}
	if details["registry_configured"] != false {
		t.Errorf("Expected registry_configured false, got '%v'", details["registry_configured"])
	}
	if httpStatus != http.StatusOK {
		t.Errorf("Expected HTTP status 200, got %d", httpStatus)
	}
}

// Example of how interfaces enable dependency injection
type Service struct {
	sessions SessionStore
	exporter Exporter
}

func NewService(sessions SessionStore, exporter Exporter) *Service {
	return &Service{sessions: sessions, exporter: exporter}
}

func (s *Service) ExportText(id string) (string, error) {
	answers, err := s.sessions.Snapshot(id)
	if err != nil {
		return "", err
	}
	return s.exporter.WriteText(answers.Text("nom_prenom"), report.Assemble(answers))
}

func TestServiceWithDependencyInjection(t *testing.T) {
	store := NewMockSessionStore()
	exporter := &MockExporter{dir: "out"}
	service := NewService(store, exporter)

	id := store.Create()
	if _, err := store.Merge(id, map[string]form.Answer{"nom_prenom": form.TextAnswer("Jean")}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	path, err := service.ExportText(id)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if path != filepath.Join("out", "text_Jean") {
		t.Errorf("Unexpected path %q", path)
	}

	if _, err := service.ExportText("missing"); err == nil {
		t.Error("Expected error for an unknown session")
	}
}

// Compile-time checks to ensure our implementations implement the interfaces
func TestCompileTimeChecks(t *testing.T) {
	// These will fail to compile if the implementations don't match the interfaces
	var _ SessionStore = (*MockSessionStore)(nil)
	var _ Exporter = (*MockExporter)(nil)
	var _ DrugValidator = (*MockDrugValidator)(nil)
	var _ Scheduler = (*MockScheduler)(nil)
	var _ HTTPHandler = (*MockHTTPHandler)(nil)
	var _ HealthChecker = (*MockHealthChecker)(nil)
	var _ InputValidator = (*MockInputValidator)(nil)
}
