package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"testadmin/internal/clients"
	"testadmin/internal/handlers"
	"testadmin/internal/middleware"
)

type fakeResults struct {
	token string
}

func (f *fakeResults) ResultsForTest(_ context.Context, testID, token string) []clients.Result {
	f.token = token
	return []clients.Result{{"testId": testID, "score": 8}}
}
func (f *fakeResults) HistoryForCandidate(_ context.Context, candidateID, token string) []clients.Result {
	return []clients.Result{}
}
func (f *fakeResults) ExportCSV(_ context.Context, testID, token string) string {
	return "candidateId,score\nc1,8\n"
}

func newResultsRouter(src handlers.ResultsSource) *chi.Mux {
	h := handlers.NewResultsHandler(src)
	r := chi.NewRouter()
	r.Use(withPrincipal(&middleware.Principal{ID: "m1", Roles: []string{middleware.RoleManager}, Token: "tok"}))
	r.Get("/admin/results/test/{testId}", h.TestResultsHandler)
	r.Get("/admin/results/candidate/{candidateId}", h.CandidateHistoryHandler)
	r.Get("/admin/results/export", h.ExportHandler)
	return r
}

func TestResultsForTest(t *testing.T) {
	src := &fakeResults{}
	r := newResultsRouter(src)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/results/test/t1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if src.token != "tok" {
		t.Fatalf("expected caller token forwarded, got %q", src.token)
	}
}

func TestResultsExport(t *testing.T) {
	r := newResultsRouter(&fakeResults{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/results/export?testId=t1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="results.csv"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rr.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/results/export", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without testId, got %d", rr.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	healthy := handlers.NewHealthHandler(map[string]handlers.ReadinessCheck{
		"store": func(context.Context) error { return nil },
	})
	rr := httptest.NewRecorder()
	healthy.ReadyzHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	broken := handlers.NewHealthHandler(map[string]handlers.ReadinessCheck{
		"redis": func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	rr = httptest.NewRecorder()
	broken.ReadyzHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handlers.NewHealthHandler(nil).HealthzHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
