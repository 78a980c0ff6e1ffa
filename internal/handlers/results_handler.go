package handlers

import (
	"net/http"

	"testadmin/internal/middleware"
	"testadmin/internal/models"
	"testadmin/internal/utils"

	"github.com/go-chi/chi/v5"
)

type ResultsHandler struct {
	results ResultsSource
}

func NewResultsHandler(results ResultsSource) *ResultsHandler {
	return &ResultsHandler{results: results}
}

func bearer(r *http.Request) string {
	if p := middleware.PrincipalFrom(r.Context()); p != nil {
		return p.Token
	}
	return ""
}

// GET /admin/results/test/{testId}
func (h *ResultsHandler) TestResultsHandler(w http.ResponseWriter, r *http.Request) {
	results := h.results.ResultsForTest(r.Context(), chi.URLParam(r, "testId"), bearer(r))
	utils.OK(w, http.StatusOK, models.MsgResultsFetched, results)
}

// GET /admin/results/candidate/{candidateId}
func (h *ResultsHandler) CandidateHistoryHandler(w http.ResponseWriter, r *http.Request) {
	history := h.results.HistoryForCandidate(r.Context(), chi.URLParam(r, "candidateId"), bearer(r))
	utils.OK(w, http.StatusOK, models.MsgHistoryFetched, history)
}

// GET /admin/results/export?testId=
func (h *ResultsHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	testID := r.URL.Query().Get("testId")
	if testID == "" {
		utils.Error(w, http.StatusBadRequest, models.CodeInvalidArgument, "testId is required")
		return
	}
	csv := h.results.ExportCSV(r.Context(), testID, bearer(r))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}
