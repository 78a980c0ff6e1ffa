package handlers

import (
	"net/http"

	"testadmin/internal/middleware"
	"testadmin/internal/models"
	"testadmin/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TestHandler struct {
	tests  TestManager
	logger *zap.Logger
}

func NewTestHandler(tests TestManager, logger *zap.Logger) *TestHandler {
	return &TestHandler{tests: tests, logger: logger}
}

// POST /admin/tests
func (h *TestHandler) CreateTestHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateTestRequest](r)

	test, err := h.tests.CreateTest(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusCreated, models.MsgTestCreated, test)
}

// GET /admin/tests
func (h *TestHandler) ListTestsHandler(w http.ResponseWriter, r *http.Request) {
	tests, err := h.tests.FindAll(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgTestsFetched, tests)
}

// GET /admin/tests/{id}
func (h *TestHandler) GetTestHandler(w http.ResponseWriter, r *http.Request) {
	test, err := h.tests.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgTestsFetched, test)
}

// PUT /admin/tests/{id}
func (h *TestHandler) UpdateTestHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateTestRequest](r)

	test, err := h.tests.UpdateTest(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgTestUpdated, test)
}

// DELETE /admin/tests/{id}
func (h *TestHandler) DeleteTestHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.tests.DeleteTest(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgTestDeleted, nil)
}

// POST /admin/tests/{id}/schedule
func (h *TestHandler) ScheduleTestHandler(w http.ResponseWriter, r *http.Request) {
	test, err := h.tests.Schedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgTestScheduled, test)
}

// POST /admin/tests/{id}/assign
func (h *TestHandler) AssignCandidatesHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.AssignTestRequest](r)

	token := ""
	if p := middleware.PrincipalFrom(r.Context()); p != nil {
		token = p.Token
	}

	test, err := h.tests.AssignCandidates(r.Context(), chi.URLParam(r, "id"), req.CandidateIDs, token)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgCandidatesAssigned, test)
}

// GET /admin/tests/candidate/{candidateId}. Candidates may only list their own.
func (h *TestHandler) CandidateTestsHandler(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateId")
	if p := middleware.PrincipalFrom(r.Context()); p != nil &&
		!p.HasRole(middleware.RoleAdmin, middleware.RoleManager) && p.ID != candidateID {
		utils.Error(w, http.StatusForbidden, models.CodeForbidden, "candidates may only list their own tests")
		return
	}
	h.writeCandidateTests(w, r, candidateID)
}

// GET /candidate/tests: the caller's own assignments.
func (h *TestHandler) MyTestsHandler(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFrom(r.Context())
	if p == nil {
		utils.Error(w, http.StatusUnauthorized, models.CodeUnauthorized, middleware.ErrMissingAuthHeader.Error())
		return
	}
	h.writeCandidateTests(w, r, p.ID)
}

func (h *TestHandler) writeCandidateTests(w http.ResponseWriter, r *http.Request, candidateID string) {
	tests, err := h.tests.GetTestsForCandidate(r.Context(), candidateID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgTestsFetched, tests)
}
