package handlers

import (
	"encoding/json"
	"net/http"

	"testadmin/internal/middleware"
	"testadmin/internal/models"
	"testadmin/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewCatalogHandler(catalog Catalog, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

func (h *CatalogHandler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateCategoryRequest](r)
	category, err := h.catalog.CreateCategory(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusCreated, models.MsgCategoryCreated, category)
}

func (h *CatalogHandler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgCategoriesFetched, categories)
}

func (h *CatalogHandler) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateCategoryRequest](r)
	category, err := h.catalog.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgCategoryUpdated, category)
}

func (h *CatalogHandler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgCategoryDeleted, nil)
}

func (h *CatalogHandler) CreateQuestionHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateQuestionRequest](r)

	createdBy := ""
	if p := middleware.PrincipalFrom(r.Context()); p != nil {
		createdBy = p.ID
	}

	question, err := h.catalog.CreateQuestion(r.Context(), req, createdBy)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusCreated, models.MsgQuestionCreated, question)
}

// GET /admin/questions?categoryId=
func (h *CatalogHandler) ListQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	questions, err := h.catalog.ListQuestions(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgQuestionsFetched, questions)
}

// POST /admin/questions/bulk with a JSON array of ids.
func (h *CatalogHandler) BulkQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		utils.Error(w, http.StatusBadRequest, models.CodeInvalidJSON, "Invalid JSON in request body")
		return
	}
	questions, err := h.catalog.QuestionsByIDs(r.Context(), ids)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgQuestionsFetched, questions)
}

func (h *CatalogHandler) UpdateQuestionHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateQuestionRequest](r)
	question, err := h.catalog.UpdateQuestion(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgQuestionUpdated, question)
}

func (h *CatalogHandler) DeleteQuestionHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteQuestion(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.OK(w, http.StatusOK, models.MsgQuestionDeleted, nil)
}
