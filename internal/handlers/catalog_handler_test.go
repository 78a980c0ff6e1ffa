package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"testadmin/internal/handlers"
	"testadmin/internal/middleware"
	"testadmin/internal/models"
	"testadmin/internal/services"
)

type fakeCatalog struct {
	createQuestionFn func(*models.CreateQuestionRequest, string) (*models.Question, error)
	listQuestionsFn  func(string) ([]models.Question, error)
	bulkFn           func([]string) ([]models.Question, error)
	deleteCategoryFn func(string) error
}

func (f *fakeCatalog) CreateCategory(_ context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	return &models.Category{ID: "cat-1", Name: req.Name}, nil
}
func (f *fakeCatalog) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "cat-1", Name: "Go"}}, nil
}
func (f *fakeCatalog) UpdateCategory(_ context.Context, id string, req *models.CreateCategoryRequest) (*models.Category, error) {
	return &models.Category{ID: id, Name: req.Name}, nil
}
func (f *fakeCatalog) DeleteCategory(_ context.Context, id string) error {
	if f.deleteCategoryFn != nil {
		return f.deleteCategoryFn(id)
	}
	return errNotImplemented
}
func (f *fakeCatalog) CreateQuestion(_ context.Context, req *models.CreateQuestionRequest, createdBy string) (*models.Question, error) {
	if f.createQuestionFn != nil {
		return f.createQuestionFn(req, createdBy)
	}
	return nil, errNotImplemented
}
func (f *fakeCatalog) ListQuestions(_ context.Context, categoryID string) ([]models.Question, error) {
	if f.listQuestionsFn != nil {
		return f.listQuestionsFn(categoryID)
	}
	return []models.Question{}, nil
}
func (f *fakeCatalog) QuestionsByIDs(_ context.Context, ids []string) ([]models.Question, error) {
	if f.bulkFn != nil {
		return f.bulkFn(ids)
	}
	return []models.Question{}, nil
}
func (f *fakeCatalog) UpdateQuestion(_ context.Context, id string, req *models.CreateQuestionRequest) (*models.Question, error) {
	return nil, services.ErrQuestionNotFound
}
func (f *fakeCatalog) DeleteQuestion(context.Context, string) error {
	return services.ErrQuestionNotFound
}

func newCatalogRouter(c handlers.Catalog) *chi.Mux {
	h := handlers.NewCatalogHandler(c, zap.NewNop())
	r := chi.NewRouter()
	r.Use(withPrincipal(&middleware.Principal{ID: "admin-1", Roles: []string{middleware.RoleAdmin}}))
	r.With(middleware.ValidateRequest[*models.CreateCategoryRequest]()).Post("/admin/categories", h.CreateCategoryHandler)
	r.Get("/admin/categories", h.ListCategoriesHandler)
	r.Delete("/admin/categories/{id}", h.DeleteCategoryHandler)
	r.With(middleware.ValidateRequest[*models.CreateQuestionRequest]()).Post("/admin/questions", h.CreateQuestionHandler)
	r.Get("/admin/questions", h.ListQuestionsHandler)
	r.Post("/admin/questions/bulk", h.BulkQuestionsHandler)
	r.With(middleware.ValidateRequest[*models.CreateQuestionRequest]()).Put("/admin/questions/{id}", h.UpdateQuestionHandler)
	r.Delete("/admin/questions/{id}", h.DeleteQuestionHandler)
	return r
}

func TestCreateQuestion_SetsCreatorAndHidesAnswer(t *testing.T) {
	c := &fakeCatalog{createQuestionFn: func(req *models.CreateQuestionRequest, createdBy string) (*models.Question, error) {
		return &models.Question{ID: "q1", Text: req.Text, Options: req.Options, CorrectOptionID: req.CorrectOptionID, CreatedBy: createdBy}, nil
	}}
	r := newCatalogRouter(c)

	body := `{"text":"2+2?","difficulty":"EASY","options":[{"id":"a","text":"4"}],"correctOptionId":"a"}`
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/questions", bytes.NewBufferString(body)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("correctOptionId")) {
		t.Fatalf("correct answer leaked: %s", rr.Body.String())
	}
	var resp struct {
		Data models.Question `json:"data"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Data.CreatedBy != "admin-1" {
		t.Fatalf("expected createdBy admin-1, got %q", resp.Data.CreatedBy)
	}
}

func TestListQuestions_PassesCategoryFilter(t *testing.T) {
	var got string
	r := newCatalogRouter(&fakeCatalog{listQuestionsFn: func(categoryID string) ([]models.Question, error) {
		got = categoryID
		return []models.Question{}, nil
	}})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/questions?categoryId=cat-9", nil))
	if rr.Code != http.StatusOK || got != "cat-9" {
		t.Fatalf("expected 200 with filter cat-9, got %d %q", rr.Code, got)
	}
}

func TestBulkQuestions(t *testing.T) {
	var got []string
	r := newCatalogRouter(&fakeCatalog{bulkFn: func(ids []string) ([]models.Question, error) {
		got = ids
		return []models.Question{{ID: "q1"}}, nil
	}})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/questions/bulk", bytes.NewBufferString(`["q1","q2"]`)))
	if rr.Code != http.StatusOK || len(got) != 2 {
		t.Fatalf("expected 200 with 2 ids, got %d %v", rr.Code, got)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/questions/bulk", bytes.NewBufferString(`{`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", rr.Code)
	}
}

func TestCatalogNotFoundMapping(t *testing.T) {
	r := newCatalogRouter(&fakeCatalog{deleteCategoryFn: func(string) error { return services.ErrCategoryNotFound }})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/admin/categories/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/admin/questions/nope", nil))
	var errResp models.ErrorResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &errResp)
	if rr.Code != http.StatusNotFound || errResp.Code != models.CodeQuestionNotFound {
		t.Fatalf("expected 404 question_not_found, got %d %+v", rr.Code, errResp)
	}
}

func TestCreateCategory_Validation(t *testing.T) {
	r := newCatalogRouter(&fakeCatalog{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/categories", bytes.NewBufferString(`{"name":"  "}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/categories", bytes.NewBufferString(`{"name":"Go"}`)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}
