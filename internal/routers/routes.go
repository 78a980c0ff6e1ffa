package routers

import (
	"testadmin/internal/handlers"
	"testadmin/internal/middleware"
	"testadmin/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func HealthRoutes(r chi.Router, healthHandler *handlers.HealthHandler) {
	r.Get("/healthz", healthHandler.HealthzHandler)
	r.Get("/readyz", healthHandler.ReadyzHandler)
	r.Handle("/metrics", promhttp.Handler())
}

func TestRoutes(r chi.Router, auth *middleware.Authenticator, testHandler *handlers.TestHandler) {
	r.Route("/admin/tests", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(middleware.RoleAdmin))
			r.Get("/", testHandler.ListTestsHandler)
			r.With(middleware.ValidateRequest[*models.CreateTestRequest]()).Post("/", testHandler.CreateTestHandler)
			r.With(middleware.ValidateRequest[*models.CreateTestRequest]()).Put("/{id}", testHandler.UpdateTestHandler)
			r.Delete("/{id}", testHandler.DeleteTestHandler)
			r.Post("/{id}/schedule", testHandler.ScheduleTestHandler)
			r.With(middleware.ValidateRequest[*models.AssignTestRequest]()).Post("/{id}/assign", testHandler.AssignCandidatesHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleManager, middleware.RoleCandidate))
			r.Get("/{id}", testHandler.GetTestHandler)
			r.Get("/candidate/{candidateId}", testHandler.CandidateTestsHandler)
		})
	})

	r.Route("/candidate/tests", func(r chi.Router) {
		r.Use(auth.Authenticate, middleware.RequireRoles(middleware.RoleCandidate))
		r.Get("/", testHandler.MyTestsHandler)
	})
}

func CatalogRoutes(r chi.Router, auth *middleware.Authenticator, catalogHandler *handlers.CatalogHandler) {
	r.Route("/admin/categories", func(r chi.Router) {
		r.Use(auth.Authenticate, middleware.RequireRoles(middleware.RoleAdmin))
		r.Get("/", catalogHandler.ListCategoriesHandler)
		r.With(middleware.ValidateRequest[*models.CreateCategoryRequest]()).Post("/", catalogHandler.CreateCategoryHandler)
		r.With(middleware.ValidateRequest[*models.CreateCategoryRequest]()).Put("/{id}", catalogHandler.UpdateCategoryHandler)
		r.Delete("/{id}", catalogHandler.DeleteCategoryHandler)
	})

	r.Route("/admin/questions", func(r chi.Router) {
		r.Use(auth.Authenticate, middleware.RequireRoles(middleware.RoleAdmin))
		r.Get("/", catalogHandler.ListQuestionsHandler)
		r.With(middleware.ValidateRequest[*models.CreateQuestionRequest]()).Post("/", catalogHandler.CreateQuestionHandler)
		r.Post("/bulk", catalogHandler.BulkQuestionsHandler)
		r.With(middleware.ValidateRequest[*models.CreateQuestionRequest]()).Put("/{id}", catalogHandler.UpdateQuestionHandler)
		r.Delete("/{id}", catalogHandler.DeleteQuestionHandler)
	})
}

func ResultsRoutes(r chi.Router, auth *middleware.Authenticator, resultsHandler *handlers.ResultsHandler) {
	r.Route("/admin/results", func(r chi.Router) {
		r.Use(auth.Authenticate, middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleManager))
		r.Get("/test/{testId}", resultsHandler.TestResultsHandler)
		r.Get("/candidate/{candidateId}", resultsHandler.CandidateHistoryHandler)
		r.Get("/export", resultsHandler.ExportHandler)
	})
}
