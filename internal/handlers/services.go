package handlers

import (
	"context"

	"testadmin/internal/clients"
	"testadmin/internal/models"
)

// TestManager captures the test lifecycle operations required by handlers.
type TestManager interface {
	CreateTest(ctx context.Context, req *models.CreateTestRequest) (*models.Test, error)
	FindByID(ctx context.Context, id string) (*models.Test, error)
	FindAll(ctx context.Context) ([]*models.Test, error)
	UpdateTest(ctx context.Context, id string, req *models.CreateTestRequest) (*models.Test, error)
	DeleteTest(ctx context.Context, id string) error
	Schedule(ctx context.Context, id string) (*models.Test, error)
	AssignCandidates(ctx context.Context, id string, candidateIDs []string, bearerToken string) (*models.Test, error)
	GetTestsForCandidate(ctx context.Context, candidateID string) ([]*models.Test, error)
}

// Catalog captures the category and question operations required by handlers.
type Catalog interface {
	CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id string, req *models.CreateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CreateQuestion(ctx context.Context, req *models.CreateQuestionRequest, createdBy string) (*models.Question, error)
	ListQuestions(ctx context.Context, categoryID string) ([]models.Question, error)
	QuestionsByIDs(ctx context.Context, ids []string) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, id string, req *models.CreateQuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}

// ResultsSource captures the read-only results queries required by handlers.
type ResultsSource interface {
	ResultsForTest(ctx context.Context, testID, bearerToken string) []clients.Result
	HistoryForCandidate(ctx context.Context, candidateID, bearerToken string) []clients.Result
	ExportCSV(ctx context.Context, testID, bearerToken string) string
}
