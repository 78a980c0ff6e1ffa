package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"testadmin/internal/models"
	"testadmin/internal/repositories"

	"go.uber.org/zap"
)

type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	FindAll(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	Update(ctx context.Context, id string, name, description string) (*models.Category, error)
	DeleteByID(ctx context.Context, id string) error
}

type QuestionStore interface {
	Create(ctx context.Context, question *models.Question) error
	FindAll(ctx context.Context, categoryID string) ([]models.Question, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Question, error)
	FindByID(ctx context.Context, id string) (*models.Question, error)
	Save(ctx context.Context, question *models.Question) error
	DeleteByID(ctx context.Context, id string) error
}

// CatalogService manages the category and question bank tests draw from.
type CatalogService struct {
	categories CategoryStore
	questions  QuestionStore
	logger     *zap.Logger
}

func NewCatalogService(categories CategoryStore, questions QuestionStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{categories: categories, questions: questions, logger: logger}
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	category := &models.Category{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.Info("Category created", zap.String("categoryId", category.ID))
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, req *models.CreateCategoryRequest) (*models.Category, error) {
	category, err := s.categories.Update(ctx, id, strings.TrimSpace(req.Name), req.Description)
	if errors.Is(err, repositories.ErrCategoryNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	err := s.categories.DeleteByID(ctx, id)
	if errors.Is(err, repositories.ErrCategoryNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// CreateQuestion stores a question authored by createdBy. The category, when
// given, must exist.
func (s *CatalogService) CreateQuestion(ctx context.Context, req *models.CreateQuestionRequest, createdBy string) (*models.Question, error) {
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	question := &models.Question{CreatedBy: createdBy}
	applyQuestion(question, req)
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	s.logger.Info("Question created", zap.String("questionId", question.ID), zap.String("createdBy", createdBy))
	return question, nil
}

func (s *CatalogService) ListQuestions(ctx context.Context, categoryID string) ([]models.Question, error) {
	questions, err := s.questions.FindAll(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (s *CatalogService) QuestionsByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	questions, err := s.questions.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("bulk questions: %w", err)
	}
	return questions, nil
}

func (s *CatalogService) UpdateQuestion(ctx context.Context, id string, req *models.CreateQuestionRequest) (*models.Question, error) {
	question, err := s.questions.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrQuestionNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	applyQuestion(question, req)
	if err := s.questions.Save(ctx, question); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return question, nil
}

func (s *CatalogService) DeleteQuestion(ctx context.Context, id string) error {
	err := s.questions.DeleteByID(ctx, id)
	if errors.Is(err, repositories.ErrQuestionNotFound) {
		return ErrQuestionNotFound
	}
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

func (s *CatalogService) ensureCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	_, err := s.categories.FindByID(ctx, categoryID)
	if errors.Is(err, repositories.ErrCategoryNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	return nil
}

func applyQuestion(q *models.Question, req *models.CreateQuestionRequest) {
	q.CategoryID = req.CategoryID
	q.Difficulty = models.Difficulty(strings.ToUpper(req.Difficulty))
	q.Text = req.Text
	q.Options = append([]models.Option(nil), req.Options...)
	q.CorrectOptionID = req.CorrectOptionID
}
