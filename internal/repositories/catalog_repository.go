package repositories

import (
	"context"
	"errors"
	"time"

	"testadmin/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrQuestionNotFound = errors.New("question not found")
)

type CategoryRepository struct {
	DB *gorm.DB
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Create(category).Error
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := r.DB.WithContext(ctx).Order("created_at asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Update overwrites name and description of an existing category.
func (r *CategoryRepository) Update(ctx context.Context, id string, name, description string) (*models.Category, error) {
	category, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	category.Description = description
	if err := r.DB.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *CategoryRepository) DeleteByID(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

type QuestionRepository struct {
	DB *gorm.DB
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now().UTC()
	}
	return r.DB.WithContext(ctx).Create(question).Error
}

// FindAll lists questions, filtered by category when categoryID is set.
func (r *QuestionRepository) FindAll(ctx context.Context, categoryID string) ([]models.Question, error) {
	questions := []models.Question{}
	query := r.DB.WithContext(ctx).Order("created_at asc")
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if err := query.Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// FindByIDs returns the questions matching ids; unknown ids are skipped.
func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	questions := []models.Question{}
	if len(ids) == 0 {
		return questions, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("created_at asc").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) Save(ctx context.Context, question *models.Question) error {
	return r.DB.WithContext(ctx).Save(question).Error
}

func (r *QuestionRepository) DeleteByID(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Question{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrQuestionNotFound
	}
	return nil
}
