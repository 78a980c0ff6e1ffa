package models

import (
	"strings"
	"time"
)

type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Difficulty string

const (
	Easy   Difficulty = "EASY"
	Medium Difficulty = "MEDIUM"
	Hard   Difficulty = "HARD"
)

// Option is a single answer choice on a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	CategoryID string     `json:"categoryId" gorm:"index;size:36"`
	Difficulty Difficulty `json:"difficulty"`
	Text       string     `json:"text"`
	Options    []Option   `json:"options" gorm:"serializer:json"`
	// kept server side; never rendered to candidates
	CorrectOptionID string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	CreatedBy       string    `json:"createdBy,omitempty"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *CreateCategoryRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ErrorResponse{
			Code:    CodeValidationFailed,
			Message: MsgValidationFailed,
			Details: []ValidationErrorDetail{{Field: "name", Reason: "must not be blank"}},
		}
	}
	return nil
}

type CreateQuestionRequest struct {
	CategoryID      string   `json:"categoryId"`
	Difficulty      string   `json:"difficulty"`
	Text            string   `json:"text"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correctOptionId"`
}

func (r *CreateQuestionRequest) Validate() error {
	var details []ValidationErrorDetail
	if strings.TrimSpace(r.Text) == "" {
		details = append(details, ValidationErrorDetail{Field: "text", Reason: "must not be blank"})
	}
	if r.Difficulty != "" && !ValidDifficulty(r.Difficulty) {
		details = append(details, ValidationErrorDetail{Field: "difficulty", Reason: "must be one of EASY, MEDIUM, HARD"})
	}
	if r.CorrectOptionID != "" {
		found := false
		for _, opt := range r.Options {
			if opt.ID == r.CorrectOptionID {
				found = true
				break
			}
		}
		if !found {
			details = append(details, ValidationErrorDetail{Field: "correctOptionId", Reason: "must reference one of the options"})
		}
	}
	if len(details) > 0 {
		return &ErrorResponse{Code: CodeValidationFailed, Message: MsgValidationFailed, Details: details}
	}
	return nil
}

func ValidDifficulty(d string) bool {
	switch Difficulty(strings.ToUpper(d)) {
	case Easy, Medium, Hard:
		return true
	}
	return false
}
