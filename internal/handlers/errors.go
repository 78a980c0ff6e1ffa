package handlers

import (
	"errors"
	"net/http"

	"testadmin/internal/models"
	"testadmin/internal/services"
	"testadmin/internal/utils"

	"go.uber.org/zap"
)

// writeServiceError maps service errors onto the HTTP error taxonomy.
// Unexpected errors are logged and never leak their text.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrTestNotFound):
		utils.Error(w, http.StatusNotFound, models.CodeTestNotFound, "Test not found")
	case errors.Is(err, services.ErrCategoryNotFound):
		utils.Error(w, http.StatusNotFound, models.CodeCategoryNotFound, "Category not found")
	case errors.Is(err, services.ErrQuestionNotFound):
		utils.Error(w, http.StatusNotFound, models.CodeQuestionNotFound, "Question not found")
	case errors.Is(err, services.ErrInvalidArgument):
		utils.Error(w, http.StatusBadRequest, models.CodeInvalidArgument, err.Error())
	default:
		logger.Error("Unexpected error", zap.Error(err))
		utils.Error(w, http.StatusInternalServerError, models.CodeInternalError, models.MsgUnexpected)
	}
}
