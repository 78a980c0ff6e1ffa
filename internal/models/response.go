package models

const (
	MsgTestCreated         = "Test created successfully"
	MsgTestUpdated         = "Test updated successfully"
	MsgTestDeleted         = "Test deleted successfully"
	MsgTestScheduled       = "Test scheduled successfully"
	MsgCandidatesAssigned  = "Candidates assigned successfully"
	MsgTestsFetched        = "Tests fetched successfully"
	MsgCategoryCreated     = "Category created successfully"
	MsgCategoryUpdated     = "Category updated successfully"
	MsgCategoryDeleted     = "Category deleted successfully"
	MsgCategoriesFetched   = "Categories fetched successfully"
	MsgQuestionCreated     = "Question created successfully"
	MsgQuestionUpdated     = "Question updated successfully"
	MsgQuestionDeleted     = "Question deleted successfully"
	MsgQuestionsFetched    = "Questions fetched successfully"
	MsgResultsFetched      = "Test results fetched successfully"
	MsgHistoryFetched      = "Candidate history fetched successfully"
	MsgValidationFailed    = "Validation failed"
	MsgStartTimeRequired   = "Start time is required to schedule a test"
	MsgUnexpected          = "An unexpected error occurred. Please try again later."
	CodeValidationFailed   = "validation_failed"
	CodeInvalidJSON        = "invalid_json"
	CodePayloadTooLarge    = "payload_too_large"
	CodeInvalidArgument    = "invalid_argument"
	CodeTestNotFound       = "test_not_found"
	CodeCategoryNotFound   = "category_not_found"
	CodeQuestionNotFound   = "question_not_found"
	CodeInternalError      = "internal_error"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeServiceUnavailable = "service_unavailable"
)

// ApiResponse wraps every successful payload.
type ApiResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// uniform error payload
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// a single field error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
