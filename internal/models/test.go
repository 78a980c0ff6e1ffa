package models

import "time"

// Test is a timed assessment with a candidate roster and a lifecycle window.
type Test struct {
	ID                 string     `json:"id" bson:"_id"`
	Name               string     `json:"name" bson:"name"`
	Description        string     `json:"description,omitempty" bson:"description,omitempty"`
	CategoryIDs        []string   `json:"categoryIds,omitempty" bson:"categoryIds,omitempty"`
	QuestionIDs        []string   `json:"questionIds,omitempty" bson:"questionIds,omitempty"`
	DurationMinutes    int        `json:"durationMinutes" bson:"durationMinutes"`
	StartAt            *time.Time `json:"startAt,omitempty" bson:"startAt,omitempty"`
	EndAt              *time.Time `json:"endAt,omitempty" bson:"endAt,omitempty"`
	AssignedCandidates []string   `json:"assignedCandidates" bson:"assignedCandidates"`

	// Scheduled flips once timers have been armed at least once and never goes back.
	Scheduled bool `json:"scheduled" bson:"scheduled"`
	Active    bool `json:"active" bson:"active"`
}

// Clone returns a deep copy so stores never share slices or time pointers with callers.
func (t *Test) Clone() *Test {
	if t == nil {
		return nil
	}
	out := *t
	out.CategoryIDs = cloneStrings(t.CategoryIDs)
	out.QuestionIDs = cloneStrings(t.QuestionIDs)
	out.AssignedCandidates = cloneStrings(t.AssignedCandidates)
	out.StartAt = cloneTime(t.StartAt)
	out.EndAt = cloneTime(t.EndAt)
	return &out
}

// HasCandidates reports whether anyone is assigned to the test.
func (t *Test) HasCandidates() bool {
	return len(t.AssignedCandidates) > 0
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneTime(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	v := in.UTC()
	return &v
}

// UTCPtr normalises an optional instant to UTC.
func UTCPtr(in *time.Time) *time.Time {
	return cloneTime(in)
}

// CreateTestRequest is the body for creating or fully replacing a test.
type CreateTestRequest struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	CategoryIDs     []string   `json:"categoryIds"`
	QuestionIDs     []string   `json:"questionIds"`
	DurationMinutes int        `json:"durationMinutes"`
	StartAt         *time.Time `json:"startAt"`
	EndAt           *time.Time `json:"endAt"`
}

// implements the Validator interface
func (r *CreateTestRequest) Validate() error {
	var details []ValidationErrorDetail
	if r.Name == "" {
		details = append(details, ValidationErrorDetail{Field: "name", Reason: "must not be blank"})
	}
	if r.DurationMinutes < 1 {
		details = append(details, ValidationErrorDetail{Field: "durationMinutes", Reason: "must be at least 1"})
	}
	// endAt without startAt is accepted; it only matters once the test is scheduled
	if r.StartAt != nil && r.EndAt != nil && !r.EndAt.After(*r.StartAt) {
		details = append(details, ValidationErrorDetail{Field: "endAt", Reason: "must be after startAt"})
	}
	if len(details) > 0 {
		return &ErrorResponse{
			Code:    CodeValidationFailed,
			Message: MsgValidationFailed,
			Details: details,
		}
	}
	return nil
}

// AssignTestRequest carries the candidate ids to merge into a test roster.
type AssignTestRequest struct {
	CandidateIDs []string `json:"candidateIds"`
}

func (r *AssignTestRequest) Validate() error {
	if len(r.CandidateIDs) == 0 {
		return &ErrorResponse{
			Code:    CodeValidationFailed,
			Message: MsgValidationFailed,
			Details: []ValidationErrorDetail{{Field: "candidateIds", Reason: "must not be empty"}},
		}
	}
	for _, id := range r.CandidateIDs {
		if id == "" {
			return &ErrorResponse{
				Code:    CodeValidationFailed,
				Message: MsgValidationFailed,
				Details: []ValidationErrorDetail{{Field: "candidateIds", Reason: "must not contain blank ids"}},
			}
		}
	}
	return nil
}
