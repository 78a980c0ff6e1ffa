package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"testadmin/internal/models"
	"testadmin/internal/utils"
)

type contextKey string

const validatedRequestKey contextKey = "validated_request"

// MaxRequestBody caps JSON bodies accepted by ValidateRequest.
const MaxRequestBody = 1 << 20

// Validator is implemented by request models.
type Validator interface {
	Validate() error
}

// ValidateRequest decodes the JSON body into a fresh T, runs its Validate
// method and hands the result to next through the request context. Bodies
// that are empty, oversized or followed by trailing data are rejected.
func ValidateRequest[T Validator]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := newRequest[T]()
			if status, code, msg, ok := decodeBody(w, r, req); !ok {
				utils.Error(w, status, code, msg)
				return
			}

			if err := req.Validate(); err != nil {
				var details *models.ErrorResponse
				if errors.As(err, &details) {
					utils.JSON(w, http.StatusBadRequest, *details)
					return
				}
				utils.Error(w, http.StatusBadRequest, models.CodeValidationFailed, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), validatedRequestKey, req)))
		})
	}
}

// newRequest allocates the value a pointer type parameter points to.
func newRequest[T Validator]() T {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ.Kind() == reflect.Ptr {
		return reflect.New(typ.Elem()).Interface().(T)
	}
	return reflect.New(typ).Interface().(T)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) (int, string, string, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBody))
	err := dec.Decode(dst)
	if err == nil && dec.More() {
		err = errors.New("trailing data")
	}

	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return 0, "", "", true
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, models.CodePayloadTooLarge, "Request body too large", false
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, models.CodeInvalidJSON, "Request body is required", false
	default:
		return http.StatusBadRequest, models.CodeInvalidJSON, "Invalid JSON in request body", false
	}
}

// GetValidatedRequest returns the request stored by ValidateRequest, or the
// zero T when the route is not wrapped by it.
func GetValidatedRequest[T any](r *http.Request) T {
	req, _ := r.Context().Value(validatedRequestKey).(T)
	return req
}
