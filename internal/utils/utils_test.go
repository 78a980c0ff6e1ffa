package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"testadmin/internal/models"

	"go.uber.org/zap/zapcore"
)

func TestOKWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, http.StatusCreated, "done", map[string]string{"id": "t1"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}
	var body struct {
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "done" || body.Data["id"] != "t1" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestErrorWritesCode(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, models.CodeTestNotFound, "missing")

	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusNotFound || body.Code != models.CodeTestNotFound {
		t.Fatalf("unexpected response %d %+v", rec.Code, body)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	logger, err := NewLogger("debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug to be enabled")
	}

	fallback, err := NewLogger("loud")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.Core().Enabled(zapcore.DebugLevel) || !fallback.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info level fallback")
	}
}
