package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"question-bank/internal/domain"
	apperrors "question-bank/pkg/errors"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, http.StatusTeapot, "nope")

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content type application/json, got %s", ct)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"message":"nope"}` {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{&domain.ValidationError{Field: "type", Message: "is required"}, http.StatusBadRequest, "type: is required"},
		{fmt.Errorf("lookup: %w", domain.ErrTopicNotFound), http.StatusNotFound, "lookup: topic not found"},
		{domain.ErrNoTopics, http.StatusBadRequest, "no topics found for subject"},
		{domain.ErrJobFinalized, http.StatusConflict, "processing job already finished"},
		{apperrors.NewValidationError("bad input"), http.StatusBadRequest, "bad input"},
		{apperrors.NewUpstreamError("Storage download failed", errors.New("timeout")), http.StatusBadGateway, "Storage download failed"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		logger := NewMockHandlerLogger()
		rr := httptest.NewRecorder()
		respondError(rr, logger, tt.err)

		if rr.Code != tt.status {
			t.Fatalf("%v: expected status %d, got %d", tt.err, tt.status, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), tt.body) {
			t.Fatalf("%v: unexpected response body: %s", tt.err, rr.Body.String())
		}
		if tt.status == http.StatusInternalServerError && logger.errors != 1 {
			t.Fatalf("%v: expected server error to be logged", tt.err)
		}
	}
}
