package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"question-bank/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// Table names shared by the hosted and self-hosted stores.
const (
	tableDocuments     = "documents"
	tableTopics        = "topics"
	tableQuestions     = "questions"
	tableJobs          = "processing_jobs"
	tableGeneratedPDFs = "generated_pdfs"
)

func dbClient(c domain.SupabaseClient) (*supabase.Client, error) {
	if c == nil || c.DB() == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}
	return c.DB(), nil
}

// decodeRows unmarshals a PostgREST response body into rows.
func decodeRows[T any](data []byte) ([]T, error) {
	var rows []T
	if len(data) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return rows, nil
}

// stripNUL removes NUL bytes, which Postgres rejects in text columns (22P05).
func stripNUL(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.ReplaceAll(s, "\x00", "")
}

func stripNULPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := stripNUL(*s)
	return &v
}
