package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"question-bank/internal/domain"
	apperrors "question-bank/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) do(method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

type uploadPart struct {
	field, filename, body string
}

func multipartRequest(t *testing.T, fields map[string]string, parts ...uploadPart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestNewRouter_Health(t *testing.T) {
	s := newTestServer()
	rr := s.do(http.MethodGet, "/health", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	s := newTestServer()
	rr := s.do(http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Route not found", decodeBody(t, rr)["message"])
}

func TestNewRouter_CORS(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodOptions, "/api/processing-jobs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestUpload_CreatesDocuments(t *testing.T) {
	s := newTestServer()
	req := multipartRequest(t,
		map[string]string{"type": "pastpaper", "subject": "Physics"},
		uploadPart{"files", "2019_s.pdf", "%PDF-1.4 a"},
		uploadPart{"files[]", "2020_w.pdf", "%PDF-1.4 b"},
	)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	body := decodeBody(t, rr)
	docs, ok := body["documents"].([]interface{})
	require.True(t, ok)
	assert.Len(t, docs, 2)

	assert.Equal(t, domain.DocumentTypePastPaper, s.documents.uploadType)
	require.NotNil(t, s.documents.subject)
	assert.Equal(t, domain.SubjectPhysics, *s.documents.subject)
	assert.Equal(t, "%PDF-1.4 a", string(s.uploads.saved["2019_s.pdf"]))
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		parts  []uploadPart
		status int
		msg    string
	}{
		{"no files", map[string]string{"type": "syllabus"}, nil, http.StatusBadRequest, "At least one file is required"},
		{"missing type", nil, []uploadPart{{"files", "a.pdf", "x"}}, http.StatusBadRequest, "type is required"},
		{"bad type", map[string]string{"type": "notes"}, []uploadPart{{"files", "a.pdf", "x"}}, http.StatusBadRequest, "type must be one of"},
		{"bad subject", map[string]string{"type": "syllabus", "subject": "history"}, []uploadPart{{"files", "a.pdf", "x"}}, http.StatusBadRequest, "subject must be one of"},
		{"not a pdf", map[string]string{"type": "syllabus"}, []uploadPart{{"files", "notes.txt", "x"}}, http.StatusBadRequest, "Only PDF files"},
		{"too large", map[string]string{"type": "syllabus"}, []uploadPart{{"files", "big.pdf", strings.Repeat("x", 2<<20)}}, http.StatusBadRequest, "File too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			rr := httptest.NewRecorder()
			s.router.ServeHTTP(rr, multipartRequest(t, tt.fields, tt.parts...))

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, decodeBody(t, rr)["message"], tt.msg)
			assert.Empty(t, s.documents.uploaded)
		})
	}
}

func TestProcessingEndpoints(t *testing.T) {
	s := newTestServer()

	rr := s.do(http.MethodPost, "/api/process-syllabus", `{"subject":"physics"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "job-syllabus", decodeBody(t, rr)["jobId"])
	assert.Equal(t, domain.SubjectPhysics, s.processing.subject)

	rr = s.do(http.MethodPost, "/api/process-pastpapers", `{"subject":"chemistry"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "job-pastpapers", decodeBody(t, rr)["jobId"])
	assert.Equal(t, "pastpapers", s.processing.lastJobKey)

	rr = s.do(http.MethodPost, "/api/generate-pdf", `{"topicId":"t1"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "t1", s.processing.topicID)
	assert.Equal(t, domain.DefaultPDFConfig(), s.processing.config)

	rr = s.do(http.MethodPost, "/api/generate-pdf", `{"topicId":"t1","config":{"includeVectorDiagrams":false,"sortBy":"year_newest","layout":""}}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.False(t, s.processing.config.IncludeVectorDiagrams)
	assert.Equal(t, domain.SortByYearNewest, s.processing.config.SortBy)
	assert.Equal(t, domain.LayoutStandard, s.processing.config.Layout)

	rr = s.do(http.MethodPost, "/api/generate-pdf", `{"topicId":"t1","config":null}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, domain.DefaultPDFConfig(), s.processing.config)
}

func TestGeneratePDF_PartialConfigKeepsDefaults(t *testing.T) {
	s := newTestServer()

	rr := s.do(http.MethodPost, "/api/generate-pdf", `{"topicId":"t1","config":{"sortBy":"difficulty"}}`)
	require.Equal(t, http.StatusAccepted, rr.Code)

	want := domain.DefaultPDFConfig()
	want.SortBy = domain.SortByDifficulty
	assert.Equal(t, want, s.processing.config)
	assert.True(t, s.processing.config.IncludeQuestionText)
	assert.True(t, s.processing.config.IncludeSourceInfo)
	assert.True(t, s.processing.config.IncludeVectorDiagrams)
}

func TestProcessingEndpoints_Validation(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		path, body string
		msg        string
	}{
		{"/api/process-syllabus", `{}`, "subject is required"},
		{"/api/process-syllabus", `{"subject":"history"}`, "subject must be one of: physics, chemistry, biology"},
		{"/api/process-pastpapers", ``, "Request body is required"},
		{"/api/process-pastpapers", `{"subject":`, "Invalid JSON body"},
		{"/api/generate-pdf", `{}`, "topicId is required"},
		{"/api/generate-pdf", `{"topicId":"t1","config":{"layout":"poster"}}`, "layout must be one of: standard, compact"},
	}
	for _, tt := range tests {
		rr := s.do(http.MethodPost, tt.path, tt.body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, tt.path+" "+tt.body)
		assert.Equal(t, tt.msg, decodeBody(t, rr)["message"])
	}
}

func TestProcessingEndpoints_ServiceErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrNoTopics, http.StatusBadRequest},
		{domain.ErrNoDocuments, http.StatusNotFound},
		{domain.ErrTopicNotFound, http.StatusNotFound},
		{apperrors.NewUpstreamError("model down", errors.New("503")), http.StatusBadGateway},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		s := newTestServer()
		s.processing.startErr = tt.err
		rr := s.do(http.MethodPost, "/api/process-pastpapers", `{"subject":"physics"}`)
		assert.Equal(t, tt.status, rr.Code, tt.err.Error())
		assert.NotEmpty(t, decodeBody(t, rr)["message"])
	}
}

func TestJobEndpoints(t *testing.T) {
	s := newTestServer()
	s.processing.jobs["j1"] = &domain.ProcessingJob{ID: "j1", Status: domain.StatusProcessing, Progress: 30}
	s.processing.jobs["j2"] = &domain.ProcessingJob{ID: "j2", Status: domain.StatusCompleted, Progress: 100}

	rr := s.do(http.MethodGet, "/api/processing-job/j1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	job := decodeBody(t, rr)["job"].(map[string]interface{})
	assert.Equal(t, "processing", job["status"])
	assert.Equal(t, float64(30), job["progress"])

	rr = s.do(http.MethodGet, "/api/processing-job/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(http.MethodGet, "/api/processing-jobs", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody(t, rr)["jobs"], 1)
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer()
	s.bank.topics = []*domain.Topic{{ID: "t1", Subject: domain.SubjectBiology, MainTopic: "Cells"}}
	s.bank.questions["t1"] = []*domain.Question{{ID: "q1", TopicID: "t1"}}

	rr := s.do(http.MethodGet, "/api/topics/biology", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody(t, rr)["topics"], 1)

	rr = s.do(http.MethodGet, "/api/topics/physics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []interface{}{}, decodeBody(t, rr)["topics"])

	rr = s.do(http.MethodGet, "/api/topics/history", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodGet, "/api/questions/t1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody(t, rr)["questions"], 1)

	rr = s.do(http.MethodGet, "/api/questions/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDocumentEndpoints(t *testing.T) {
	s := newTestServer()
	s.documents.documents["d1"] = &domain.Document{ID: "d1", Filename: "a.pdf"}

	rr := s.do(http.MethodGet, "/api/documents/d1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "a.pdf", decodeBody(t, rr)["document"].(map[string]interface{})["filename"])

	rr = s.do(http.MethodGet, "/api/documents/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "document not found", decodeBody(t, rr)["message"])

	rr = s.do(http.MethodGet, "/api/documents?type=syllabus&subject=Chemistry", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.DocumentFilter{Type: domain.DocumentTypeSyllabus, Subject: domain.SubjectChemistry}, s.documents.lastFilter)

	rr = s.do(http.MethodGet, "/api/documents?type=essay", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDownloadPDF(t *testing.T) {
	s := newTestServer()
	s.bank.pdfs["p1"] = &domain.GeneratedPDF{ID: "p1", Filename: "physics_forces.pdf", FilePath: "out/p1", FileSize: 8}
	s.bank.files["out/p1"] = []byte("%PDF-1.3")
	s.bank.pdfs["p2"] = &domain.GeneratedPDF{ID: "p2", Filename: "gone.pdf", FilePath: "out/p2"}

	rr := s.do(http.MethodGet, "/api/download-pdf/p1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="physics_forces.pdf"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", rr.Body.String())

	rr = s.do(http.MethodGet, "/api/download-pdf/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(http.MethodGet, "/api/download-pdf/p2", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(http.MethodGet, "/api/generated-pdfs", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody(t, rr)["pdfs"], 2)
}
