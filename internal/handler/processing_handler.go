package handler

import (
	"net/http"

	"question-bank/internal/domain"

	"github.com/gorilla/mux"
)

type subjectRequest struct {
	Subject string `json:"subject" validate:"required,oneof=physics chemistry biology"`
}

type generatePDFRequest struct {
	TopicID string            `json:"topicId" validate:"required"`
	Config  *domain.PDFConfig `json:"config"`
}

// ProcessingHandler starts background jobs and reports their state.
type ProcessingHandler struct {
	processingService domain.ProcessingService
	logger            domain.Logger
}

func NewProcessingHandler(processingService domain.ProcessingService, logger domain.Logger) *ProcessingHandler {
	return &ProcessingHandler{processingService: processingService, logger: logger}
}

// ProcessSyllabus starts syllabus analysis for a subject.
func (h *ProcessingHandler) ProcessSyllabus(w http.ResponseWriter, r *http.Request) {
	var req subjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	jobID, err := h.processingService.StartSyllabusAnalysis(r.Context(), domain.Subject(req.Subject))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID})
}

// ProcessPastPapers starts past-paper categorization for a subject.
func (h *ProcessingHandler) ProcessPastPapers(w http.ResponseWriter, r *http.Request) {
	var req subjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	jobID, err := h.processingService.StartPastPaperCategorization(r.Context(), domain.Subject(req.Subject))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID})
}

// GeneratePDF starts output assembly for a topic. Config fields the request
// omits keep their default values.
func (h *ProcessingHandler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	defaults := domain.DefaultPDFConfig()
	req := generatePDFRequest{Config: &defaults}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	config := domain.DefaultPDFConfig()
	if req.Config != nil {
		config = *req.Config
		if config.Layout == "" {
			config.Layout = domain.LayoutStandard
		}
	}

	jobID, err := h.processingService.StartPDFGeneration(r.Context(), req.TopicID, config)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID})
}

// GetJob returns one job for polling.
func (h *ProcessingHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.processingService.GetJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"job": job})
}

// ListActiveJobs returns pending and processing jobs.
func (h *ProcessingHandler) ListActiveJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.processingService.ListActiveJobs(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if jobs == nil {
		jobs = []*domain.ProcessingJob{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}
