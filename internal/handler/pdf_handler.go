package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"question-bank/internal/domain"

	"github.com/gorilla/mux"
)

// PDFHandler serves the topic catalog and generated PDFs.
type PDFHandler struct {
	bank   domain.QuestionBankService
	logger domain.Logger
}

// NewPDFHandler creates a new PDF handler instance
func NewPDFHandler(bank domain.QuestionBankService, logger domain.Logger) *PDFHandler {
	return &PDFHandler{bank: bank, logger: logger}
}

// ListTopics returns the taxonomy rows of a subject.
func (h *PDFHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	subject, ok := domain.ParseSubject(mux.Vars(r)["subject"])
	if !ok {
		writeError(w, http.StatusBadRequest, "subject must be one of: physics, chemistry, biology")
		return
	}
	topics, err := h.bank.ListTopics(r.Context(), subject)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if topics == nil {
		topics = []*domain.Topic{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"topics": topics})
}

// ListQuestions returns the questions filed under a topic.
func (h *PDFHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.bank.ListQuestions(r.Context(), mux.Vars(r)["topicId"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if questions == nil {
		questions = []*domain.Question{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// ListGeneratedPDFs returns every generated PDF record.
func (h *PDFHandler) ListGeneratedPDFs(w http.ResponseWriter, r *http.Request) {
	pdfs, err := h.bank.ListGeneratedPDFs(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if pdfs == nil {
		pdfs = []*domain.GeneratedPDF{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"pdfs": pdfs})
}

// Download streams a generated PDF as an attachment.
func (h *PDFHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	record, err := h.bank.GetGeneratedPDF(ctx, mux.Vars(r)["pdfId"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	rc, err := h.bank.OpenGeneratedPDF(ctx, record)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	if record.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(record.FileSize, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("PDF download interrupted", "pdf_id", record.ID, "error", err)
	}
}
