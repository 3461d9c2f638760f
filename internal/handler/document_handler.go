// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"question-bank/internal/domain"

	"github.com/gorilla/mux"
)

// UploadSaver writes an incoming file to the upload directory.
type UploadSaver interface {
	Save(originalName string, r io.Reader) (domain.UploadedFile, error)
}

// DocumentHandler handles document upload and listing.
type DocumentHandler struct {
	documentService domain.DocumentService
	uploads         UploadSaver
	maxFileSize     int64
	logger          domain.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService domain.DocumentService, uploads UploadSaver, maxFileSize int64, logger domain.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		uploads:         uploads,
		maxFileSize:     maxFileSize,
		logger:          logger,
	}
}

// Upload accepts one or more PDFs under "files" or "files[]" with a
// document type and optional subject. Ingestion continues in the background.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	const maxFiles = 20
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize*maxFiles+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	headers = append(headers, r.MultipartForm.File["files[]"]...)
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "At least one file is required")
		return
	}
	if len(headers) > maxFiles {
		writeError(w, http.StatusBadRequest, "Too many files")
		return
	}

	docType := domain.DocumentType(strings.ToLower(strings.TrimSpace(r.FormValue("type"))))
	if docType == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	if !docType.Valid() {
		writeError(w, http.StatusBadRequest, "type must be one of: syllabus, pastpaper, markingscheme")
		return
	}

	var subject *domain.Subject
	if raw := r.FormValue("subject"); strings.TrimSpace(raw) != "" {
		s, ok := domain.ParseSubject(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "subject must be one of: physics, chemistry, biology")
			return
		}
		subject = &s
	}

	for _, fh := range headers {
		if !isPDF(fh) {
			writeError(w, http.StatusBadRequest, "Only PDF files are allowed: "+filepath.Base(fh.Filename))
			return
		}
		if fh.Size > h.maxFileSize {
			writeError(w, http.StatusBadRequest, "File too large: "+filepath.Base(fh.Filename))
			return
		}
	}

	files := make([]domain.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		uf, err := h.save(fh)
		if err != nil {
			discard(files)
			h.logger.Error("Failed to store upload", err, "filename", fh.Filename)
			writeError(w, http.StatusInternalServerError, "Failed to store upload")
			return
		}
		files = append(files, uf)
	}

	documents, err := h.documentService.Upload(r.Context(), files, docType, subject)
	if err != nil {
		discard(files[len(documents):])
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"documents": documents})
}

func (h *DocumentHandler) save(fh *multipart.FileHeader) (domain.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.UploadedFile{}, err
	}
	defer f.Close()
	return h.uploads.Save(fh.Filename, f)
}

// ListDocuments returns documents filtered by ?type= and ?subject=.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	var filter domain.DocumentFilter
	q := r.URL.Query()
	if raw := q.Get("type"); raw != "" {
		filter.Type = domain.DocumentType(strings.ToLower(raw))
		if !filter.Type.Valid() {
			writeError(w, http.StatusBadRequest, "type must be one of: syllabus, pastpaper, markingscheme")
			return
		}
	}
	if raw := q.Get("subject"); raw != "" {
		s, ok := domain.ParseSubject(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "subject must be one of: physics, chemistry, biology")
			return
		}
		filter.Subject = s
	}

	documents, err := h.documentService.ListDocuments(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if documents == nil {
		documents = []*domain.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": documents})
}

// GetDocument returns one document by id.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documentService.GetDocument(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"document": doc})
}

func isPDF(fh *multipart.FileHeader) bool {
	if strings.ToLower(filepath.Ext(fh.Filename)) == ".pdf" {
		return true
	}
	return fh.Header.Get("Content-Type") == "application/pdf"
}

// discard removes stored uploads that no document will own.
func discard(files []domain.UploadedFile) {
	for _, f := range files {
		_ = os.Remove(f.Path)
	}
}
