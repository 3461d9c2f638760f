package handler

import (
	"net/http"

	"question-bank/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	documentHandler *DocumentHandler,
	processingHandler *ProcessingHandler,
	pdfHandler *PDFHandler,
	allowedOrigins []string,
	logger domain.Logger,
) http.Handler {
	router := mux.NewRouter()
	router.Use(RecoveryMiddleware(logger), LoggingMiddleware(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// Documents
	api.HandleFunc("/upload", documentHandler.Upload).Methods(http.MethodPost)
	api.HandleFunc("/documents", documentHandler.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", documentHandler.GetDocument).Methods(http.MethodGet)

	// Background jobs
	api.HandleFunc("/process-syllabus", processingHandler.ProcessSyllabus).Methods(http.MethodPost)
	api.HandleFunc("/process-pastpapers", processingHandler.ProcessPastPapers).Methods(http.MethodPost)
	api.HandleFunc("/generate-pdf", processingHandler.GeneratePDF).Methods(http.MethodPost)
	api.HandleFunc("/processing-job/{id}", processingHandler.GetJob).Methods(http.MethodGet)
	api.HandleFunc("/processing-jobs", processingHandler.ListActiveJobs).Methods(http.MethodGet)

	// Catalog and outputs
	api.HandleFunc("/topics/{subject}", pdfHandler.ListTopics).Methods(http.MethodGet)
	api.HandleFunc("/questions/{topicId}", pdfHandler.ListQuestions).Methods(http.MethodGet)
	api.HandleFunc("/generated-pdfs", pdfHandler.ListGeneratedPDFs).Methods(http.MethodGet)
	api.HandleFunc("/download-pdf/{pdfId}", pdfHandler.Download).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		MaxAge: 300,
	})

	return c.Handler(router)
}
