package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"question-bank/internal/domain"
	apperrors "question-bank/pkg/errors"

	"github.com/go-playground/validator/v10"
)

const maxJSONBody = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeJSON writes data as a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

// respondError maps service errors onto status codes. Server-side failures
// are logged and reported with a generic message.
func respondError(w http.ResponseWriter, logger domain.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrTopicNotFound),
		errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrGeneratedPDFNotFound),
		errors.Is(err, domain.ErrNoDocuments):
		writeError(w, http.StatusNotFound, apperrors.PublicMessage(err))
	case errors.Is(err, domain.ErrNoTopics),
		errors.Is(err, domain.ErrInvalidFile):
		writeError(w, http.StatusBadRequest, apperrors.PublicMessage(err))
	case errors.Is(err, domain.ErrJobFinalized):
		writeError(w, http.StatusConflict, apperrors.PublicMessage(err))
	default:
		status := apperrors.GetStatusCode(err)
		if apperrors.IsType(err, apperrors.ErrorTypeUpstream) {
			logger.Warn("Upstream dependency failed", "error", err)
			writeError(w, status, apperrors.PublicMessage(err))
			return
		}
		if status >= http.StatusInternalServerError {
			logger.Error("Request failed", err)
			writeError(w, status, "Internal server error")
			return
		}
		writeError(w, status, apperrors.PublicMessage(err))
	}
}

// decodeJSON reads a JSON body into v and runs struct validation.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("Request body is required")
		}
		return apperrors.NewValidationError("Invalid JSON body", err.Error())
	}
	return validateStruct(v)
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("Invalid request", err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperrors.NewValidationError(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s is invalid", field)
}
