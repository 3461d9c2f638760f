package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"question-bank/internal/domain"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const defaultPageTimeout = 90 * time.Second

// PDFProcessor extracts text from PDFs with go-fitz and inspects structure with pdfcpu.
type PDFProcessor struct {
	logger      domain.Logger
	pageTimeout time.Duration
}

// NewPDFProcessor creates a new PDF processor
func NewPDFProcessor(logger domain.Logger) *PDFProcessor {
	return &PDFProcessor{
		logger:      logger,
		pageTimeout: defaultPageTimeout,
	}
}

// Extract implements domain.ContentExtractor. A file that cannot be opened
// yields a placeholder text instead of an error.
func (p *PDFProcessor) Extract(ctx context.Context, path string) (*domain.ExtractedContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.New(path)
	if err != nil {
		if verr := p.Validate(path); verr != nil {
			err = verr
		}
		p.logger.Warn("Failed to open PDF; storing placeholder", "path", path, "error", err)
		return &domain.ExtractedContent{Text: extractionPlaceholder(err)}, nil
	}
	numPages := doc.NumPage()

	type pageResult struct {
		text string
		err  error
	}

	// The reader goroutine owns doc and closes it only after its last
	// doc.Text call returns.
	results := make(chan pageResult, numPages)
	abort := make(chan struct{})
	defer close(abort)
	go func() {
		defer doc.Close()
		for idx := 0; idx < numPages; idx++ {
			select {
			case <-abort:
				return
			default:
			}
			t, e := doc.Text(idx)
			results <- pageResult{text: t, err: e}
		}
	}()

	pages := make([]string, 0, numPages)
	timer := time.NewTimer(p.pageTimeout)
	defer timer.Stop()

pageLoop:
	for pageNum := 0; pageNum < numPages; pageNum++ {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(p.pageTimeout)

		var res pageResult
		select {
		case res = <-results:
		case <-timer.C:
			p.logger.Warn("Page extraction timed out; keeping earlier pages", "page", pageNum+1, "total", numPages, "timeout", p.pageTimeout)
			break pageLoop
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if res.err != nil {
			p.logger.Warn("Failed to extract text from page", "page", pageNum+1, "total", numPages, "error", res.err)
			continue
		}
		if text := sanitizeText(strings.TrimSpace(res.text)); text != "" {
			pages = append(pages, text)
		}
	}

	pageCount := numPages
	if n, err := p.PageCount(path); err == nil {
		pageCount = n
	}

	return &domain.ExtractedContent{
		Text:      strings.Join(pages, "\n\n"),
		PageCount: pageCount,
	}, nil
}

// PageCount reads the page count from the PDF cross-reference table.
func (p *PDFProcessor) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

// Validate checks the file parses as a PDF in relaxed mode.
func (p *PDFProcessor) Validate(path string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}
	return nil
}

func extractionPlaceholder(err error) string {
	return fmt.Sprintf("%s could not read document: %v", domain.ExtractionErrorPrefix, err)
}

// sanitizeText drops NUL, other control characters and surrogates, keeping tab,
// newline and carriage return.
func sanitizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7F:
		case r >= 0xD800 && r <= 0xDFFF:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
