package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"question-bank/internal/domain"
	apperrors "question-bank/pkg/errors"

	"github.com/go-pdf/fpdf"
)

type layoutMetrics struct {
	bodySize   float64
	headSize   float64
	lineHeight float64
	gap        float64
}

var layouts = map[string]layoutMetrics{
	domain.LayoutStandard: {bodySize: 11, headSize: 12, lineHeight: 6, gap: 8},
	domain.LayoutCompact:  {bodySize: 9, headSize: 10, lineHeight: 4.5, gap: 4},
}

// FPDFRenderer implements domain.PDFRenderer with go-pdf/fpdf core fonts.
type FPDFRenderer struct {
	logger domain.Logger
}

func NewFPDFRenderer(logger domain.Logger) *FPDFRenderer {
	return &FPDFRenderer{logger: logger}
}

func (r *FPDFRenderer) Render(ctx context.Context, in domain.RenderInput) ([]byte, error) {
	m, ok := layouts[in.Config.Layout]
	if !ok {
		m = layouts[domain.LayoutStandard]
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(in.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", m.headSize+4)
	pdf.MultiCell(0, m.lineHeight+2, tr(in.Title), "", "L", false)
	pdf.SetFont("Arial", "", m.bodySize)
	pdf.MultiCell(0, m.lineHeight, tr(fmt.Sprintf("Subject: %s   Questions: %d", in.Subject, len(in.Questions))), "", "L", false)
	pdf.Ln(m.gap)

	for i, q := range in.Questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.renderQuestion(pdf, tr, m, i+1, q, in.Config)
	}

	if err := pdf.Error(); err != nil {
		return nil, apperrors.NewProcessingError("failed to generate PDF", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.NewProcessingError("failed to generate PDF output", err)
	}
	r.logger.Debug("PDF rendered", "questions", len(in.Questions), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func (r *FPDFRenderer) renderQuestion(pdf *fpdf.Fpdf, tr func(string) string, m layoutMetrics, n int, q *domain.Question, cfg domain.PDFConfig) {
	heading := fmt.Sprintf("Question %d", n)
	if q.QuestionNumber != "" {
		heading += " (" + q.QuestionNumber + ")"
	}
	if q.Marks > 0 {
		heading += fmt.Sprintf("   [%d marks]", q.Marks)
	}
	pdf.SetFont("Arial", "B", m.headSize)
	pdf.MultiCell(0, m.lineHeight, tr(heading), "", "L", false)

	if cfg.IncludeSourceInfo {
		if src := sourceLine(q); src != "" {
			pdf.SetFont("Arial", "I", m.bodySize-1)
			pdf.MultiCell(0, m.lineHeight, tr(src), "", "L", false)
		}
	}

	if cfg.IncludeQuestionText {
		pdf.SetFont("Arial", "", m.bodySize)
		pdf.MultiCell(0, m.lineHeight, tr(q.QuestionText), "", "L", false)
	}

	if cfg.IncludeVectorDiagrams && q.HasVectorDiagram {
		pdf.SetFont("Arial", "I", m.bodySize)
		pdf.SetFillColor(240, 240, 240)
		pdf.MultiCell(0, m.lineHeight*2, tr("[Diagram: see source paper]"), "1", "C", true)
		pdf.SetFillColor(255, 255, 255)
	}

	if cfg.IncludeAnswerSchemes {
		pdf.SetFont("Arial", "", m.bodySize)
		pdf.Ln(m.lineHeight / 2)
		pdf.CellFormat(0, m.lineHeight, tr("Answer:"), "", 1, "L", false, 0, "")
		for i := 0; i < answerLines(q.Marks); i++ {
			pdf.CellFormat(0, m.lineHeight+1, "", "B", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(m.gap)
}

func sourceLine(q *domain.Question) string {
	var parts []string
	if q.PaperYear != "" {
		parts = append(parts, q.PaperYear)
	}
	if q.PaperSession != "" {
		parts = append(parts, q.PaperSession)
	}
	if len(parts) == 0 {
		return ""
	}
	return "Source: " + strings.Join(parts, " ")
}

func answerLines(marks int) int {
	switch {
	case marks < 2:
		return 2
	case marks > 10:
		return 10
	}
	return marks
}
