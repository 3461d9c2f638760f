package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"question-bank/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRenderInput(layout string) domain.RenderInput {
	cfg := domain.DefaultPDFConfig()
	cfg.Layout = layout
	cfg.IncludeAnswerSchemes = true
	return domain.RenderInput{
		Title:     "Kinematics: Projectiles",
		Subject:   domain.SubjectPhysics,
		MainTopic: "Kinematics",
		Subtopic:  strPtr("Projectiles"),
		Questions: []*domain.Question{
			{ID: "1", QuestionNumber: "1(a)", QuestionText: "A ball is thrown at 20 m/s at 30° to the horizontal.", PaperYear: "2019", PaperSession: domain.SessionSummer, Marks: 4, HasVectorDiagram: true},
			{ID: "2", QuestionNumber: "2", QuestionText: "Define displacement.", Marks: 1},
		},
		Config: cfg,
	}
}

func TestFPDFRenderer_Render(t *testing.T) {
	r := NewFPDFRenderer(NewMockLogger())

	for _, layout := range []string{domain.LayoutStandard, domain.LayoutCompact, ""} {
		t.Run("layout "+layout, func(t *testing.T) {
			data, err := r.Render(context.Background(), sampleRenderInput(layout))
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
		})
	}
}

func TestFPDFRenderer_RenderCancelled(t *testing.T) {
	r := NewFPDFRenderer(NewMockLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, sampleRenderInput(domain.LayoutStandard))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPDFProcessor_ReadsRenderedOutput(t *testing.T) {
	data, err := NewFPDFRenderer(NewMockLogger()).Render(context.Background(), sampleRenderInput(domain.LayoutStandard))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, os.WriteFile(path, data, 0644))

	p := NewPDFProcessor(NewMockLogger())
	require.NoError(t, p.Validate(path))

	pages, err := p.PageCount(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pages, 1)

	content, err := p.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "Define displacement.")
	assert.Equal(t, pages, content.PageCount)
}

func writeLongPDF(t *testing.T, questions int) string {
	t.Helper()
	in := sampleRenderInput(domain.LayoutStandard)
	in.Questions = make([]*domain.Question, 0, questions)
	for i := 1; i <= questions; i++ {
		in.Questions = append(in.Questions, &domain.Question{
			ID:           fmt.Sprintf("q%d", i),
			QuestionText: fmt.Sprintf("Describe the forces acting on body %d and state the resultant.", i),
			Marks:        3,
		})
	}
	data, err := NewFPDFRenderer(NewMockLogger()).Render(context.Background(), in)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "long.pdf")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestPDFProcessor_ExtractCancelledMidDocument(t *testing.T) {
	path := writeLongPDF(t, 400)
	p := NewPDFProcessor(NewMockLogger())

	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(i%50)*time.Millisecond)
		content, err := p.Extract(ctx, path)
		cancel()
		if err != nil {
			require.ErrorIs(t, err, context.DeadlineExceeded)
			continue
		}
		require.NotEmpty(t, content.Text)
	}

	content, err := p.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "Question 400")
}

func TestPDFProcessor_ExtractAlreadyCancelled(t *testing.T) {
	path := writeLongPDF(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDFProcessor(NewMockLogger()).Extract(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPDFProcessor_UnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0644))

	p := NewPDFProcessor(NewMockLogger())
	assert.ErrorIs(t, p.Validate(path), domain.ErrInvalidFile)

	content, err := p.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.NoError(t, err)
	assert.True(t, domain.IsExtractionPlaceholder(content.Text))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "a\tb\nc", sanitizeText("a\tb\x00\nc\x07"))
	assert.Equal(t, "héllo", sanitizeText("héllo\x7f"))
}

func TestSourceLineAndAnswerLines(t *testing.T) {
	assert.Equal(t, "Source: 2019 summer", sourceLine(&domain.Question{PaperYear: "2019", PaperSession: "summer"}))
	assert.Equal(t, "", sourceLine(&domain.Question{}))
	assert.Equal(t, 2, answerLines(0))
	assert.Equal(t, 6, answerLines(6))
	assert.Equal(t, 10, answerLines(25))
}
