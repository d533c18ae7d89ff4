package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/questiongen/internal/api/shared"
	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/phrazzld/questiongen/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *domain.GenerationResult {
	return &domain.GenerationResult{
		Questions: []domain.QuestionRecord{
			{Question: "What is a cell?", Answer: "The basic unit of life.", Difficulty: domain.DifficultyEasy, Topic: "biology"},
		},
		GenerationTime: 1.5,
	}
}

func newGenerateRouter(g *fakeGenerator) http.Handler {
	h := NewGenerateHandler(g, stubExtractor())
	r := chi.NewRouter()
	r.Post("/generate", h.Generate)
	r.Post("/generate/pdf", h.GenerateDocument)
	r.Post("/generate_questions", h.GenerateLegacy)
	return r
}

func TestGenerateHandler_Generate(t *testing.T) {
	a := newTestAPI(t, generation.NewMockClient(generation.MockResponse{Text: threeQuestions}), task.DefaultManagerConfig())

	rec := a.postJSON(t, "/generate", map[string]interface{}{"materials": photosynthesis, "num_questions": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "true", rec.Header().Get("Deprecation"))

	var result domain.GenerationResult
	decode(t, rec, &result)
	assert.Len(t, result.Questions, 2)

	rec = a.do(t, http.MethodGet, "/tasks", nil, "")
	var list TaskListResponse
	decode(t, rec, &list)
	assert.Zero(t, list.Total, "synchronous generation creates no task")
}

func TestGenerateHandler_GenerateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		genErr     error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "too many questions",
			body:       `{"materials": "cells", "num_questions": 11}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "num_questions",
		},
		{
			name:       "missing materials",
			body:       `{"num_questions": 2}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "materials",
		},
		{
			name:       "backend failure",
			body:       `{"materials": "cells", "num_questions": 2}`,
			genErr:     fmt.Errorf("%w: upstream 500", generation.ErrGenerationFailed),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to generate questions",
		},
		{
			name:       "content blocked",
			body:       `{"materials": "cells", "num_questions": 2}`,
			genErr:     generation.ErrContentBlocked,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "safety filters",
		},
		{
			name:       "unexpected failure uses fallback",
			body:       `{"materials": "cells", "num_questions": 2}`,
			genErr:     fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Generation failed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newGenerateRouter(&fakeGenerator{result: sampleResult(), err: tc.genErr})
			req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			var body shared.ErrorResponse
			decode(t, rec, &body)
			assert.Contains(t, body.Error, tc.wantMsg)
		})
	}
}

func TestGenerateHandler_GenerateDocument(t *testing.T) {
	gen := &fakeGenerator{result: sampleResult()}
	a := &testAPI{router: newGenerateRouter(gen)}

	rec := a.upload(t, "/generate/pdf?num_questions=3", UploadField, "cells.pdf", pdfBytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PDFGenerationResponse
	decode(t, rec, &resp)
	assert.Equal(t, "pdf", resp.Source)
	assert.Equal(t, "cells.pdf", resp.Filename)
	assert.Len(t, resp.Questions, 1)
	assert.Equal(t, 1.5, resp.GenerationTime)

	assert.Equal(t, fakePDFText, gen.materials)
	assert.Equal(t, 3, gen.count)
}

func TestGenerateHandler_GenerateDocumentRejectsEmptyUpload(t *testing.T) {
	gen := &fakeGenerator{result: sampleResult()}
	a := &testAPI{router: newGenerateRouter(gen)}

	rec := a.upload(t, "/generate/pdf", UploadField, "blank.txt", []byte("  \n "))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, gen.materials, "generator is not called")
}

func TestGenerateHandler_Legacy(t *testing.T) {
	gen := &fakeGenerator{result: sampleResult()}
	a := &testAPI{router: newGenerateRouter(gen)}

	rec := a.postJSON(t, "/generate_questions", map[string]interface{}{
		"course_outline":     "Introduction to cell biology",
		"textbook_materials": "Cells are the basic unit of life.",
		"exam_materials":     "",
		"num_questions":      4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.GenerationResult
	decode(t, rec, &result)
	assert.Len(t, result.Questions, 1)

	assert.Equal(t, 4, gen.count)
	assert.Contains(t, gen.materials, "Course Outline:\nIntroduction to cell biology")
	assert.Contains(t, gen.materials, "Textbook Materials:\nCells are the basic unit of life.")
	assert.NotContains(t, gen.materials, "Past Exam Materials")
}

func TestLegacyGenerateRequest_Materials(t *testing.T) {
	assert.Empty(t, LegacyGenerateRequest{CourseOutline: "  "}.Materials())
	assert.Equal(t, domain.DefaultQuestions, LegacyGenerateRequest{}.Count())

	n := 7
	assert.Equal(t, 7, GenerateRequest{NumQuestions: &n}.Count())
}
