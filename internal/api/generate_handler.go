package api

import (
	"net/http"

	"github.com/phrazzld/questiongen/internal/api/shared"
	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/phrazzld/questiongen/internal/materials"
)

// GenerateHandler serves the synchronous generation endpoints. They block
// until the model answers and are kept for existing clients;
// new clients should use the task endpoints.
type GenerateHandler struct {
	generator generation.Generator
	extractor DocumentExtractor
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generator generation.Generator, extractor DocumentExtractor) *GenerateHandler {
	return &GenerateHandler{generator: generator, extractor: extractor}
}

// Generate handles POST /generate.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	markDeprecated(w)

	var req GenerateRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.generator.Generate(r.Context(), req.Materials, req.Count())
	if err != nil {
		HandleAPIError(w, r, err, "Generation failed")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GenerateDocument handles POST /generate/pdf.
func (h *GenerateHandler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	markDeprecated(w)

	count, err := queryQuestionCount(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	text, source, filename, err := readUpload(w, r, h.extractor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to process document")
		return
	}

	result, err := h.generator.Generate(r.Context(), text, count)
	if err != nil {
		HandleAPIError(w, r, err, "Generation failed")
		return
	}

	if source == "" {
		source = materials.SourcePDF
	}
	shared.RespondWithJSON(w, r, http.StatusOK, PDFGenerationResponse{
		Questions:      result.Questions,
		GenerationTime: result.GenerationTime,
		Source:         string(source),
		Filename:       filename,
	})
}

// GenerateLegacy handles POST /generate_questions, which takes the
// course-outline request shape.
func (h *GenerateHandler) GenerateLegacy(w http.ResponseWriter, r *http.Request) {
	markDeprecated(w)

	var req LegacyGenerateRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.generator.Generate(r.Context(), req.Materials(), req.Count())
	if err != nil {
		HandleAPIError(w, r, err, "Generation failed")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

func markDeprecated(w http.ResponseWriter) {
	w.Header().Set("Deprecation", "true")
	w.Header().Set("Link", `</tasks/generate>; rel="successor-version"`)
}
