package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/questiongen/internal/api/shared"
	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/phrazzld/questiongen/internal/materials"
	"github.com/phrazzld/questiongen/internal/platform/logger"
	"github.com/phrazzld/questiongen/internal/task"
)

// MaxUploadBytes bounds multipart document uploads.
const MaxUploadBytes = 20 << 20

// UploadField is the multipart form field carrying the document.
const UploadField = "pdf_file"

// TaskService is the task lifecycle capability the handlers depend on.
type TaskService interface {
	Submit(ctx context.Context, req task.SubmitRequest) (*task.Task, error)
	GetStatus(ctx context.Context, id string) (*task.Task, error)
	GetResult(ctx context.Context, id string) (*task.Task, error)
	List(ctx context.Context, opts task.ListOptions) ([]*task.Task, int, error)
	Delete(ctx context.Context, id string) error
	ActiveCount() int
	Counts() map[task.Status]int
}

// DocumentExtractor turns an uploaded document into materials text and
// reports which kind of document it was.
type DocumentExtractor interface {
	ExtractWithSource(ctx context.Context, r io.ReaderAt, size int64) (string, materials.Source, error)
}

// TaskHandler handles the asynchronous task endpoints.
type TaskHandler struct {
	tasks     TaskService
	extractor DocumentExtractor
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks TaskService, extractor DocumentExtractor) *TaskHandler {
	return &TaskHandler{tasks: tasks, extractor: extractor}
}

// Submit handles POST /tasks/generate.
func (h *TaskHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	t, err := h.tasks.Submit(r.Context(), task.SubmitRequest{
		Materials:    req.Materials,
		NumQuestions: req.Count(),
		Source:       materials.SourceText,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskSubmittedResponse{
		TaskID:  t.ID,
		Status:  t.Status,
		Message: fmt.Sprintf("Task submitted successfully. Use /tasks/%s/status to check progress.", t.ID),
	})
}

// SubmitDocument handles POST /tasks/generate/pdf.
func (h *TaskHandler) SubmitDocument(w http.ResponseWriter, r *http.Request) {
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

	t, err := h.tasks.Submit(r.Context(), task.SubmitRequest{
		Materials:    text,
		NumQuestions: count,
		Source:       source,
		Filename:     filename,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskSubmittedResponse{
		TaskID:  t.ID,
		Status:  t.Status,
		Message: "PDF task submitted successfully. Processed file: " + filename,
	})
}

// GetStatus handles GET /tasks/{task_id}/status.
func (h *TaskHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.GetStatus(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToStatusResponse(t))
}

// GetResult handles GET /tasks/{task_id}/result.
func (h *TaskHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.GetResult(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResultResponse(t))
}

// List handles GET /tasks with optional status and limit query parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var opts task.ListOptions

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := task.ParseStatus(raw)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		opts.Status = &status
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			HandleAPIError(w, r, domain.NewValidationError("limit", "must be a positive integer", domain.ErrValidation), "")
			return
		}
		opts.Limit = limit
	}

	tasks, total, err := h.tasks.List(r.Context(), opts)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := TaskListResponse{
		Tasks:            make([]TaskSummary, 0, len(tasks)),
		Total:            total,
		FilteredByStatus: opts.Status,
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, taskToSummary(t))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Delete handles DELETE /tasks/{task_id}. Only completed or failed tasks
// can be deleted.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "task_id")
	if err := h.tasks.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Task %s deleted successfully", id),
	})
}

// queryQuestionCount reads num_questions from the query string, defaulting
// when absent. Range checks happen in the task manager.
func queryQuestionCount(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("num_questions")
	if raw == "" {
		return domain.DefaultQuestions, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("num_questions", "must be an integer", domain.ErrValidation)
	}
	return n, nil
}

// readUpload extracts text from the multipart upload field.
func readUpload(w http.ResponseWriter, r *http.Request, extractor DocumentExtractor) (string, materials.Source, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", "", "", domain.NewValidationError(UploadField,
				fmt.Sprintf("must be at most %d bytes", MaxUploadBytes), domain.ErrValidation)
		}
		return "", "", "", domain.NewValidationError("body", "must be a multipart form", domain.ErrValidation)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		return "", "", "", domain.NewValidationError(UploadField, "is required", domain.ErrValidation)
	}
	defer func() { _ = file.Close() }()

	filename := uploadName(header)
	text, source, err := extractor.ExtractWithSource(r.Context(), file, header.Size)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}

	logger.FromContext(r.Context()).Info("document processed",
		"filename", filename,
		"source", source,
		"size_bytes", header.Size,
		"text_chars", len([]rune(text)))
	return text, source, filename, nil
}

func uploadName(h *multipart.FileHeader) string {
	name := filepath.Base(strings.ReplaceAll(h.Filename, "\\", "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}
