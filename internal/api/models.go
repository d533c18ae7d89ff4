package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/phrazzld/questiongen/internal/task"
)

// GenerateRequest is the body of POST /tasks/generate and POST /generate.
type GenerateRequest struct {
	Materials    string `json:"materials"     validate:"required"`
	NumQuestions *int   `json:"num_questions" validate:"omitempty,min=1,max=10"`
}

// Count returns the requested number of questions or the default.
func (r GenerateRequest) Count() int {
	if r.NumQuestions == nil {
		return domain.DefaultQuestions
	}
	return *r.NumQuestions
}

// LegacyGenerateRequest is the course-outline request shape accepted by
// POST /generate_questions.
type LegacyGenerateRequest struct {
	CourseOutline     string `json:"course_outline"`
	TextbookMaterials string `json:"textbook_materials"`
	ExamMaterials     string `json:"exam_materials"`
	NumQuestions      *int   `json:"num_questions" validate:"omitempty,min=1,max=10"`
}

// Materials joins the non-empty sections into one materials document.
func (r LegacyGenerateRequest) Materials() string {
	var sections []string
	add := func(title, body string) {
		if strings.TrimSpace(body) != "" {
			sections = append(sections, fmt.Sprintf("%s:\n%s", title, strings.TrimSpace(body)))
		}
	}
	add("Course Outline", r.CourseOutline)
	add("Textbook Materials", r.TextbookMaterials)
	add("Past Exam Materials", r.ExamMaterials)
	return strings.Join(sections, "\n\n")
}

// Count returns the requested number of questions or the default.
func (r LegacyGenerateRequest) Count() int {
	if r.NumQuestions == nil {
		return domain.DefaultQuestions
	}
	return *r.NumQuestions
}

// TaskSubmittedResponse is returned with 202 Accepted after a submission.
type TaskSubmittedResponse struct {
	TaskID  string      `json:"task_id"`
	Status  task.Status `json:"status"`
	Message string      `json:"message"`
}

// TaskStatusResponse is the body of GET /tasks/{task_id}/status.
type TaskStatusResponse struct {
	TaskID       string      `json:"task_id"`
	Status       task.Status `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Progress     string      `json:"progress"`
	ErrorMessage *string     `json:"error_message"`
	ErrorKind    string      `json:"error_kind,omitempty"`
}

// TaskResultResponse is the body of GET /tasks/{task_id}/result.
type TaskResultResponse struct {
	TaskID       string                   `json:"task_id"`
	Status       task.Status              `json:"status"`
	Result       *domain.GenerationResult `json:"result"`
	ErrorMessage *string                  `json:"error_message"`
	CreatedAt    time.Time                `json:"created_at"`
	CompletedAt  *time.Time               `json:"completed_at"`
}

// TaskSummary is one entry of the task list.
type TaskSummary struct {
	TaskID       string      `json:"task_id"`
	Status       task.Status `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Progress     string      `json:"progress"`
	NumQuestions int         `json:"num_questions"`
	Source       string      `json:"source"`
	Filename     *string     `json:"filename"`
}

// TaskListResponse is the body of GET /tasks.
type TaskListResponse struct {
	Tasks            []TaskSummary `json:"tasks"`
	Total            int           `json:"total"`
	FilteredByStatus *task.Status  `json:"filtered_by_status"`
}

// MessageResponse carries a single human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// PDFGenerationResponse is the body of the synchronous PDF endpoint.
type PDFGenerationResponse struct {
	Questions      []domain.QuestionRecord `json:"questions"`
	GenerationTime float64                 `json:"generation_time"`
	Source         string                  `json:"source"`
	Filename       string                  `json:"filename,omitempty"`
}

// ServiceInfoResponse is the body of GET /.
type ServiceInfoResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
	Mode    string `json:"mode"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	ActiveTasks int       `json:"active_tasks"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Status        string         `json:"status"`
	Uptime        float64        `json:"uptime_seconds"`
	UptimeHuman   string         `json:"uptime"`
	Backend       string         `json:"backend"`
	Model         string         `json:"model"`
	MockMode      bool           `json:"mock_mode"`
	ActiveTasks   int            `json:"active_tasks"`
	TasksByStatus map[string]int `json:"tasks_by_status"`
	TotalTasks    int            `json:"total_tasks"`
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func taskToStatusResponse(t *task.Task) TaskStatusResponse {
	return TaskStatusResponse{
		TaskID:       t.ID,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		Progress:     t.Progress,
		ErrorMessage: optionalString(t.ErrorMessage),
		ErrorKind:    string(t.ErrorKind),
	}
}

func taskToResultResponse(t *task.Task) TaskResultResponse {
	return TaskResultResponse{
		TaskID:       t.ID,
		Status:       t.Status,
		Result:       t.Result,
		ErrorMessage: optionalString(t.ErrorMessage),
		CreatedAt:    t.CreatedAt,
		CompletedAt:  t.CompletedAt,
	}
}

func taskToSummary(t *task.Task) TaskSummary {
	return TaskSummary{
		TaskID:       t.ID,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		Progress:     t.Progress,
		NumQuestions: t.NumQuestions,
		Source:       string(t.Source),
		Filename:     optionalString(t.Filename),
	}
}
