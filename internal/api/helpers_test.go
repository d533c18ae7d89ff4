package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/phrazzld/questiongen/internal/materials"
	"github.com/phrazzld/questiongen/internal/platform/logger"
	"github.com/phrazzld/questiongen/internal/task"
	"github.com/stretchr/testify/require"
)

const photosynthesis = "Photosynthesis is the process by which green plants use sunlight, " +
	"water and carbon dioxide to produce glucose and oxygen. It takes place in the chloroplasts."

const threeQuestions = `{"questions": [
	{"question": "What is photosynthesis?", "answer": "The process plants use to make glucose from light.", "difficulty": "easy", "topic": "biology"},
	{"question": "Where does photosynthesis take place?", "answer": "In the chloroplasts.", "difficulty": "medium", "topic": "biology"},
	{"question": "Which gas is released?", "answer": "Oxygen.", "difficulty": "easy", "topic": "biology"}
]}`

// fakePDFText is what the stub PDF extractor returns for any PDF upload.
const fakePDFText = "Mitochondria are the powerhouse of the cell."

// testAPI bundles a router over real handlers backed by a task manager and a
// mock model client.
type testAPI struct {
	router  http.Handler
	manager *task.Manager
	client  *generation.MockClient
}

func stubExtractor() materials.Sniffing {
	return materials.Sniffing{
		PDF: materials.ExtractorFunc(func(_ context.Context, _ io.ReaderAt, _ int64) (string, error) {
			return fakePDFText, nil
		}),
	}
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	_, l := logger.NewTestLogger(t)
	return l
}

func newTestAPI(t *testing.T, client *generation.MockClient, cfg task.ManagerConfig) *testAPI {
	t.Helper()
	l := testLogger(t)

	builder, err := generation.NewPromptBuilder("", false)
	require.NoError(t, err)
	svc := generation.NewService(client, builder, l)

	m := task.NewManager(task.NewStore(), svc, cfg, l)
	m.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	})

	extractor := stubExtractor()
	tasks := NewTaskHandler(m, extractor)
	gen := NewGenerateHandler(svc, extractor)
	sys := NewSystemHandler(m, BackendInfo{Backend: "mock", Model: client.Model(), MockMode: true}, time.Now())

	r := chi.NewRouter()
	r.Get("/", sys.Root)
	r.Get("/health", sys.Health)
	r.Get("/stats", sys.Stats)
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", tasks.List)
		r.Post("/generate", tasks.Submit)
		r.Post("/generate/pdf", tasks.SubmitDocument)
		r.Get("/{task_id}/status", tasks.GetStatus)
		r.Get("/{task_id}/result", tasks.GetResult)
		r.Delete("/{task_id}", tasks.Delete)
	})
	r.Post("/generate", gen.Generate)
	r.Post("/generate/pdf", gen.GenerateDocument)
	r.Post("/generate_questions", gen.GenerateLegacy)

	return &testAPI{router: r, manager: m, client: client}
}

func (a *testAPI) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) postJSON(t *testing.T, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	return a.do(t, http.MethodPost, path, &buf, "application/json")
}

func (a *testAPI) upload(t *testing.T, path, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return a.do(t, http.MethodPost, path, &buf, mw.FormDataContentType())
}

// submit posts materials and returns the new task id.
func (a *testAPI) submit(t *testing.T, materialsText string, count int) string {
	t.Helper()
	rec := a.postJSON(t, "/tasks/generate", map[string]interface{}{
		"materials":     materialsText,
		"num_questions": count,
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp TaskSubmittedResponse
	decode(t, rec, &resp)
	return resp.TaskID
}

// waitTerminal polls the status endpoint until the task completes or fails.
func (a *testAPI) waitTerminal(t *testing.T, id string) TaskStatusResponse {
	t.Helper()
	var resp TaskStatusResponse
	require.Eventually(t, func() bool {
		rec := a.do(t, http.MethodGet, "/tasks/"+id+"/status", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &resp)
		return resp.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return resp
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n% stub document\n%%EOF\n")
}

// fakeGenerator is a generation.Generator returning a fixed result or error.
type fakeGenerator struct {
	result *domain.GenerationResult
	err    error

	materials string
	count     int
}

func (g *fakeGenerator) Generate(_ context.Context, materialsText string, count int) (*domain.GenerationResult, error) {
	g.materials = materialsText
	g.count = count
	if g.err != nil {
		return nil, g.err
	}
	return g.result.Clone(), nil
}
