package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/questiongen/internal/api"
	apiMiddleware "github.com/phrazzld/questiongen/internal/api/middleware"
	"github.com/phrazzld/questiongen/internal/platform/telemetry"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", apiMiddleware.TraceHeader},
		ExposedHeaders:   []string{apiMiddleware.TraceHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(telemetry.HTTPMiddleware(serviceName))
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	taskHandler := api.NewTaskHandler(app.taskManager, app.extractor)
	generateHandler := api.NewGenerateHandler(app.generator, app.extractor)
	systemHandler := api.NewSystemHandler(app.taskManager, api.BackendInfo{
		Backend:  app.backendName,
		Model:    app.generator.Model(),
		MockMode: app.config.LLM.MockMode,
	}, app.startedAt)

	// Public endpoints
	r.Get("/", systemHandler.Root)
	r.Get("/health", systemHandler.Health)
	r.Get("/stats", systemHandler.Stats)

	// Generation endpoints, protected when a JWT secret is configured
	r.Group(func(r chi.Router) {
		if app.jwtService != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(app.jwtService).Authenticate)
		}

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.Post("/generate", taskHandler.Submit)
			r.Post("/generate/pdf", taskHandler.SubmitDocument)
			r.Get("/{task_id}/status", taskHandler.GetStatus)
			r.Get("/{task_id}/result", taskHandler.GetResult)
			r.Delete("/{task_id}", taskHandler.Delete)
		})

		// Deprecated synchronous endpoints
		r.Post("/generate", generateHandler.Generate)
		r.Post("/generate/pdf", generateHandler.GenerateDocument)
		r.Post("/generate_questions", generateHandler.GenerateLegacy)
	})

	return r
}
