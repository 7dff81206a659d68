package main

import (
	"net/http"

	"github.com/advancetodo/api/internal/api"
	apiMiddleware "github.com/advancetodo/api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	// Create a router
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	// The web client is the only browser origin allowed to call the API.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.config.Server.BaseURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{apiMiddleware.TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create API handlers using the application's services
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	healthHandler := api.NewHealthHandler(app.clock)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Task endpoints
			r.Get("/tasks/pending", taskHandler.GetPending)
			r.Get("/tasks", taskHandler.GetForDate)
			r.Patch("/tasks/{id}/tick", taskHandler.Tick)
		})
	})

	// Health check endpoint
	r.Get("/health", healthHandler.Health)

	return r
}
