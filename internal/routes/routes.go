package routes

import (
	"github.com/acarrillo/tasknest/internal/auth"
	"github.com/acarrillo/tasknest/internal/handlers"
	"github.com/acarrillo/tasknest/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	taskHandler *handlers.TaskHandler,
	tokenManager *auth.TokenManager,
) {
	// Rate limiting config for auth endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/api/signin", authHandler.Signin)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/api/signup", authHandler.Signup)
	router.Post("/api/signout", authHandler.Signout)

	// Protected routes - session token required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))

		r.Get("/api/profile", authHandler.Profile)

		r.Get("/api/tasks", taskHandler.ListTasks)
		r.Post("/api/tasks", taskHandler.CreateTask)
		r.Get("/api/tasks/{id}", taskHandler.GetTask)
		r.Put("/api/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/api/tasks/{id}", taskHandler.DeleteTask)
	})
}
