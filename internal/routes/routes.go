package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck-backend/internal/handlers"
)

// SetupRoutes registers the user and task resources. authGate is the
// authentication middleware applied to every protected route.
func SetupRoutes(r chi.Router, authGate func(http.Handler) http.Handler) {
	// Public routes
	r.Post("/users", handlers.Register)
	r.Post("/users/login", handlers.Login)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authGate)

		r.Get("/users/logout", handlers.Logout)
		r.Get("/users/logoutAll", handlers.LogoutAll)
		r.Get("/users", handlers.GetProfile)
		r.Patch("/users", handlers.UpdateProfile)
		r.Delete("/users", handlers.DeleteUser)

		r.Post("/users/avatar", handlers.UploadAvatar)
		r.Get("/users/avatar", handlers.GetAvatar)
		r.Delete("/users/avatar", handlers.DeleteAvatar)

		r.Post("/tasks", handlers.CreateTask)
		r.Get("/tasks", handlers.ListTasks)
		r.Get("/tasks/{id}", handlers.GetTask)
		r.Patch("/tasks/{id}", handlers.UpdateTask)
		r.Delete("/tasks/{id}", handlers.DeleteTask)
	})
}
