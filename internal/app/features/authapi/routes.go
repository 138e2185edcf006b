// internal/app/features/authapi/routes.go
package authapi

import (
	"github.com/go-chi/chi/v5"

	"github.com/mangrovewatch/mangrovewatch/internal/app/system/auth"
)

// Routes mounts the auth endpoints.
// Typically: r.Mount("/api/auth", authapi.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/profile", h.ServeProfile)
		pr.Put("/profile", h.HandleProfileUpdate)
		pr.Post("/change-password", h.HandleChangePassword)
	})

	return r
}
