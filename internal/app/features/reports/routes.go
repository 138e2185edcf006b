package reports

import (
	"github.com/go-chi/chi/v5"

	"github.com/mangrovewatch/mangrovewatch/internal/app/system/auth"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/authz"
)

// Routes builds the report API router. Every route requires a
// signed-in user; finer-grained access is enforced per handler.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandleSubmit)
	r.Get("/", h.HandleList)
	r.Get("/stats/summary", h.ServeStats)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(authz.RoleNGO, authz.RoleGovernment, authz.RoleResearcher))
		r.Get("/stats", h.ServeAdminStats)
	})

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.ServeGet)
		r.Put("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)
		r.Post("/validate", h.HandleValidateAction)
		r.Put("/validate", h.HandleValidateStatus)
	})

	return r
}
