package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/mangrovewatch/mangrovewatch/internal/app/system/auth"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/authz"
)

// Routes builds the user API router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/leaderboard", h.ServeLeaderboard)
	r.Get("/profile/{id}", h.ServeProfile)
	r.Get("/me/reports", h.ServeMyReports)
	r.Get("/me/achievements", h.ServeAchievements)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(authz.RoleNGO, authz.RoleGovernment, authz.RoleResearcher))
		r.Get("/search", h.HandleSearch)
		r.Get("/stats", h.ServeStats)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(authz.RoleNGO, authz.RoleGovernment))
		r.Put("/{id}/status", h.HandleStatus)
	})

	return r
}
