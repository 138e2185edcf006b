// Package users serves the community-facing user API: leaderboards,
// public profiles, account administration, and the caller's own
// reports and achievements.
package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	reportstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/reports"
	userstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/users"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/authz"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/httpjson"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/inputval"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/normalize"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/paging"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/timeouts"
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

// Leaderboard bounds.
const (
	DefaultLeaderboardSize = 20
	MaxLeaderboardSize     = 100
)

// PointMilestones are the cumulative-points achievements, in order.
var PointMilestones = []int{100, 500, 1000, 2500, 5000, 10000}

// Handler holds the user feature's dependencies.
type Handler struct {
	Users   *userstore.Store
	Reports *reportstore.Store
	Log     *zap.Logger
}

func NewHandler(users *userstore.Store, reports *reportstore.Store, log *zap.Logger) *Handler {
	return &Handler{Users: users, Reports: reports, Log: log}
}

/* ------------------------------- leaderboard ------------------------------ */

// ServeLeaderboard returns the top active contributors by points.
func (h *Handler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLeaderboardSize
	if raw := query.Get(r, "limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			limit = n
		}
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	top, err := h.Users.Leaderboard(ctx, int64(limit))
	if err != nil {
		h.Log.Error("load leaderboard", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	entries := make([]leaderboardEntry, len(top))
	for i := range top {
		u := &top[i]
		entries[i] = leaderboardEntry{
			Rank:             i + 1,
			Username:         u.Username,
			FullName:         u.FullName(),
			Role:             u.Role,
			Organization:     u.Organization,
			Points:           u.Points,
			ReportsSubmitted: u.ReportsSubmitted,
			ReportsValidated: u.ReportsValidated,
		}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

/* --------------------------------- profile -------------------------------- */

// ServeProfile returns a public profile. Deactivated accounts read as
// not found.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("load profile", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	if !u.IsActive {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"user": toPublicProfile(u)})
}

/* --------------------------------- search --------------------------------- */

// HandleSearch finds active users by name, username, or organization.
// Routes restrict it to the ngo, government, and researcher roles.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := normalize.QueryParam(query.Get(r, "q"))
	if len(q) < 2 {
		httpjson.Error(w, http.StatusBadRequest, "Search query must be at least 2 characters")
		return
	}

	role := normalize.Role(query.Get(r, "role"))
	if role != "" && !authz.IsValidRole(role) {
		httpjson.Error(w, http.StatusBadRequest, "Unknown role filter")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	found, err := h.Users.Search(ctx, q, role, DefaultLeaderboardSize)
	if err != nil {
		h.Log.Error("search users", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "User search failed")
		return
	}

	profiles := make([]publicProfile, len(found))
	for i := range found {
		profiles[i] = toPublicProfile(&found[i])
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"users": profiles})
}

/* ---------------------------------- stats --------------------------------- */

// ServeStats returns the community dashboard numbers: totals by role,
// top contributors, and the newest registrations.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	stats, err := h.Users.Stats(ctx)
	if err != nil {
		h.Log.Error("aggregate user stats", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}

	top, err := h.Users.Leaderboard(ctx, 5)
	if err != nil {
		h.Log.Error("load top contributors", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}
	recent, err := h.Users.Recent(ctx, 5)
	if err != nil {
		h.Log.Error("load recent registrations", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}

	toProfiles := func(us []models.User) []publicProfile {
		out := make([]publicProfile, len(us))
		for i := range us {
			out[i] = toPublicProfile(&us[i])
		}
		return out
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"stats":               stats,
		"topContributors":     toProfiles(top),
		"recentRegistrations": toProfiles(recent),
	})
}

/* ------------------------------ account status ---------------------------- */

// HandleStatus activates or deactivates an account. A validator cannot
// deactivate their own account, and only government users may
// deactivate other validator accounts.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	role, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := httpjson.Decode(r, &req); err != nil || req.IsActive == nil {
		httpjson.Error(w, http.StatusBadRequest, `"isActive" is required`)
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	target, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	if !*req.IsActive {
		if target.ID == callerID {
			httpjson.Error(w, http.StatusBadRequest, "You cannot deactivate your own account")
			return
		}
		if authz.IsAdminRole(target.Role) && role != authz.RoleGovernment {
			httpjson.Error(w, http.StatusForbidden, "Only government users can deactivate validator accounts")
			return
		}
	}

	if err := h.Users.SetActive(ctx, id, *req.IsActive); err != nil {
		h.Log.Error("set account status", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to update account status")
		return
	}

	msg := "Account activated"
	if !*req.IsActive {
		msg = "Account deactivated"
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"message": msg})
}

/* -------------------------------- me/reports ------------------------------ */

// ServeMyReports lists the caller's own reports with an optional status
// filter.
func (h *Handler) ServeMyReports(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	filter := bson.M{"reporter": uid}
	if v := query.Get(r, "status"); models.IsValidStatus(v) {
		filter["status"] = v
	}

	p := paging.Parse(r)
	total, err := h.Reports.Count(ctx, filter)
	if err != nil {
		h.Log.Error("count own reports", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}
	page, err := h.Reports.Find(ctx, filter,
		bson.D{{Key: "created_at", Value: -1}}, p.Skip(), int64(p.Limit))
	if err != nil {
		h.Log.Error("find own reports", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"reports":    page,
		"pagination": paging.BuildMeta(p, len(page), total),
	})
}

/* ------------------------------ me/achievements --------------------------- */

// ServeAchievements reports the caller's points, milestone progress,
// and leaderboard rank.
func (h *Handler) ServeAchievements(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load achievements")
		return
	}

	rank, err := h.Users.RankByPoints(ctx, u.Points)
	if err != nil {
		h.Log.Error("compute rank", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load achievements")
		return
	}

	resp := achievementsResponse{
		Points:           u.Points,
		ReportsSubmitted: u.ReportsSubmitted,
		ReportsValidated: u.ReportsValidated,
		Rank:             rank,
		Achievements:     make([]achievement, len(PointMilestones)),
	}
	for i, m := range PointMilestones {
		resp.Achievements[i] = achievement{Milestone: m, Achieved: u.Points >= m}
		if resp.NextMilestone == nil && u.Points < m {
			next := m
			resp.NextMilestone = &next
		}
	}
	httpjson.Write(w, http.StatusOK, resp)
}

/* --------------------------------- helpers -------------------------------- */

func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	if !inputval.IsValidObjectID(raw) {
		httpjson.Error(w, http.StatusBadRequest, "Invalid user ID")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid user ID")
		return primitive.NilObjectID, false
	}
	return id, true
}
