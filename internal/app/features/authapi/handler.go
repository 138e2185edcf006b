// Package authapi serves registration, login, and profile management
// for the JSON API.
package authapi

import (
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	loginstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/logins"
	userstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/users"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/auth"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/httpjson"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/inputval"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/timeouts"
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

// Handler holds the auth feature's dependencies.
type Handler struct {
	Users  *userstore.Store
	Logins *loginstore.Store
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, logins *loginstore.Store, log *zap.Logger) *Handler {
	return &Handler{Users: users, Logins: logins, Log: log}
}

// HandleRegister creates an account and signs the new user in.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.FieldErrors(w, res.ByField())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	created, err := h.Users.Create(ctx, models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		Organization: req.Organization,
		Location:     req.Location,
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		httpjson.Error(w, http.StatusConflict, "A user with this email already exists")
		return
	case errors.Is(err, userstore.ErrDuplicateUsername):
		httpjson.Error(w, http.StatusConflict, "A user with this username already exists")
		return
	case err != nil:
		h.Log.Error("create user", zap.Error(err))
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := auth.SignIn(w, r, sessionUser(&created)); err != nil {
		h.Log.Error("sign in after register", zap.Error(err))
	}

	h.Log.Info("user registered",
		zap.String("user_id", created.ID.Hex()),
		zap.String("role", created.Role))
	httpjson.Write(w, http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"user":    toUserResponse(&created),
	})
}

// HandleLogin verifies credentials and opens a session.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.FieldErrors(w, res.ByField())
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.Log.Error("lookup user for login", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if !u.IsActive {
		httpjson.Error(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := auth.SignIn(w, r, sessionUser(u)); err != nil {
		h.Log.Error("save session", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Login failed")
		return
	}

	now := time.Now().UTC()
	if err := h.Users.SetLastLogin(ctx, u.ID, now); err != nil {
		h.Log.Warn("stamp last login", zap.Error(err))
	}
	if err := h.Logins.CreateFrom(ctx, r, u.ID); err != nil {
		h.Log.Warn("record login", zap.Error(err))
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    toUserResponse(u),
	})
}

// HandleLogout tears the session down.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := auth.SignOut(w, r); err != nil {
		h.Log.Warn("sign out", zap.Error(err))
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// ServeProfile returns the signed-in user's account.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"user": toUserResponse(u)})
}

// HandleProfileUpdate edits the signed-in user's profile fields. Role,
// email, and username cannot be changed here.
func (h *Handler) HandleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req profileUpdateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.FieldErrors(w, res.ByField())
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	err := h.Users.UpdateProfile(ctx, uid, userstore.ProfileUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Organization: req.Organization,
		Location:     req.Location,
	})
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("update profile", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Profile update failed")
		return
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Profile update failed")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{
		"message": "Profile updated",
		"user":    toUserResponse(u),
	})
}

// HandleChangePassword verifies the current password before storing a
// new hash.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req changePasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.FieldErrors(w, res.ByField())
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)) != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("hash new password", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Password change failed")
		return
	}
	if err := h.Users.ChangePassword(ctx, uid, string(hash)); err != nil {
		h.Log.Error("store new password", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Password change failed")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]string{"message": "Password changed"})
}

func sessionUser(u *models.User) *auth.SessionUser {
	return &auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

func currentUserID(r *http.Request) (primitive.ObjectID, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
