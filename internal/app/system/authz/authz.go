// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/mangrovewatch/mangrovewatch/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), username, Mongo ObjectID,
// and a found flag. If no user is present in context or the user ID is
// malformed, it returns "visitor", "", NilObjectID, false. This ensures
// callers can trust that ok=true means a valid, authenticated user with a
// valid ObjectID.
func UserCtx(r *http.Request) (role string, username string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Username, userID, true
}

// HasAnyRole reports whether the current request's user has any of the given
// roles. Returns false if no user is present (i.e., not signed in).
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// Role returns the current user's role (lowercased) and whether a user is
// present.
func Role(r *http.Request) (string, bool) {
	role, _, _, ok := UserCtx(r)
	return role, ok
}

// IsAdmin reports whether the current request's user holds an admin role
// (ngo or government).
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && IsAdminRole(role)
}

// IsCommunity reports whether the current request's user is a community
// reporter.
func IsCommunity(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleCommunity
}

// IsResearcher reports whether the current request's user is a researcher.
func IsResearcher(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleResearcher
}
