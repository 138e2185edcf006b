package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/mangrovewatch/mangrovewatch/internal/app/system/auth"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testUserID returns a valid ObjectID hex string for tests.
func testUserID() string {
	return primitive.NewObjectID().Hex()
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	role, _, id, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false on a bare request")
	}
	if role != "visitor" {
		t.Errorf("role: got %q, want %q", role, "visitor")
	}
	if id != primitive.NilObjectID {
		t.Error("expected NilObjectID when no user is present")
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-an-objectid", Role: "ngo"})

	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected ok=false for a malformed session user ID")
	}
}

func TestUserCtx_NormalizesRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: testUserID(), Role: "Government"})

	role, _, _, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected a valid user")
	}
	if role != "government" {
		t.Errorf("role: got %q, want lowercased %q", role, "government")
	}
}

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    bool
	}{
		{"ngo allowed for admin set", "ngo", []string{"ngo", "government"}, true},
		{"government allowed for admin set", "government", []string{"ngo", "government"}, true},
		{"community denied for admin set", "community", []string{"ngo", "government"}, false},
		{"researcher allowed for stats set", "researcher", []string{"ngo", "government", "researcher"}, true},
		{"case-insensitive match", "NGO", []string{"ngo"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req = auth.WithTestUser(req, &auth.SessionUser{ID: testUserID(), Role: tt.role})
			if got := authz.HasAnyRole(req, tt.allowed...); got != tt.want {
				t.Errorf("HasAnyRole(%q, %v) = %v, want %v", tt.role, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestHasAnyRole_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	if authz.HasAnyRole(req, "ngo", "government") {
		t.Error("expected false when no user is signed in")
	}
}

func TestIsAdmin(t *testing.T) {
	for role, want := range map[string]bool{
		"ngo":        true,
		"government": true,
		"community":  false,
		"researcher": false,
	} {
		req := httptest.NewRequest("GET", "/test", nil)
		req = auth.WithTestUser(req, &auth.SessionUser{ID: testUserID(), Role: role})
		if got := authz.IsAdmin(req); got != want {
			t.Errorf("IsAdmin(%q) = %v, want %v", role, got, want)
		}
	}
}

func TestIsAdminRole(t *testing.T) {
	if !authz.IsAdminRole("ngo") || !authz.IsAdminRole("government") {
		t.Error("ngo and government are admin roles")
	}
	if authz.IsAdminRole("community") || authz.IsAdminRole("researcher") {
		t.Error("community and researcher are not admin roles")
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"community", "ngo", "government", "researcher"} {
		if !authz.IsValidRole(role) {
			t.Errorf("expected %q to be a valid role", role)
		}
	}
	for _, role := range []string{"", "admin", "superadmin", "Community"} {
		if authz.IsValidRole(role) {
			t.Errorf("expected %q to be rejected", role)
		}
	}
}
