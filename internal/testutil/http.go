package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mangrovewatch/mangrovewatch/internal/app/system/auth"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID       string
	Username string
	Email    string
	Role     string
}

// CommunityUser returns a TestUser with the community role.
func CommunityUser() TestUser {
	return TestUser{
		ID:       primitive.NewObjectID().Hex(),
		Username: "test_community",
		Email:    "community@test.com",
		Role:     "community",
	}
}

// NGOUser returns a TestUser with the ngo role.
func NGOUser() TestUser {
	return TestUser{
		ID:       primitive.NewObjectID().Hex(),
		Username: "test_ngo",
		Email:    "ngo@test.com",
		Role:     "ngo",
	}
}

// GovernmentUser returns a TestUser with the government role.
func GovernmentUser() TestUser {
	return TestUser{
		ID:       primitive.NewObjectID().Hex(),
		Username: "test_government",
		Email:    "government@test.com",
		Role:     "government",
	}
}

// ResearcherUser returns a TestUser with the researcher role.
func ResearcherUser() TestUser {
	return TestUser{
		ID:       primitive.NewObjectID().Hex(),
		Username: "test_researcher",
		Email:    "researcher@test.com",
		Role:     "researcher",
	}
}

// AsTestUser converts a fixture user into the session shape handlers see.
func AsTestUser(id primitive.ObjectID, username, email, role string) TestUser {
	return TestUser{ID: id.Hex(), Username: username, Email: email, Role: role}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}

// NewJSONRequest creates a request carrying a JSON body.
func NewJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, io.NopCloser(strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedJSONRequest creates a JSON request with a user in context.
func NewAuthenticatedJSONRequest(method, target, body string, user TestUser) *http.Request {
	return WithUser(NewJSONRequest(method, target, body), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
