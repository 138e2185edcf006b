package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db  *mongo.Database
	t   *testing.T
	seq int
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// TestPassword is the plaintext behind every fixture user's hash.
const TestPassword = "test-password"

var testHash, _ = bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)

// CreateUser inserts an active user with the given role and returns it.
// Username and email are unique per call within one Fixtures instance.
func (f *Fixtures) CreateUser(ctx context.Context, role string) models.User {
	f.t.Helper()
	f.seq++

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     fmt.Sprintf("%s_user_%d", role, f.seq),
		Email:        fmt.Sprintf("%s%d@test.com", role, f.seq),
		PasswordHash: string(testHash),
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateUserWithPoints inserts an active user carrying the given
// gamification counters.
func (f *Fixtures) CreateUserWithPoints(ctx context.Context, role string, points, submitted, validated int) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, role)
	_, err := f.db.Collection("users").UpdateOne(ctx,
		primitiveIDFilter(u.ID),
		map[string]any{"$set": map[string]any{
			"points":            points,
			"reports_submitted": submitted,
			"reports_validated": validated,
		}})
	if err != nil {
		f.t.Fatalf("failed to set test user points: %v", err)
	}
	u.Points = points
	u.ReportsSubmitted = submitted
	u.ReportsValidated = validated
	return u
}

// CreateReport inserts a pending public report owned by reporter.
func (f *Fixtures) CreateReport(ctx context.Context, reporter primitive.ObjectID) models.Report {
	f.t.Helper()
	f.seq++

	now := time.Now().UTC()
	rpt := models.Report{
		ID:          primitive.NewObjectID(),
		Title:       fmt.Sprintf("Test report %d", f.seq),
		Description: "A stretch of mangrove cleared overnight along the north bank.",
		Category:    models.CategoryCutting,
		Severity:    models.SeverityMedium,
		Status:      models.StatusPending,
		Reporter:    reporter,
		IsPublic:    true,
		Location: models.ReportLocation{
			Coordinates: models.Coordinates{Latitude: 1.29, Longitude: 103.85},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("reports").InsertOne(ctx, rpt); err != nil {
		f.t.Fatalf("failed to create test report: %v", err)
	}
	return rpt
}

// CreateReportWithStatus inserts a report in the given status.
func (f *Fixtures) CreateReportWithStatus(ctx context.Context, reporter primitive.ObjectID, status string) models.Report {
	f.t.Helper()

	rpt := f.CreateReport(ctx, reporter)
	_, err := f.db.Collection("reports").UpdateOne(ctx,
		primitiveIDFilter(rpt.ID),
		map[string]any{"$set": map[string]any{"status": status}})
	if err != nil {
		f.t.Fatalf("failed to set test report status: %v", err)
	}
	rpt.Status = status
	return rpt
}

func primitiveIDFilter(id primitive.ObjectID) map[string]any {
	return map[string]any{"_id": id}
}
