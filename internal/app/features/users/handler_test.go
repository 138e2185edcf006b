package users

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	reportstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/reports"
	userstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/users"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/indexes"
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
	"github.com/mangrovewatch/mangrovewatch/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	return NewHandler(userstore.New(db), reportstore.New(db), zap.NewNop()), testutil.NewFixtures(t, db)
}

func asTestUser(u models.User) testutil.TestUser {
	return testutil.AsTestUser(u.ID, u.Username, u.Email, u.Role)
}

func TestServeLeaderboard_OrderAndRank(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	low := fx.CreateUserWithPoints(ctx, "community", 10, 1, 0)
	high := fx.CreateUserWithPoints(ctx, "community", 200, 20, 0)
	mid := fx.CreateUserWithPoints(ctx, "ngo", 50, 2, 3)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/users/leaderboard", asTestUser(low))
	rec := testutil.NewRecorder()
	h.ServeLeaderboard(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	body := rec.Body.String()
	hi := strings.Index(body, high.Username)
	mi := strings.Index(body, mid.Username)
	li := strings.Index(body, low.Username)
	if hi < 0 || mi < 0 || li < 0 {
		t.Fatalf("missing leaderboard entries: %s", body)
	}
	if !(hi < mi && mi < li) {
		t.Errorf("leaderboard out of order: %s", body)
	}
	rec.AssertContains(t, `"rank":1`)
}

func TestServeLeaderboard_LimitClamped(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	viewer := fx.CreateUser(ctx, "community")
	fx.CreateUserWithPoints(ctx, "community", 100, 10, 0)
	fx.CreateUserWithPoints(ctx, "community", 50, 5, 0)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/users/leaderboard?limit=1", asTestUser(viewer))
	rec := testutil.NewRecorder()
	h.ServeLeaderboard(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if n := strings.Count(rec.Body.String(), `"rank"`); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
}

func TestServeProfile_PublicFields(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	viewer := fx.CreateUser(ctx, "community")
	target := fx.CreateUserWithPoints(ctx, "ngo", 120, 4, 7)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/users/profile/"+target.ID.Hex(), asTestUser(viewer))
	req = testutil.WithChiURLParam(req, "id", target.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeProfile(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, target.Username)
	rec.AssertContains(t, `"points":120`)
	if strings.Contains(rec.Body.String(), target.Email) {
		t.Error("public profile leaks the email address")
	}
}

func TestServeProfile_InactiveIsNotFound(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	viewer := fx.CreateUser(ctx, "community")
	target := fx.CreateUser(ctx, "community")
	if err := h.Users.SetActive(ctx, target.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/users/profile/"+target.ID.Hex(), asTestUser(viewer))
	req = testutil.WithChiURLParam(req, "id", target.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeProfile(rec, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleSearch_ShortQueryRejected(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ngo := fx.CreateUser(ctx, "ngo")

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/users/search?q=a", asTestUser(ngo))
	rec := testutil.NewRecorder()
	h.HandleSearch(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleSearch_FindsByUsername(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ngo := fx.CreateUser(ctx, "ngo")
	target := fx.CreateUser(ctx, "community")

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/users/search?q="+target.Username, asTestUser(ngo))
	rec := testutil.NewRecorder()
	h.HandleSearch(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, target.Username)
}

func TestServeStats_TotalsAndPanels(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gov := fx.CreateUser(ctx, "government")
	fx.CreateUserWithPoints(ctx, "community", 80, 8, 0)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/users/stats", asTestUser(gov))
	rec := testutil.NewRecorder()
	h.ServeStats(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"totalUsers":2`)
	rec.AssertContains(t, `"topContributors"`)
	rec.AssertContains(t, `"recentRegistrations"`)
}

func TestHandleStatus_CannotDeactivateSelf(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ngo := fx.CreateUser(ctx, "ngo")

	req := testutil.NewAuthenticatedJSONRequest(http.MethodPut,
		"/api/users/"+ngo.ID.Hex()+"/status", `{"isActive": false}`, asTestUser(ngo))
	req = testutil.WithChiURLParam(req, "id", ngo.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleStatus(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "cannot deactivate your own account")
}

func TestHandleStatus_NGOCannotDeactivateValidator(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ngo := fx.CreateUser(ctx, "ngo")
	gov := fx.CreateUser(ctx, "government")

	req := testutil.NewAuthenticatedJSONRequest(http.MethodPut,
		"/api/users/"+gov.ID.Hex()+"/status", `{"isActive": false}`, asTestUser(ngo))
	req = testutil.WithChiURLParam(req, "id", gov.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleStatus(rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleStatus_GovernmentDeactivatesAndReactivates(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gov := fx.CreateUser(ctx, "government")
	target := fx.CreateUser(ctx, "ngo")

	put := func(body string) *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedJSONRequest(http.MethodPut,
			"/api/users/"+target.ID.Hex()+"/status", body, asTestUser(gov))
		req = testutil.WithChiURLParam(req, "id", target.ID.Hex())
		rec := testutil.NewRecorder()
		h.HandleStatus(rec, req)
		return rec
	}

	put(`{"isActive": false}`).AssertStatus(t, http.StatusOK)
	u, err := h.Users.GetByID(ctx, target.ID)
	if err != nil {
		t.Fatalf("reload target: %v", err)
	}
	if u.IsActive {
		t.Error("account still active after deactivation")
	}

	put(`{"isActive": true}`).AssertStatus(t, http.StatusOK)
	u, _ = h.Users.GetByID(ctx, target.ID)
	if !u.IsActive {
		t.Error("account still inactive after reactivation")
	}
}

func TestServeMyReports_FilterAndPaging(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fx.CreateUser(ctx, "community")
	other := fx.CreateUser(ctx, "community")

	fx.CreateReport(ctx, me.ID)
	approved := fx.CreateReportWithStatus(ctx, me.ID, models.StatusApproved)
	foreign := fx.CreateReport(ctx, other.ID)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/users/me/reports?status=approved", asTestUser(me))
	rec := testutil.NewRecorder()
	h.ServeMyReports(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, approved.ID.Hex())
	rec.AssertContains(t, `"totalReports":1`)
	if strings.Contains(rec.Body.String(), foreign.ID.Hex()) {
		t.Error("my-reports listing includes another user's report")
	}
}

func TestServeAchievements_MilestonesAndRank(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fx.CreateUserWithPoints(ctx, "community", 520, 52, 0)
	fx.CreateUserWithPoints(ctx, "community", 900, 90, 0)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/users/me/achievements", asTestUser(me))
	rec := testutil.NewRecorder()
	h.ServeAchievements(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"points":520`)
	rec.AssertContains(t, `"rank":2`)
	rec.AssertContains(t, `"nextMilestone":1000`)
	rec.AssertContains(t, fmt.Sprintf(`{"milestone":%d,"achieved":true}`, 500))
	rec.AssertContains(t, fmt.Sprintf(`{"milestone":%d,"achieved":false}`, 1000))
}
