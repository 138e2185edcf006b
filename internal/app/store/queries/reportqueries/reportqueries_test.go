package reportqueries_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mangrovewatch/mangrovewatch/internal/app/store/queries/reportqueries"
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
	"github.com/mangrovewatch/mangrovewatch/internal/testutil"
)

func TestSummarize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reporter := primitive.NewObjectID()
	fixtures.CreateReport(ctx, reporter)
	fixtures.CreateReport(ctx, reporter)
	fixtures.CreateReportWithStatus(ctx, reporter, models.StatusApproved)
	fixtures.CreateReportWithStatus(ctx, primitive.NewObjectID(), models.StatusRejected)

	s, err := reportqueries.Summarize(ctx, db, bson.M{})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	if s.ByStatus[models.StatusPending] != 2 {
		t.Errorf("pending = %d, want 2", s.ByStatus[models.StatusPending])
	}
	if s.ByStatus[models.StatusApproved] != 1 || s.ByStatus[models.StatusRejected] != 1 {
		t.Errorf("ByStatus = %v", s.ByStatus)
	}
	if s.ByCategory[models.CategoryCutting] != 4 {
		t.Errorf("ByCategory = %v", s.ByCategory)
	}
	if len(s.Monthly) == 0 || s.Monthly[0].Count != 4 {
		t.Errorf("Monthly = %v, want a single current-month bucket of 4", s.Monthly)
	}
}

func TestSummarize_Scoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := primitive.NewObjectID()
	fixtures.CreateReport(ctx, mine)
	fixtures.CreateReport(ctx, primitive.NewObjectID())

	s, err := reportqueries.Summarize(ctx, db, bson.M{"reporter": mine})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Total != 1 {
		t.Errorf("scoped Total = %d, want 1", s.Total)
	}
}

func TestSummarizeForAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reporter := primitive.NewObjectID()
	fixtures.CreateReport(ctx, reporter)
	fixtures.CreateReportWithStatus(ctx, reporter, models.StatusUnderInvestigation)

	s, err := reportqueries.SummarizeForAdmin(ctx, db)
	if err != nil {
		t.Fatalf("SummarizeForAdmin failed: %v", err)
	}
	if s.PendingReview != 1 {
		t.Errorf("PendingReview = %d, want 1", s.PendingReview)
	}
	if s.UnderInvestigation != 1 {
		t.Errorf("UnderInvestigation = %d, want 1", s.UnderInvestigation)
	}
}

func TestValidatorActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reporter := fixtures.CreateUser(ctx, "community")
	ngo := fixtures.CreateUser(ctx, "ngo")
	gov := fixtures.CreateUser(ctx, "government")

	decide := func(validator primitive.ObjectID, status string) {
		rpt := fixtures.CreateReportWithStatus(ctx, reporter.ID, status)
		_, err := db.Collection("reports").UpdateByID(ctx, rpt.ID,
			bson.M{"$set": bson.M{"validator": validator}})
		if err != nil {
			t.Fatalf("set validator: %v", err)
		}
	}
	decide(ngo.ID, models.StatusApproved)
	decide(ngo.ID, models.StatusRejected)
	decide(gov.ID, models.StatusApproved)
	fixtures.CreateReport(ctx, reporter.ID) // undecided, no validator

	activity, err := reportqueries.ValidatorActivity(ctx, db)
	if err != nil {
		t.Fatalf("ValidatorActivity failed: %v", err)
	}
	if activity["ngo"] != 2 {
		t.Errorf("ngo decisions = %d, want 2", activity["ngo"])
	}
	if activity["government"] != 1 {
		t.Errorf("government decisions = %d, want 1", activity["government"])
	}
}
