package reportstore_test

import (
	"errors"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	reportstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/reports"
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
	"github.com/mangrovewatch/mangrovewatch/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Report{
		Title:       "Oil sheen along the north channel",
		Description: "A visible film of oil spreading between the prop roots at low tide.",
		Category:    models.CategoryPollution,
		Reporter:    primitive.NewObjectID(),
		IsPublic:    true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", created.Status)
	}
	if created.Severity != models.SeverityMedium {
		t.Errorf("severity = %q, want default medium", created.Severity)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, reportstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ApplyValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rpt := fixtures.CreateReport(ctx, primitive.NewObjectID())
	validator := primitive.NewObjectID()

	updated, err := store.ApplyValidation(ctx, rpt.ID, reportstore.ValidationUpdate{
		Status:    models.StatusApproved,
		Validator: validator,
		Notes:     "Verified against satellite imagery",
	})
	if err != nil {
		t.Fatalf("ApplyValidation failed: %v", err)
	}

	if updated.Status != models.StatusApproved {
		t.Errorf("status = %q, want approved", updated.Status)
	}
	if updated.Validator == nil || *updated.Validator != validator {
		t.Error("expected validator to be recorded")
	}
	if updated.ValidatedAt == nil {
		t.Error("expected validated_at to be set")
	}
	if updated.ValidationNotes != "Verified against satellite imagery" {
		t.Errorf("notes = %q", updated.ValidationNotes)
	}
}

func TestStore_ApplyValidation_AlreadyFinalized(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, status := range []string{models.StatusApproved, models.StatusRejected} {
		rpt := fixtures.CreateReportWithStatus(ctx, primitive.NewObjectID(), status)

		_, err := store.ApplyValidation(ctx, rpt.ID, reportstore.ValidationUpdate{
			Status:    models.StatusApproved,
			Validator: primitive.NewObjectID(),
		})
		if !errors.Is(err, reportstore.ErrAlreadyValidated) {
			t.Errorf("status %s: expected ErrAlreadyValidated, got %v", status, err)
		}
	}
}

func TestStore_ApplyValidation_UnderInvestigationRemainsEligible(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rpt := fixtures.CreateReportWithStatus(ctx, primitive.NewObjectID(), models.StatusUnderInvestigation)

	updated, err := store.ApplyValidation(ctx, rpt.ID, reportstore.ValidationUpdate{
		Status:    models.StatusRejected,
		Validator: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("expected under_investigation report to accept a decision, got %v", err)
	}
	if updated.Status != models.StatusRejected {
		t.Errorf("status = %q, want rejected", updated.Status)
	}
}

func TestStore_ApplyValidation_FromPendingRefusesInvestigated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rpt := fixtures.CreateReportWithStatus(ctx, primitive.NewObjectID(), models.StatusUnderInvestigation)

	_, err := store.ApplyValidation(ctx, rpt.ID, reportstore.ValidationUpdate{
		Status:      models.StatusApproved,
		Validator:   primitive.NewObjectID(),
		FromPending: true,
	})
	if !errors.Is(err, reportstore.ErrAlreadyValidated) {
		t.Errorf("expected ErrAlreadyValidated, got %v", err)
	}
}

func TestStore_ApplyValidation_NotesFollowLatestDecision(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rpt := fixtures.CreateReport(ctx, primitive.NewObjectID())

	if _, err := store.ApplyValidation(ctx, rpt.ID, reportstore.ValidationUpdate{
		Status:    models.StatusUnderInvestigation,
		Validator: primitive.NewObjectID(),
		Notes:     "needs a drone pass",
	}); err != nil {
		t.Fatalf("first ApplyValidation failed: %v", err)
	}

	updated, err := store.ApplyValidation(ctx, rpt.ID, reportstore.ValidationUpdate{
		Status:    models.StatusApproved,
		Validator: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("second ApplyValidation failed: %v", err)
	}
	if updated.ValidationNotes != "" {
		t.Errorf("notes = %q, want cleared with the new decision", updated.ValidationNotes)
	}
}

func TestStore_ApplyValidation_MissingReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.ApplyValidation(ctx, primitive.NewObjectID(), reportstore.ValidationUpdate{
		Status:    models.StatusApproved,
		Validator: primitive.NewObjectID(),
	})
	if !errors.Is(err, reportstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ApplyValidation_RaceAllowsOneWinner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rpt := fixtures.CreateReport(ctx, primitive.NewObjectID())

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.ApplyValidation(ctx, rpt.ID, reportstore.ValidationUpdate{
				Status:    models.StatusApproved,
				Validator: primitive.NewObjectID(),
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, reportstore.ErrAlreadyValidated):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}

func TestStore_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rpt := fixtures.CreateReport(ctx, primitive.NewObjectID())

	updated, err := store.UpdateFields(ctx, rpt.ID, bson.M{
		"title":    "Corrected title for the incident",
		"severity": models.SeverityHigh,
	})
	if err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}
	if updated.Title != "Corrected title for the incident" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Severity != models.SeverityHigh {
		t.Errorf("severity = %q, want high", updated.Severity)
	}
	if !updated.UpdatedAt.After(rpt.UpdatedAt) {
		t.Error("expected updated_at to advance")
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rpt := fixtures.CreateReport(ctx, primitive.NewObjectID())

	if err := store.Delete(ctx, rpt.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, rpt.ID); !errors.Is(err, reportstore.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestStore_FindAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reporter := primitive.NewObjectID()
	for i := 0; i < 5; i++ {
		fixtures.CreateReport(ctx, reporter)
	}
	fixtures.CreateReport(ctx, primitive.NewObjectID())

	filter := bson.M{"reporter": reporter}
	total, err := store.Count(ctx, filter)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != 5 {
		t.Errorf("Count = %d, want 5", total)
	}

	page, err := store.Find(ctx, filter, bson.D{{Key: "created_at", Value: -1}}, 0, 3)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(page) != 3 {
		t.Errorf("page size = %d, want 3", len(page))
	}

	rest, err := store.Find(ctx, filter, bson.D{{Key: "created_at", Value: -1}}, 3, 3)
	if err != nil {
		t.Fatalf("Find (second page) failed: %v", err)
	}
	if len(rest) != 2 {
		t.Errorf("second page size = %d, want 2", len(rest))
	}
}
