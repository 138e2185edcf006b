package reportstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reports")}
}

var (
	// ErrNotFound is returned when the requested report does not exist.
	ErrNotFound = errors.New("report not found")
	// ErrAlreadyValidated is returned when a validation races against
	// another validator or targets a finalized report.
	ErrAlreadyValidated = errors.New("report has already been validated")
)

// Create inserts a new report. Status, timestamps, and the ID are set
// here; the caller provides everything else already validated.
func (s *Store) Create(ctx context.Context, rpt models.Report) (models.Report, error) {
	rpt.ID = primitive.NewObjectID()
	rpt.Status = models.StatusPending
	if rpt.Severity == "" {
		rpt.Severity = models.SeverityMedium
	}

	now := time.Now()
	rpt.CreatedAt = now
	rpt.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, rpt); err != nil {
		return models.Report{}, err
	}
	return rpt, nil
}

// GetByID loads a report by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	var rpt models.Report
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&rpt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rpt, nil
}

// UpdateFields applies an already-filtered $set document to a report.
// Callers build the set from the editable-field allow list; this layer
// only adds the updated_at stamp.
func (s *Store) UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Report, error) {
	set["updated_at"] = time.Now()

	var rpt models.Report
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rpt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rpt, nil
}

// Delete removes a report.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ValidationUpdate describes the outcome a validator is recording.
// FromPending narrows the conditional filter to reports that have not
// received any decision yet.
type ValidationUpdate struct {
	Status      string
	Validator   primitive.ObjectID
	Notes       string
	FromPending bool
}

// ApplyValidation moves a report out of pending with a conditional
// update: the filter excludes reports already approved or rejected, so
// when two validators race only one write lands. A report under
// investigation stays eligible for a follow-up decision unless the
// caller asked for FromPending.
func (s *Store) ApplyValidation(ctx context.Context, id primitive.ObjectID, upd ValidationUpdate) (*models.Report, error) {
	now := time.Now()
	// Notes always follow the latest decision; an empty value clears
	// any notes left by an earlier investigation.
	set := bson.M{
		"status":           upd.Status,
		"validator":        upd.Validator,
		"validation_notes": upd.Notes,
		"validated_at":     now,
		"updated_at":       now,
	}

	statusCond := bson.M{"$nin": bson.A{models.StatusApproved, models.StatusRejected}}
	if upd.FromPending {
		statusCond = bson.M{"$eq": models.StatusPending}
	}

	var rpt models.Report
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": statusCond},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rpt)
	if err == nil {
		return &rpt, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// No match: either the report is gone or it was already finalized.
	if _, getErr := s.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrAlreadyValidated
}

// Find runs a filtered, sorted, paged list query.
func (s *Store) Find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.Report, error) {
	opts := options.Find().SetSort(sort).SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reports []models.Report
	if err := cur.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Count returns the number of reports matching filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// Collection exposes the raw collection for the aggregation queries
// package.
func (s *Store) Collection() *mongo.Collection {
	return s.c
}
