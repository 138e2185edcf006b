// Package lifecycle implements the report workflow: submission,
// validation, update, and deletion, together with the point awards
// each step triggers. Handlers never touch the counter ledger
// directly; every award and reversal goes through here so the
// user counters and report state move together.
package lifecycle

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	reportstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/reports"
	userstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/users"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/txn"
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

// Point values for the gamification ledger.
const (
	SubmitPoints  = 10
	ApprovePoints = 50
)

// Engine coordinates the stores involved in a report's life.
type Engine struct {
	db      *mongo.Database
	reports *reportstore.Store
	users   *userstore.Store
	photos  storage.Store
	log     *zap.Logger
}

// New wires an Engine. photos may be nil in tests that never touch
// uploads.
func New(db *mongo.Database, reports *reportstore.Store, users *userstore.Store, photos storage.Store, log *zap.Logger) *Engine {
	return &Engine{db: db, reports: reports, users: users, photos: photos, log: log}
}

// Reports exposes the report store for read paths.
func (e *Engine) Reports() *reportstore.Store { return e.reports }

// Users exposes the user store for read paths.
func (e *Engine) Users() *userstore.Store { return e.users }

// Submit persists a new report and awards the submission points to its
// reporter. Both writes run in one transaction where the deployment
// supports them.
func (e *Engine) Submit(ctx context.Context, rpt models.Report) (models.Report, error) {
	var created models.Report
	err := txn.Run(ctx, e.db.Client(), e.log, func(ctx context.Context) error {
		var err error
		created, err = e.reports.Create(ctx, rpt)
		if err != nil {
			return err
		}
		return e.users.ApplyCounterDelta(ctx, rpt.Reporter, userstore.CounterDelta{
			Points:           SubmitPoints,
			ReportsSubmitted: 1,
		}, "report_submitted")
	})
	if err != nil {
		return models.Report{}, err
	}

	e.log.Info("report submitted",
		zap.String("report_id", created.ID.Hex()),
		zap.String("reporter", created.Reporter.Hex()),
		zap.String("category", created.Category))
	return created, nil
}

// Validate records a validator's decision. The underlying conditional
// update guarantees a single winner when validators race; approval
// awards the validation points to the report's reporter. Rejection and
// under-investigation record the decision without an award.
//
// fromPending restricts the transition to reports still awaiting their
// first decision; without it a report under investigation remains
// eligible for a follow-up decision.
func (e *Engine) Validate(ctx context.Context, id, validatorID primitive.ObjectID, status, notes string, fromPending bool) (*models.Report, error) {
	var updated *models.Report
	err := txn.Run(ctx, e.db.Client(), e.log, func(ctx context.Context) error {
		var err error
		updated, err = e.reports.ApplyValidation(ctx, id, reportstore.ValidationUpdate{
			Status:      status,
			Validator:   validatorID,
			Notes:       notes,
			FromPending: fromPending,
		})
		if err != nil {
			return err
		}
		if status != models.StatusApproved {
			return nil
		}
		return e.users.ApplyCounterDelta(ctx, updated.Reporter, userstore.CounterDelta{
			Points:           ApprovePoints,
			ReportsValidated: 1,
		}, "report_approved")
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("report validated",
		zap.String("report_id", id.Hex()),
		zap.String("validator", validatorID.Hex()),
		zap.String("status", status))
	return updated, nil
}

// Update applies an allow-listed field set to a report. Authorization
// and allow-list filtering happen in the handler; the engine only
// performs the write.
func (e *Engine) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Report, error) {
	return e.reports.UpdateFields(ctx, id, set)
}

// Delete removes a report, its stored photos, and reverses the
// submission award on the reporter. Photo removal is best-effort: a
// missing file on disk should not strand the database record.
func (e *Engine) Delete(ctx context.Context, rpt *models.Report) error {
	if e.photos != nil {
		for _, p := range rpt.Photos {
			if p.Path == "" {
				continue
			}
			if err := e.photos.Delete(ctx, p.Path); err != nil {
				e.log.Warn("failed to remove report photo",
					zap.String("report_id", rpt.ID.Hex()),
					zap.String("path", p.Path),
					zap.Error(err))
			}
		}
	}

	err := txn.Run(ctx, e.db.Client(), e.log, func(ctx context.Context) error {
		if err := e.reports.Delete(ctx, rpt.ID); err != nil {
			return err
		}
		err := e.users.ApplyCounterDelta(ctx, rpt.Reporter, userstore.CounterDelta{
			Points:           -SubmitPoints,
			ReportsSubmitted: -1,
		}, "report_deleted")
		if errors.Is(err, userstore.ErrNotFound) {
			// Reporter account is gone; the report should still delete.
			e.log.Warn("reporter missing during delete reversal",
				zap.String("report_id", rpt.ID.Hex()),
				zap.String("reporter", rpt.Reporter.Hex()))
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	e.log.Info("report deleted",
		zap.String("report_id", rpt.ID.Hex()),
		zap.String("reporter", rpt.Reporter.Hex()))
	return nil
}
