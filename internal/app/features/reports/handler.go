// Package reports serves the incident-report API: submission with
// photo uploads, role-scoped listing, the validation workflow, and
// report statistics.
package reports

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mangrovewatch/mangrovewatch/internal/app/lifecycle"
	"github.com/mangrovewatch/mangrovewatch/internal/app/policy/reportpolicy"
	"github.com/mangrovewatch/mangrovewatch/internal/app/store/queries/reportqueries"
	reportstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/reports"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/authz"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/htmlsanitize"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/httpjson"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/inputval"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/paging"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/timeouts"
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

// Upload limits for report photos.
const (
	MaxPhotos     = 5
	MaxPhotoSize  = 5 << 20 // 5 MB
	maxFormMemory = 32 << 20
	photoPathRoot = "reports"
)

// Handler holds the report feature's dependencies.
type Handler struct {
	Engine *lifecycle.Engine
	DB     *mongo.Database
	Photos storage.Store
	Log    *zap.Logger
}

func NewHandler(engine *lifecycle.Engine, db *mongo.Database, photos storage.Store, log *zap.Logger) *Handler {
	return &Handler{Engine: engine, DB: db, Photos: photos, Log: log}
}

/* ------------------------------- submission ------------------------------- */

// HandleSubmit accepts a new report as JSON or, when photos are
// attached, as multipart form data.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := timeouts.WithUpload(r.Context())
	defer cancel()

	var (
		req    submitRequest
		photos []models.Photo
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var err error
		req, photos, err = h.parseMultipartSubmit(ctx, r)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	} else if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Severity == "" {
		req.Severity = models.SeverityMedium
	}

	in := inputval.ReportInput{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Severity:    req.Severity,
		Latitude:    req.Location.Coordinates.Latitude,
		Longitude:   req.Location.Coordinates.Longitude,
		HasLocation: req.Location.Coordinates != (models.Coordinates{}),
		Tags:        req.Tags,
	}
	if req.Estimated != nil {
		in.AreaValue = req.Estimated.Value
		in.AreaUnit = req.Estimated.Unit
	}
	if res := inputval.ValidateReport(in); res.HasErrors() {
		h.removePhotos(ctx, photos)
		httpjson.FieldErrors(w, res.ByField())
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	rpt := models.Report{
		Title:       htmlsanitize.StripTags(in.Title),
		Description: htmlsanitize.Sanitize(in.Description),
		Category:    req.Category,
		Severity:    req.Severity,
		Location: models.ReportLocation{
			Coordinates: req.Location.Coordinates,
			Address:     req.Location.Address,
			Region:      htmlsanitize.StripTags(req.Location.Region),
		},
		Photos:           photos,
		Reporter:         uid,
		Tags:             cleanTags(req.Tags),
		EstimatedArea:    req.Estimated,
		ImpactAssessment: req.Impact,
		IsPublic:         isPublic,
	}

	created, err := h.Engine.Submit(ctx, rpt)
	if err != nil {
		h.removePhotos(ctx, photos)
		h.Log.Error("submit report", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Report submission failed")
		return
	}

	httpjson.Write(w, http.StatusCreated, map[string]any{
		"message":      "Report submitted successfully",
		"report":       created,
		"pointsEarned": lifecycle.SubmitPoints,
	})
}

// parseMultipartSubmit reads the form fields and stores the attached
// photos. Photos already stored are cleaned up by the caller if a later
// step fails.
func (h *Handler) parseMultipartSubmit(ctx context.Context, r *http.Request) (submitRequest, []models.Photo, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return submitRequest{}, nil, errors.New("invalid multipart form")
	}

	var req submitRequest
	req.Title = r.FormValue("title")
	req.Description = r.FormValue("description")
	req.Category = r.FormValue("category")
	req.Severity = r.FormValue("severity")
	req.Location.Region = r.FormValue("region")
	req.Tags = r.Form["tags"]

	lat, latErr := strconv.ParseFloat(r.FormValue("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(r.FormValue("longitude"), 64)
	if latErr != nil || lngErr != nil {
		return submitRequest{}, nil, errors.New("latitude and longitude are required")
	}
	req.Location.Coordinates = models.Coordinates{Latitude: lat, Longitude: lng}

	if addr := r.FormValue("city"); addr != "" || r.FormValue("street") != "" {
		req.Location.Address = &models.Address{
			Street:     r.FormValue("street"),
			City:       r.FormValue("city"),
			State:      r.FormValue("state"),
			Country:    r.FormValue("country"),
			PostalCode: r.FormValue("postal_code"),
		}
	}
	if v := r.FormValue("estimated_area_value"); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return submitRequest{}, nil, errors.New("estimated area must be a number")
		}
		req.Estimated = &models.EstimatedArea{Value: val, Unit: r.FormValue("estimated_area_unit")}
	}
	if v := r.FormValue("is_public"); v != "" {
		pub := v == "true" || v == "1"
		req.IsPublic = &pub
	}

	files := r.MultipartForm.File["photos"]
	if len(files) > MaxPhotos {
		return submitRequest{}, nil, fmt.Errorf("at most %d photos are allowed", MaxPhotos)
	}

	var photos []models.Photo
	for _, fh := range files {
		photo, err := h.storePhoto(ctx, fh)
		if err != nil {
			h.removePhotos(ctx, photos)
			return submitRequest{}, nil, err
		}
		photos = append(photos, photo)
	}
	return req, photos, nil
}

// storePhoto checks one upload against the size and type limits and
// writes it under a fresh uuid name.
func (h *Handler) storePhoto(ctx context.Context, fh *multipart.FileHeader) (models.Photo, error) {
	if fh.Size > MaxPhotoSize {
		return models.Photo{}, fmt.Errorf("photo %s exceeds the 5MB limit", fh.Filename)
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return models.Photo{}, fmt.Errorf("photo %s is not an image", fh.Filename)
	}

	f, err := fh.Open()
	if err != nil {
		return models.Photo{}, errors.New("failed to read uploaded photo")
	}
	defer f.Close()

	name := uuid.New().String() + strings.ToLower(filepath.Ext(fh.Filename))
	path := photoPathRoot + "/" + name
	opts := &storage.PutOptions{ContentType: fh.Header.Get("Content-Type")}
	if err := h.Photos.Put(ctx, path, f, opts); err != nil {
		h.Log.Error("store photo", zap.String("path", path), zap.Error(err))
		return models.Photo{}, errors.New("failed to store uploaded photo")
	}

	return models.Photo{
		Filename:     name,
		OriginalName: fh.Filename,
		Path:         path,
		UploadedAt:   time.Now().UTC(),
	}, nil
}

func (h *Handler) removePhotos(ctx context.Context, photos []models.Photo) {
	for _, p := range photos {
		if p.Path == "" {
			continue
		}
		if err := h.Photos.Delete(ctx, p.Path); err != nil {
			h.Log.Warn("remove orphaned photo", zap.String("path", p.Path), zap.Error(err))
		}
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = htmlsanitize.StripTags(t)
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

/* --------------------------------- listing -------------------------------- */

// HandleList returns a filtered, role-scoped page of reports.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	scope := reportpolicy.ListScope(role, uid)

	filters := bson.M{}
	if v := query.Get(r, "status"); models.IsValidStatus(v) {
		filters["status"] = v
	}
	if v := query.Get(r, "category"); models.IsValidCategory(v) {
		filters["category"] = v
	}
	if v := query.Get(r, "severity"); models.IsValidSeverity(v) {
		filters["severity"] = v
	}

	var search bson.M
	if q := strings.TrimSpace(query.Get(r, "search")); q != "" {
		rx := bson.M{"$regex": q, "$options": "i"}
		search = bson.M{"$or": []bson.M{
			{"title": rx},
			{"description": rx},
			{"location.address.city": rx},
		}}
	}

	filter := reportpolicy.And(scope, filters, search)
	p := paging.Parse(r)

	total, err := h.Engine.Reports().Count(ctx, filter)
	if err != nil {
		h.Log.Error("count reports", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}

	page, err := h.Engine.Reports().Find(ctx, filter,
		bson.D{{Key: "created_at", Value: -1}}, p.Skip(), int64(p.Limit))
	if err != nil {
		h.Log.Error("find reports", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"reports":    page,
		"pagination": paging.BuildMeta(p, len(page), total),
	})
}

/* -------------------------------- single get ------------------------------ */

// ServeGet returns one report if the caller may see it.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	rpt, err := h.Engine.Reports().GetByID(ctx, id)
	if errors.Is(err, reportstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		h.Log.Error("get report", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load report")
		return
	}

	if !reportpolicy.CanView(role, uid, rpt) {
		httpjson.Error(w, http.StatusForbidden, "Access denied")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"report": rpt})
}

/* --------------------------------- update --------------------------------- */

// HandleUpdate edits a report's allow-listed fields. Owners may edit
// while the report is still pending; validator roles may edit at any
// point.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	rpt, err := h.Engine.Reports().GetByID(ctx, id)
	if errors.Is(err, reportstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load report")
		return
	}

	if !reportpolicy.CanEdit(role, uid, rpt.Reporter) {
		httpjson.Error(w, http.StatusForbidden, "Access denied")
		return
	}
	if rpt.Status != models.StatusPending && !authz.IsAdminRole(role) {
		httpjson.Error(w, http.StatusForbidden, "Only pending reports can be edited")
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set, verr := buildUpdateSet(rpt, req)
	if verr != nil {
		verr.write(w)
		return
	}
	if len(set) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "No editable fields in request")
		return
	}

	updated, err := h.Engine.Update(ctx, id, set)
	if err != nil {
		h.Log.Error("update report", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Report update failed")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{
		"message": "Report updated",
		"report":  updated,
	})
}

// validationError carries field errors out of buildUpdateSet.
type validationError struct {
	fields map[string]string
}

func (e *validationError) write(w http.ResponseWriter) {
	httpjson.FieldErrors(w, e.fields)
}

// buildUpdateSet validates the provided fields against the full-report
// rules by overlaying them on the current document, then emits only
// the changed keys.
func buildUpdateSet(rpt *models.Report, req updateRequest) (bson.M, *validationError) {
	in := inputval.ReportInput{
		Title:       rpt.Title,
		Description: rpt.Description,
		Category:    rpt.Category,
		Severity:    rpt.Severity,
		Latitude:    rpt.Location.Coordinates.Latitude,
		Longitude:   rpt.Location.Coordinates.Longitude,
		HasLocation: true,
		Tags:        rpt.Tags,
	}

	set := bson.M{}
	if req.Title != nil {
		in.Title = strings.TrimSpace(*req.Title)
		set["title"] = htmlsanitize.StripTags(in.Title)
	}
	if req.Description != nil {
		in.Description = strings.TrimSpace(*req.Description)
		set["description"] = htmlsanitize.Sanitize(in.Description)
	}
	if req.Category != nil {
		in.Category = *req.Category
		set["category"] = *req.Category
	}
	if req.Severity != nil {
		in.Severity = *req.Severity
		set["severity"] = *req.Severity
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
		set["tags"] = cleanTags(*req.Tags)
	}
	if req.Estimated != nil {
		in.AreaValue = req.Estimated.Value
		in.AreaUnit = req.Estimated.Unit
		set["estimated_area"] = req.Estimated
	}
	if req.Impact != nil {
		set["impact_assessment"] = req.Impact
	}

	if res := inputval.ValidateReport(in); res.HasErrors() {
		return nil, &validationError{fields: res.ByField()}
	}
	return set, nil
}

/* -------------------------------- validation ------------------------------ */

// HandleValidateAction is the POST workflow: an approve or reject
// decision on a report still awaiting its first review. Reports
// already under investigation are finalized through the PUT workflow.
func (h *Handler) HandleValidateAction(w http.ResponseWriter, r *http.Request) {
	var req validateActionRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var status string
	switch req.Action {
	case "approve":
		status = models.StatusApproved
	case "reject":
		status = models.StatusRejected
	default:
		httpjson.Error(w, http.StatusBadRequest, `Action must be "approve" or "reject"`)
		return
	}
	h.validate(w, r, status, req.Notes, true)
}

// HandleValidateStatus is the PUT workflow: set the validation status
// directly, including moving an investigated report to its final state.
func (h *Handler) HandleValidateStatus(w http.ResponseWriter, r *http.Request) {
	var req validateStatusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Status {
	case models.StatusApproved, models.StatusRejected, models.StatusUnderInvestigation:
	default:
		httpjson.Error(w, http.StatusBadRequest, `Status must be "approved", "rejected", or "under_investigation"`)
		return
	}
	h.validate(w, r, req.Status, req.Notes, false)
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request, status, notes string, fromPending bool) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if !reportpolicy.CanValidate(role) {
		httpjson.Error(w, http.StatusForbidden, "Only validators can review reports")
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if len(notes) > inputval.NotesMaxLen {
		httpjson.Error(w, http.StatusBadRequest, "Validation notes are too long")
		return
	}

	ctx, cancel := timeouts.WithLong(r.Context())
	defer cancel()

	updated, err := h.Engine.Validate(ctx, id, uid, status, htmlsanitize.StripTags(notes), fromPending)
	switch {
	case errors.Is(err, reportstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "Report not found")
		return
	case errors.Is(err, reportstore.ErrAlreadyValidated):
		httpjson.Error(w, http.StatusBadRequest, "Report has already been validated")
		return
	case err != nil:
		h.Log.Error("validate report", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Report validation failed")
		return
	}

	resp := map[string]any{
		"message": "Report " + statusMessage(status),
		"report":  updated,
	}
	if status == models.StatusApproved {
		resp["pointsAwarded"] = lifecycle.ApprovePoints
	}
	httpjson.Write(w, http.StatusOK, resp)
}

func statusMessage(status string) string {
	switch status {
	case models.StatusApproved:
		return "approved"
	case models.StatusRejected:
		return "rejected"
	default:
		return "marked for investigation"
	}
}

/* --------------------------------- delete --------------------------------- */

// HandleDelete removes a report and reverses its submission award.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithLong(r.Context())
	defer cancel()

	rpt, err := h.Engine.Reports().GetByID(ctx, id)
	if errors.Is(err, reportstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Failed to load report")
		return
	}

	if !reportpolicy.CanEdit(role, uid, rpt.Reporter) {
		httpjson.Error(w, http.StatusForbidden, "Access denied")
		return
	}

	if err := h.Engine.Delete(ctx, rpt); err != nil {
		h.Log.Error("delete report", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Report deletion failed")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{
		"message":        "Report deleted",
		"pointsDeducted": lifecycle.SubmitPoints,
	})
}

/* ---------------------------------- stats --------------------------------- */

// ServeStats returns the dashboard summary: community users see counts
// over their own reports only, every other role sees global counts.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	scope := bson.M{}
	if role == authz.RoleCommunity {
		scope = bson.M{"reporter": uid}
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	s, err := reportqueries.Summarize(ctx, h.DB, scope)
	if err != nil {
		h.Log.Error("summarize reports", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"stats": s})
}

// ServeAdminStats adds the review-queue numbers. Routes restrict it to
// validator roles.
func (h *Handler) ServeAdminStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	s, err := reportqueries.SummarizeForAdmin(ctx, h.DB)
	if err != nil {
		h.Log.Error("summarize reports for admin", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"stats": s})
}

/* --------------------------------- helpers -------------------------------- */

// pathID parses the {id} route parameter, writing a 400 on bad input.
func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	if !inputval.IsValidObjectID(raw) {
		httpjson.Error(w, http.StatusBadRequest, "Invalid report ID")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid report ID")
		return primitive.NilObjectID, false
	}
	return id, true
}
