// internal/domain/models/report.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report is a single submitted incident record.
//
// Invariant: Validator, ValidationNotes, and ValidatedAt are set if and only
// if Status has left "pending". The reportstore enforces the transition with
// a conditional update so two validators cannot both move a report out of
// pending.
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Severity    string             `bson:"severity" json:"severity"`
	Location    ReportLocation     `bson:"location" json:"location"`
	Photos      []Photo            `bson:"photos,omitempty" json:"photos,omitempty"`

	Status          string              `bson:"status" json:"status"`
	Reporter        primitive.ObjectID  `bson:"reporter" json:"reporter"`
	Validator       *primitive.ObjectID `bson:"validator,omitempty" json:"validator,omitempty"`
	ValidationNotes string              `bson:"validation_notes,omitempty" json:"validation_notes,omitempty"`
	ValidatedAt     *time.Time          `bson:"validated_at,omitempty" json:"validated_at,omitempty"`

	Tags             []string          `bson:"tags,omitempty" json:"tags,omitempty"`
	EstimatedArea    *EstimatedArea    `bson:"estimated_area,omitempty" json:"estimated_area,omitempty"`
	ImpactAssessment *ImpactAssessment `bson:"impact_assessment,omitempty" json:"impact_assessment,omitempty"`

	FollowUpRequired bool   `bson:"follow_up_required" json:"follow_up_required"`
	FollowUpNotes    string `bson:"follow_up_notes,omitempty" json:"follow_up_notes,omitempty"`
	IsPublic         bool   `bson:"is_public" json:"is_public"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ReportLocation carries the geotag plus an optional street address.
type ReportLocation struct {
	Coordinates Coordinates `bson:"coordinates" json:"coordinates"`
	Address     *Address    `bson:"address,omitempty" json:"address,omitempty"`
	Region      string      `bson:"region,omitempty" json:"region,omitempty"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Address is the optional human-readable location.
type Address struct {
	Street     string `bson:"street,omitempty" json:"street,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
	PostalCode string `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
}

// Photo is one uploaded image attached to a report. Filename is the stored
// (uuid-prefixed) name; Path is the storage key used for deletion.
type Photo struct {
	Filename     string    `bson:"filename" json:"filename"`
	OriginalName string    `bson:"original_name,omitempty" json:"original_name,omitempty"`
	Path         string    `bson:"path,omitempty" json:"path,omitempty"`
	UploadedAt   time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// EstimatedArea is the reporter's estimate of the affected area.
type EstimatedArea struct {
	Value float64 `bson:"value" json:"value"`
	Unit  string  `bson:"unit" json:"unit"`
}

// ImpactAssessment grades the expected ecological impact.
type ImpactAssessment struct {
	Biodiversity      string `bson:"biodiversity,omitempty" json:"biodiversity,omitempty"`
	CarbonStorage     string `bson:"carbon_storage,omitempty" json:"carbon_storage,omitempty"`
	CoastalProtection string `bson:"coastal_protection,omitempty" json:"coastal_protection,omitempty"`
}
