package inputval

import (
	"fmt"
	"strings"

	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

// Report field limits shared by create and update paths.
const (
	TitleMinLen       = 5
	TitleMaxLen       = 200
	DescriptionMinLen = 20
	DescriptionMaxLen = 1000
	NotesMaxLen       = 500
	MaxTags           = 10
	TagMaxLen         = 50
)

// ReportInput holds the user-editable fields of a report for
// validation. Handlers map their request payloads into this shape.
type ReportInput struct {
	Title       string `validate:"required,min=5,max=200" label:"Title"`
	Description string `validate:"required,min=20,max=1000" label:"Description"`
	Category    string
	Severity    string
	Latitude    float64
	Longitude   float64
	HasLocation bool
	Tags        []string
	AreaValue   float64
	AreaUnit    string
	Notes       string `validate:"max=500" label:"Assessment notes"`
}

// ValidateReport checks a full report payload: the tagged string rules
// plus the enum and geographic checks tags cannot express.
func ValidateReport(in ReportInput) *Result {
	res := Validate(in)

	if !models.IsValidCategory(in.Category) {
		res.Errors = append(res.Errors, FieldError{
			Field:   "Category",
			Message: fmt.Sprintf("Category must be one of: %s.", joinValues(models.Categories)),
		})
	}
	if !models.IsValidSeverity(in.Severity) {
		res.Errors = append(res.Errors, FieldError{
			Field:   "Severity",
			Message: fmt.Sprintf("Severity must be one of: %s.", joinValues(models.Severities)),
		})
	}
	if in.HasLocation {
		if !IsValidLatitude(in.Latitude) {
			res.Errors = append(res.Errors, FieldError{Field: "Latitude", Message: "Latitude must be between -90 and 90."})
		}
		if !IsValidLongitude(in.Longitude) {
			res.Errors = append(res.Errors, FieldError{Field: "Longitude", Message: "Longitude must be between -180 and 180."})
		}
	} else {
		res.Errors = append(res.Errors, FieldError{Field: "Location", Message: "Location coordinates are required."})
	}
	if len(in.Tags) > MaxTags {
		res.Errors = append(res.Errors, FieldError{Field: "Tags", Message: fmt.Sprintf("At most %d tags are allowed.", MaxTags)})
	}
	for _, tag := range in.Tags {
		if len(tag) > TagMaxLen {
			res.Errors = append(res.Errors, FieldError{Field: "Tags", Message: fmt.Sprintf("Tags must be at most %d characters.", TagMaxLen)})
			break
		}
	}
	if in.AreaValue < 0 {
		res.Errors = append(res.Errors, FieldError{Field: "EstimatedArea", Message: "Estimated area cannot be negative."})
	}
	if in.AreaUnit != "" && !models.IsValidAreaUnit(in.AreaUnit) {
		res.Errors = append(res.Errors, FieldError{
			Field:   "EstimatedArea",
			Message: fmt.Sprintf("Area unit must be one of: %s.", joinValues(models.AreaUnits)),
		})
	}
	return res
}

func joinValues(vals []string) string {
	return strings.Join(vals, ", ")
}
