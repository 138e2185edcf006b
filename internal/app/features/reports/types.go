// internal/app/features/reports/types.go
package reports

import (
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

// submitRequest is the JSON submission body. Multipart submissions
// carry the same fields as form values plus the photo files.
type submitRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Category    string                   `json:"category"`
	Severity    string                   `json:"severity"`
	Location    locationInput            `json:"location"`
	Tags        []string                 `json:"tags"`
	Estimated   *models.EstimatedArea    `json:"estimatedArea"`
	Impact      *models.ImpactAssessment `json:"impactAssessment"`
	IsPublic    *bool                    `json:"isPublic"`
}

type locationInput struct {
	Coordinates models.Coordinates `json:"coordinates"`
	Address     *models.Address    `json:"address"`
	Region      string             `json:"region"`
}

// updateRequest uses pointers so absent fields are left untouched.
// Only the allow-listed fields appear here; status, reporter, and
// validation fields can never be written through an update.
type updateRequest struct {
	Title       *string                  `json:"title"`
	Description *string                  `json:"description"`
	Category    *string                  `json:"category"`
	Severity    *string                  `json:"severity"`
	Tags        *[]string                `json:"tags"`
	Estimated   *models.EstimatedArea    `json:"estimatedArea"`
	Impact      *models.ImpactAssessment `json:"impactAssessment"`
}

// validateActionRequest is the POST /{id}/validate body.
type validateActionRequest struct {
	Action string `json:"action"` // approve | reject
	Notes  string `json:"notes"`
}

// validateStatusRequest is the PUT /{id}/validate body.
type validateStatusRequest struct {
	Status string `json:"status"` // approved | rejected | under_investigation
	Notes  string `json:"validationNotes"`
}
