// internal/domain/models/reporttypes.go
package models

// Report status values. A report starts pending; validation moves it to one
// of the other three. Approved and rejected are terminal; a report under
// investigation may be validated again.
const (
	StatusPending            = "pending"
	StatusApproved           = "approved"
	StatusRejected           = "rejected"
	StatusUnderInvestigation = "under_investigation"
)

// Statuses lists every legal report status.
var Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusUnderInvestigation}

// Report categories.
const (
	CategoryCutting     = "cutting"
	CategoryDumping     = "dumping"
	CategoryReclamation = "reclamation"
	CategoryPollution   = "pollution"
	CategoryOther       = "other"
)

// Categories lists every legal report category.
var Categories = []string{CategoryCutting, CategoryDumping, CategoryReclamation, CategoryPollution, CategoryOther}

// Severity levels. Medium is the default when the reporter omits one.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Severities lists every legal severity level.
var Severities = []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Area units for EstimatedArea.
var AreaUnits = []string{"sq_meters", "sq_kilometers", "acres", "hectares"}

// Impact grades for ImpactAssessment fields.
var ImpactGrades = []string{"none", "low", "medium", "high", "severe"}

// IsValidStatus reports whether s is a legal report status.
func IsValidStatus(s string) bool { return contains(Statuses, s) }

// IsValidCategory reports whether c is a legal report category.
func IsValidCategory(c string) bool { return contains(Categories, c) }

// IsValidSeverity reports whether s is a legal severity level.
func IsValidSeverity(s string) bool { return contains(Severities, s) }

// IsValidAreaUnit reports whether u is a legal estimated-area unit.
func IsValidAreaUnit(u string) bool { return contains(AreaUnits, u) }

// IsValidImpactGrade reports whether g is a legal impact grade.
func IsValidImpactGrade(g string) bool { return contains(ImpactGrades, g) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
