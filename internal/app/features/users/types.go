package users

import (
	"time"

	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

// publicProfile is the subset of a user account visible to everyone.
type publicProfile struct {
	ID               string              `json:"id"`
	Username         string              `json:"username"`
	FirstName        string              `json:"firstName"`
	LastName         string              `json:"lastName"`
	Role             string              `json:"role"`
	Organization     string              `json:"organization,omitempty"`
	Location         models.UserLocation `json:"location,omitempty"`
	Points           int                 `json:"points"`
	ReportsSubmitted int                 `json:"reportsSubmitted"`
	ReportsValidated int                 `json:"reportsValidated"`
	MemberSince      time.Time           `json:"memberSince"`
}

func toPublicProfile(u *models.User) publicProfile {
	return publicProfile{
		ID:               u.ID.Hex(),
		Username:         u.Username,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Role:             u.Role,
		Organization:     u.Organization,
		Location:         u.Location,
		Points:           u.Points,
		ReportsSubmitted: u.ReportsSubmitted,
		ReportsValidated: u.ReportsValidated,
		MemberSince:      u.CreatedAt,
	}
}

// leaderboardEntry is one leaderboard row.
type leaderboardEntry struct {
	Rank             int    `json:"rank"`
	Username         string `json:"username"`
	FullName         string `json:"fullName"`
	Role             string `json:"role"`
	Organization     string `json:"organization,omitempty"`
	Points           int    `json:"points"`
	ReportsSubmitted int    `json:"reportsSubmitted"`
	ReportsValidated int    `json:"reportsValidated"`
}

// statusRequest toggles an account's active flag.
type statusRequest struct {
	IsActive *bool `json:"isActive"`
}

// achievement marks one points milestone.
type achievement struct {
	Milestone int  `json:"milestone"`
	Achieved  bool `json:"achieved"`
}

// achievementsResponse is the payload for the caller's own progress.
type achievementsResponse struct {
	Points           int           `json:"points"`
	ReportsSubmitted int           `json:"reportsSubmitted"`
	ReportsValidated int           `json:"reportsValidated"`
	Rank             int64         `json:"rank"`
	Achievements     []achievement `json:"achievements"`
	NextMilestone    *int          `json:"nextMilestone"`
}
