// internal/app/features/authapi/types.go
package authapi

import (
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

type registerRequest struct {
	Username     string              `json:"username" validate:"required,min=3,max=30" label:"Username"`
	Email        string              `json:"email" validate:"required,email" label:"Email"`
	Password     string              `json:"password" validate:"required,min=6" label:"Password"`
	FirstName    string              `json:"firstName" validate:"required,max=50" label:"First name"`
	LastName     string              `json:"lastName" validate:"required,max=50" label:"Last name"`
	Role         string              `json:"role"`
	Organization string              `json:"organization"`
	Location     models.UserLocation `json:"location"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

type profileUpdateRequest struct {
	FirstName    string              `json:"firstName" validate:"required,max=50" label:"First name"`
	LastName     string              `json:"lastName" validate:"required,max=50" label:"Last name"`
	Organization string              `json:"organization"`
	Location     models.UserLocation `json:"location"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required" label:"Current password"`
	NewPassword     string `json:"newPassword" validate:"required,min=6" label:"New password"`
}

// userResponse is the public shape of an account. The password hash
// never leaves the store layer.
type userResponse struct {
	ID               string              `json:"id"`
	Username         string              `json:"username"`
	Email            string              `json:"email"`
	FirstName        string              `json:"firstName"`
	LastName         string              `json:"lastName"`
	Role             string              `json:"role"`
	Organization     string              `json:"organization,omitempty"`
	Location         models.UserLocation `json:"location"`
	Points           int                 `json:"points"`
	ReportsSubmitted int                 `json:"reportsSubmitted"`
	ReportsValidated int                 `json:"reportsValidated"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:               u.ID.Hex(),
		Username:         u.Username,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Role:             u.Role,
		Organization:     u.Organization,
		Location:         u.Location,
		Points:           u.Points,
		ReportsSubmitted: u.ReportsSubmitted,
		ReportsValidated: u.ReportsValidated,
	}
}
