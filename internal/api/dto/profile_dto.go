package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// UpdateProfileRequest payload.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
}

// SetRoleRequest payload.
type SetRoleRequest struct {
	Role string `json:"role"`
}

// ProfileResponse is the wire form of a profile.
type ProfileResponse struct {
	ID          string      `json:"id"`
	Role        domain.Role `json:"role"`
	DisplayName string      `json:"display_name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	AvatarURL   string      `json:"avatar_url"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewProfileResponse converts a profile.
func NewProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		Role:        p.Role,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Phone:       p.Phone,
		AvatarURL:   p.AvatarURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
