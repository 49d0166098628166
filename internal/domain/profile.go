package domain

import "time"

// Profile is the directory entry for an actor.
type Profile struct {
	ID          string
	Role        Role
	DisplayName string
	Email       string
	Phone       string
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProfileFields carries a partial profile update. Nil fields are left untouched.
// Role is deliberately absent; see SetRole on the directory.
type ProfileFields struct {
	DisplayName *string
	Email       *string
	Phone       *string
	AvatarURL   *string
}

// Apply copies the non-nil fields onto p.
func (f ProfileFields) Apply(p *Profile) {
	if f.DisplayName != nil {
		p.DisplayName = *f.DisplayName
	}
	if f.Email != nil {
		p.Email = *f.Email
	}
	if f.Phone != nil {
		p.Phone = *f.Phone
	}
	if f.AvatarURL != nil {
		p.AvatarURL = *f.AvatarURL
	}
}

// OwnerSummary is the minimal owner projection joined onto complaints for privileged views.
type OwnerSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// Summary projects the profile onto the owner join fields.
func (p *Profile) Summary() OwnerSummary {
	return OwnerSummary{ID: p.ID, DisplayName: p.DisplayName, Email: p.Email}
}
