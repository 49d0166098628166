package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/blob"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ProfileService manages the profile directory on behalf of actors.
type ProfileService struct {
	profiles       repository.ProfileRepository
	avatars        blob.Store
	metrics        *observability.Metrics
	logger         *zap.Logger
	maxUploadBytes int
}

// UpdateProfileInput lists the self-editable profile fields. Role is not among them.
type UpdateProfileInput struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=120"`
	Email       *string `json:"email" validate:"omitempty,email,max=254"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
}

// NewProfileService constructs the service.
func NewProfileService(profiles repository.ProfileRepository, avatars blob.Store, metrics *observability.Metrics, logger *zap.Logger, maxUploadBytes int) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		profiles:       profiles,
		avatars:        avatars,
		metrics:        metrics,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// ResolveActor loads the caller's profile, provisioning one with role user the first
// time an identity is seen.
func (s *ProfileService) ResolveActor(ctx context.Context, identity domain.Identity) (domain.Actor, error) {
	if strings.TrimSpace(identity.ID) == "" {
		return domain.Actor{}, apperrors.NewUnauthorized("identity has no subject")
	}
	profile, err := s.profiles.GetByID(ctx, identity.ID)
	if err == nil {
		return domain.ActorFromProfile(profile), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return domain.Actor{}, err
	}

	fields := domain.ProfileFields{}
	if name := strings.TrimSpace(identity.DisplayName); name != "" {
		fields.DisplayName = &name
	}
	if email := strings.TrimSpace(identity.Email); email != "" {
		fields.Email = &email
	}
	profile, err = s.profiles.Upsert(ctx, identity.ID, fields)
	if err != nil {
		return domain.Actor{}, err
	}
	s.logger.Info("provisioned profile", zap.String("actor_id", profile.ID), zap.String("role", string(profile.Role)))
	return domain.ActorFromProfile(profile), nil
}

// GetMyProfile returns the actor's own profile.
func (s *ProfileService) GetMyProfile(ctx context.Context, actor domain.Actor) (*domain.Profile, error) {
	return s.profiles.GetByID(ctx, actor.ID)
}

// UpdateMyProfile applies the self-editable fields.
func (s *ProfileService) UpdateMyProfile(ctx context.Context, actor domain.Actor, input UpdateProfileInput) (*domain.Profile, error) {
	input.DisplayName = trimPtr(input.DisplayName)
	input.Email = trimPtr(input.Email)
	input.Phone = trimPtr(input.Phone)
	if input.DisplayName == nil && input.Email == nil && input.Phone == nil {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.profiles.Upsert(ctx, actor.ID, domain.ProfileFields{
		DisplayName: input.DisplayName,
		Email:       input.Email,
		Phone:       input.Phone,
	})
}

// UploadAvatar stores the image under a random key and records its url on the profile.
func (s *ProfileService) UploadAvatar(ctx context.Context, actor domain.Actor, upload Upload) (*domain.Profile, error) {
	if len(upload.Body) == 0 {
		return nil, apperrors.NewValidationError("file is empty", nil)
	}
	if s.maxUploadBytes > 0 && len(upload.Body) > s.maxUploadBytes {
		return nil, apperrors.NewValidationError("file too large", map[string]any{"max_bytes": s.maxUploadBytes})
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, apperrors.NewValidationError("avatar must be an image", map[string]any{"content_type": upload.ContentType})
	}

	key := blob.AvatarKey(actor.ID, upload.Filename)
	url, err := s.avatars.Put(ctx, key, upload.Body, upload.ContentType)
	if err != nil {
		s.metrics.RecordUpload("avatar", false)
		s.logger.Warn("avatar upload failed", zap.String("actor_id", actor.ID), zap.Error(err))
		return nil, apperrors.NewStorageError(err)
	}
	s.metrics.RecordUpload("avatar", true)
	return s.profiles.Upsert(ctx, actor.ID, domain.ProfileFields{AvatarURL: &url})
}

// SetRole changes another profile's role. Admin only.
func (s *ProfileService) SetRole(ctx context.Context, actor domain.Actor, targetID, rawRole string) (*domain.Profile, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins may change roles")
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": rawRole})
	}
	profile, err := s.profiles.SetRole(ctx, strings.TrimSpace(targetID), role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("role changed",
		zap.String("actor_id", actor.ID),
		zap.String("target_id", profile.ID),
		zap.String("role", string(role)))
	return profile, nil
}
