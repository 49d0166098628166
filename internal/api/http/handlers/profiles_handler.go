package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ProfilesHandler exposes profile endpoints.
type ProfilesHandler struct {
	service        *service.ProfileService
	maxUploadBytes int
}

// NewProfilesHandler constructs handler.
func NewProfilesHandler(profileService *service.ProfileService, maxUploadBytes int) *ProfilesHandler {
	return &ProfilesHandler{service: profileService, maxUploadBytes: maxUploadBytes}
}

// Me GET /me.
func (h *ProfilesHandler) Me(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	profile, err := h.service.GetMyProfile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

// UpdateMe PATCH /me.
func (h *ProfilesHandler) UpdateMe(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.service.UpdateMyProfile(c.UserContext(), actor, service.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

// UploadAvatar POST /me/avatar (multipart, field "file").
func (h *ProfilesHandler) UploadAvatar(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	upload, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		return err
	}
	profile, err := h.service.UploadAvatar(c.UserContext(), actor, upload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

// SetRole PUT /admin/profiles/:id/role.
func (h *ProfilesHandler) SetRole(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.service.SetRole(c.UserContext(), actor, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}
