package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/pandol/internal/services"
)

// ProfileHandler serves the member dashboard and profile endpoints.
type ProfileHandler struct {
	members *services.MemberService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(members *services.MemberService) *ProfileHandler {
	return &ProfileHandler{members: members}
}

// GetMemberData returns the dashboard of the authenticated member.
func (h *ProfileHandler) GetMemberData(c *fiber.Ctx) error {
	data := h.members.CurrentMemberData(c.UserContext())
	if data == nil {
		return unavailable(c)
	}
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// GetProfile returns the profile card of the authenticated member.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	data := h.members.CurrentMemberProfileData(c.UserContext())
	if data == nil {
		return unavailable(c)
	}
	return c.JSON(fiber.Map{"success": true, "data": data})
}

type updateProfileRequest struct {
	Email          *string `json:"email"`
	ProfilePicture *string `json:"profile_picture"`
}

// UpdateProfile changes the member's email and/or picture.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == nil && req.ProfilePicture == nil {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}
	if req.ProfilePicture != nil {
		if err := services.ValidateProfileImage(*req.ProfilePicture); err != nil {
			return err
		}
	}

	upd := services.ProfileUpdate{Email: req.Email, ProfilePicture: req.ProfilePicture}
	if !h.members.UpdateMemberProfile(c.UserContext(), id, upd) {
		return unavailable(c)
	}
	return h.GetProfile(c)
}

type profilePictureRequest struct {
	Image string `json:"image"`
}

// UploadProfilePicture stores a data URI image as the member's picture.
func (h *ProfileHandler) UploadProfilePicture(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req profilePictureRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := services.ValidateProfileImage(req.Image); err != nil {
		return err
	}

	if !h.members.SaveProfilePicture(c.UserContext(), id, req.Image) {
		return unavailable(c)
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteProfilePicture removes the member's picture.
func (h *ProfileHandler) DeleteProfilePicture(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if !h.members.RemoveProfilePicture(c.UserContext(), id) {
		return unavailable(c)
	}
	return c.JSON(fiber.Map{"success": true})
}
