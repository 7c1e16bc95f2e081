package server

import (
	"errors"

	"vtelltales/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetUserReports handles GET /api/admin/reports/users
func (s *Server) GetUserReports(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	rows, err := s.moderation.ListUserReports(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(rows)
}

// GetStoryReports handles GET /api/admin/reports/stories
func (s *Server) GetStoryReports(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	rows, err := s.moderation.ListStoryReports(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(rows)
}

// SetUserBlockLevel handles PUT /api/admin/users/:id/block-level
func (s *Server) SetUserBlockLevel(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Level int16 `json:"level"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.moderation.SetUserBlockLevel(c.Context(), targetID, req.Level); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HoldStory handles POST /api/admin/stories/:id/hold
func (s *Server) HoldStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderation.HoldStory(c.Context(), storyID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReleaseStory handles POST /api/admin/stories/:id/release
func (s *Server) ReleaseStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderation.ReleaseStory(c.Context(), storyID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteUserAccount handles DELETE /api/admin/users/:id
// Destructive: the calling admin must re-send their own credentials in the
// request body; the deletion is all-or-nothing.
func (s *Server) DeleteUserAccount(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.accounts.DeleteUser(c.Context(), targetID, req.Email, req.Password); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "UNAUTHORIZED" {
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		}
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFeatureFlags handles GET /api/admin/feature-flags
// Returns the configured flags and their evaluated state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
