package server

import (
	"vtelltales/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ReportOrBlockUser handles POST /api/users/:id/flag
// flag=1 reports the user, flag=2 hard-blocks them from the caller's feeds.
func (s *Server) ReportOrBlockUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Flag int16 `json:"flag"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.moderation.ReportOrBlockUser(c.Context(), userID, targetID, req.Flag); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnblockUser handles DELETE /api/users/:id/flag
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderation.UnblockUser(c.Context(), userID, targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReportOrBlockStory handles POST /api/stories/:id/flag
func (s *Server) ReportOrBlockStory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Flag int16 `json:"flag"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.moderation.ReportOrBlockStory(c.Context(), userID, storyID, req.Flag); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnblockStory handles DELETE /api/stories/:id/flag
func (s *Server) UnblockStory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderation.UnblockStory(c.Context(), userID, storyID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
