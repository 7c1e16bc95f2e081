package server

import (
	"vtelltales/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleLike handles POST /api/stories/:id/like
// The endpoint toggles the like state and returns the new one.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.engagement.ToggleLike(c.Context(), storyID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// RecordView handles POST /api/stories/:id/view
// Anonymous views count too; repeat views are separate events.
func (s *Server) RecordView(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.engagement.RecordView(c.Context(), storyID, viewerID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateComment handles POST /api/stories/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.engagement.AddComment(c.Context(), storyID, userID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/stories/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	viewer, admin := s.viewerContext(c)
	comments, err := s.engagement.ListComments(c.Context(), storyID, viewer, admin, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/admin/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.engagement.DeleteComment(c.Context(), commentID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleBookmark handles POST /api/stories/:id/bookmark
func (s *Server) ToggleBookmark(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	bookmarked, err := s.engagement.ToggleBookmark(c.Context(), storyID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"bookmarked": bookmarked})
}

// GetBookmarks handles GET /api/bookmarks
func (s *Server) GetBookmarks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	ids, err := s.engagement.ListBookmarks(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"story_ids": ids})
}
