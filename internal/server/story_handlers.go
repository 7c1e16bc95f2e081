package server

import (
	"vtelltales/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateStory handles POST /api/stories
func (s *Server) CreateStory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		CoverImage  string `json:"cover_image"`
		StoryTypeID *uint  `json:"story_type_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	story, err := s.stories.Create(c.Context(), &models.Story{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		StoryTypeID: req.StoryTypeID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(story)
}

// GetStory handles GET /api/stories/:id
func (s *Server) GetStory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewer, admin := s.viewerContext(c)
	story, err := s.stories.Get(c.Context(), id, viewer, admin)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(story)
}

// GetStorySummary handles GET /api/stories/:id/summary
func (s *Server) GetStorySummary(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewer, admin := s.viewerContext(c)
	summary, err := s.stories.Summary(c.Context(), id, viewer, admin)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summary)
}

// GetUserStories handles GET /api/users/:id/stories
func (s *Server) GetUserStories(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	viewer, admin := s.viewerContext(c)
	stories, err := s.stories.ListByAuthor(c.Context(), id, viewer, admin, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stories)
}

// UpdateStory handles PUT /api/stories/:id
func (s *Server) UpdateStory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		CoverImage  string `json:"cover_image"`
		StoryTypeID *uint  `json:"story_type_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	story, err := s.stories.Update(c.Context(), storyID, userID, &models.Story{
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		StoryTypeID: req.StoryTypeID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(story)
}

// PublishStory handles POST /api/stories/:id/publish
func (s *Server) PublishStory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	story, err := s.stories.Publish(c.Context(), storyID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(story)
}

// DeleteStory handles DELETE /api/stories/:id
func (s *Server) DeleteStory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.stories.Delete(c.Context(), storyID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddStoryPage handles POST /api/stories/:id/pages
func (s *Server) AddStoryPage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content     string `json:"content"`
		ContentType string `json:"content_type"`
		Format      string `json:"format"`
		Media       string `json:"media"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	page, err := s.stories.AddPage(c.Context(), storyID, userID, &models.StoryPage{
		Content:     req.Content,
		ContentType: req.ContentType,
		Format:      req.Format,
		Media:       req.Media,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(page)
}

// GetStoryPages handles GET /api/stories/:id/pages
func (s *Server) GetStoryPages(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewer, admin := s.viewerContext(c)
	pages, err := s.stories.GetPages(c.Context(), storyID, viewer, admin)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(pages)
}

// UpdateStoryPage handles PUT /api/stories/:id/pages/:pageNumber
func (s *Server) UpdateStoryPage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	pageNumber, err := s.parseID(c, "pageNumber")
	if err != nil {
		return nil
	}

	var req struct {
		Content     string `json:"content"`
		ContentType string `json:"content_type"`
		Format      string `json:"format"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	page, err := s.stories.UpdatePage(c.Context(), storyID, userID, int(pageNumber), req.Content, req.ContentType, req.Format)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// DeleteStoryPage handles DELETE /api/stories/:id/pages/:pageNumber
func (s *Server) DeleteStoryPage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	pageNumber, err := s.parseID(c, "pageNumber")
	if err != nil {
		return nil
	}

	if err := s.stories.DeletePage(c.Context(), storyID, userID, int(pageNumber)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetStoryTypes handles GET /api/stories/types
func (s *Server) GetStoryTypes(c *fiber.Ctx) error {
	types, err := s.stories.ListTypes(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(types)
}
