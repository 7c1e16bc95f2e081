package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetGlobalFeed handles GET /api/feed
func (s *Server) GetGlobalFeed(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	rows, err := s.feeds.GetGlobalFeed(c.Context(), viewerID(c), page.Offset, page.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(rows)
}

// GetTopStories handles GET /api/feed/top
func (s *Server) GetTopStories(c *fiber.Ctx) error {
	rows, err := s.feeds.GetTopStories(c.Context(), viewerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(rows)
}

// GetFanOfFeed handles GET /api/feed/fan-of
func (s *Server) GetFanOfFeed(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	rows, err := s.feeds.GetFanOfFeed(c.Context(), userID, page.Offset, page.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(rows)
}

// GetBecameFanFeed handles GET /api/feed/became-fan
func (s *Server) GetBecameFanFeed(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	rows, err := s.feeds.GetBecameFanFeed(c.Context(), userID, page.Offset, page.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(rows)
}
