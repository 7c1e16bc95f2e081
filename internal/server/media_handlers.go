package server

import (
	"path/filepath"
	"strings"

	"vtelltales/internal/models"

	"github.com/gofiber/fiber/v2"
)

// allowedMediaExts limits uploads to the image formats the clients render.
var allowedMediaExts = map[string]bool{
	"webp": true,
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// UploadMedia handles POST /api/media
// The stored reference is returned for use as a story cover or page media.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A file upload is required"))
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	if !allowedMediaExts[ext] {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unsupported media format"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read the uploaded file"))
	}
	defer file.Close()

	ref, err := s.media.Save(file, ext)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ref": ref})
}

// GetMedia handles GET /api/media/:ref
func (s *Server) GetMedia(c *fiber.Ctx) error {
	ref := c.Params("ref")

	path, err := s.media.Path(ref)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Media", ref))
	}
	return c.SendFile(path)
}
