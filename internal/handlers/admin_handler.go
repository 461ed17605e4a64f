package handlers

import (
	"io"

	"pustaka/internal/middleware"
	"pustaka/internal/models"
	"pustaka/internal/services"
	"pustaka/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves file uploads and dashboard statistics.
type AdminHandler struct {
	uploads  *services.UploadService
	stats    *services.StatsService
	maxBytes int
	log      logger.Logger
}

// NewAdminHandler creates a new AdminHandler. Uploads larger than maxBytes
// are rejected.
func NewAdminHandler(uploads *services.UploadService, stats *services.StatsService, maxBytes int, log logger.Logger) *AdminHandler {
	return &AdminHandler{uploads: uploads, stats: stats, maxBytes: maxBytes, log: log}
}

func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	adminOnly := middleware.RequireAPI(models.RoleAdmin)
	router.Post("/upload", adminOnly, h.HandleUpload)
	router.Get("/stats", adminOnly, h.HandleStats)
}

// HandleUpload stores the multipart field "file" and returns its URL.
func (h *AdminHandler) HandleUpload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "no file received")
	}
	f, err := header.Open()
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer f.Close()

	// Read one byte past the limit so oversize files are detected.
	data, err := io.ReadAll(io.LimitReader(f, int64(h.maxBytes)+1))
	if err != nil {
		return respondError(c, h.log, err)
	}

	url, err := h.uploads.Upload(c.UserContext(), middleware.SessionFrom(c), data, header.Filename)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}

func (h *AdminHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.stats.Overview(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}
