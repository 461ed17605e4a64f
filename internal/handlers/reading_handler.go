package handlers

import (
	"pustaka/internal/middleware"
	"pustaka/internal/services"
	"pustaka/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ReadingHandler handles reading history and borrows of the signed-in user.
type ReadingHandler struct {
	service *services.ReadingService
	log     logger.Logger
}

// NewReadingHandler creates a new ReadingHandler.
func NewReadingHandler(service *services.ReadingService, log logger.Logger) *ReadingHandler {
	return &ReadingHandler{service: service, log: log}
}

func (h *ReadingHandler) RegisterRoutes(router fiber.Router) {
	signedIn := middleware.RequireAPI(middleware.AnyRole)

	readRoutes := router.Group("/reads", signedIn)
	readRoutes.Get("/", h.HandleReadHistory)
	readRoutes.Post("/", h.HandleRecordRead)

	borrowRoutes := router.Group("/borrows", signedIn)
	borrowRoutes.Get("/", h.HandleBorrows)
	borrowRoutes.Post("/", h.HandleBorrow)
	borrowRoutes.Put("/:id/return", h.HandleReturn)
}

type bookRef struct {
	BookID string `json:"bookId" form:"bookId"`
}

func (h *ReadingHandler) HandleRecordRead(c *fiber.Ctx) error {
	var req bookRef
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	read, err := h.service.RecordRead(c.UserContext(), middleware.SessionFrom(c), req.BookID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(read)
}

func (h *ReadingHandler) HandleReadHistory(c *fiber.Ctx) error {
	reads, err := h.service.ReadHistory(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(reads)
}

func (h *ReadingHandler) HandleBorrow(c *fiber.Ctx) error {
	var req bookRef
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	borrow, err := h.service.Borrow(c.UserContext(), middleware.SessionFrom(c), req.BookID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(borrow)
}

func (h *ReadingHandler) HandleReturn(c *fiber.Ctx) error {
	borrow, err := h.service.Return(c.UserContext(), middleware.SessionFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(borrow)
}

func (h *ReadingHandler) HandleBorrows(c *fiber.Ctx) error {
	borrows, err := h.service.Borrows(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(borrows)
}
