package handlers

import (
	"pustaka/internal/middleware"
	"pustaka/internal/models"
	"pustaka/internal/services"
	"pustaka/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service *services.CategoryService
	log     logger.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService, log logger.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, log: log}
}

// RegisterRoutes registers the category routes. Reads are public.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	adminOnly := middleware.RequireAPI(models.RoleAdmin)

	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleList)
	categoryRoutes.Get("/:id", h.HandleGet)
	categoryRoutes.Post("/", adminOnly, h.HandleCreate)
	categoryRoutes.Put("/:id", adminOnly, h.HandleUpdate)
	categoryRoutes.Delete("/:id", adminOnly, h.HandleDelete)
}

type categoryRequest struct {
	Name string `json:"name" form:"name"`
}

func (h *CategoryHandler) HandleList(c *fiber.Ctx) error {
	categories, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) HandleGet(c *fiber.Ctx) error {
	category, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) HandleCreate(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	category, err := h.service.Create(c.UserContext(), middleware.SessionFrom(c), req.Name)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) HandleUpdate(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	category, err := h.service.Update(c.UserContext(), middleware.SessionFrom(c), c.Params("id"), req.Name)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.SessionFrom(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}
