package handlers

import (
	"pustaka/internal/middleware"
	"pustaka/internal/models"
	"pustaka/internal/services"
	"pustaka/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// StudentHandler handles HTTP requests for student accounts. Every route
// is admin only.
type StudentHandler struct {
	service *services.StudentService
	log     logger.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(service *services.StudentService, log logger.Logger) *StudentHandler {
	return &StudentHandler{service: service, log: log}
}

func (h *StudentHandler) RegisterRoutes(router fiber.Router) {
	studentRoutes := router.Group("/students", middleware.RequireAPI(models.RoleAdmin))
	studentRoutes.Get("/", h.HandleList)
	studentRoutes.Get("/:id", h.HandleGet)
	studentRoutes.Post("/", h.HandleCreate)
	studentRoutes.Put("/:id", h.HandleUpdate)
	studentRoutes.Delete("/:id", h.HandleDelete)
}

func (h *StudentHandler) HandleList(c *fiber.Ctx) error {
	students, err := h.service.List(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(students)
}

// HandleGet returns a student with borrow history.
func (h *StudentHandler) HandleGet(c *fiber.Ctx) error {
	student, err := h.service.Get(c.UserContext(), middleware.SessionFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(student)
}

func (h *StudentHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.StudentInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	student, err := h.service.Create(c.UserContext(), middleware.SessionFrom(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(student)
}

func (h *StudentHandler) HandleUpdate(c *fiber.Ctx) error {
	var req services.StudentUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	student, err := h.service.Update(c.UserContext(), middleware.SessionFrom(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(student)
}

func (h *StudentHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.SessionFrom(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Student deleted"})
}
