package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"pustaka/internal/middleware"
	"pustaka/internal/models"
	"pustaka/internal/services"
	"pustaka/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles HTTP requests for the catalog and book management.
type BookHandler struct {
	books   *services.BookService
	catalog *services.CatalogService
	log     logger.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(books *services.BookService, catalog *services.CatalogService, log logger.Logger) *BookHandler {
	return &BookHandler{books: books, catalog: catalog, log: log}
}

// RegisterRoutes registers the book routes. Reads are public.
func (h *BookHandler) RegisterRoutes(router fiber.Router) {
	adminOnly := middleware.RequireAPI(models.RoleAdmin)

	bookRoutes := router.Group("/books")
	bookRoutes.Get("/", h.HandleList)
	bookRoutes.Get("/:id", h.HandleGet)
	bookRoutes.Post("/", adminOnly, h.HandleCreate)
	bookRoutes.Put("/:id", adminOnly, h.HandleUpdate)
	bookRoutes.Delete("/:id", adminOnly, h.HandleDelete)
}

// optionalInt decodes a JSON number, a numeric string, "" or null.
// Empty values decode to nil.
type optionalInt struct {
	Value *int
}

func (o *optionalInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			o.Value = nil
			return nil
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("expected a whole number, got %s", string(data))
	}
	o.Value = &n
	return nil
}

type bookRequest struct {
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	Description string      `json:"description"`
	CoverImage  string      `json:"coverImage"`
	FileURL     string      `json:"fileUrl"`
	ISBN        string      `json:"isbn"`
	Publisher   string      `json:"publisher"`
	Year        optionalInt `json:"year"`
	Pages       optionalInt `json:"pages"`
	CategoryID  string      `json:"categoryId"`
}

func (r bookRequest) input() services.BookInput {
	return services.BookInput{
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
		CoverImage:  r.CoverImage,
		FileURL:     r.FileURL,
		ISBN:        r.ISBN,
		Publisher:   r.Publisher,
		Year:        r.Year.Value,
		Pages:       r.Pages.Value,
		CategoryID:  r.CategoryID,
	}
}

// parseBookRequest decodes JSON bodies only; number coercion depends on it.
func parseBookRequest(c *fiber.Ctx) (bookRequest, error) {
	var req bookRequest
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		return req, fmt.Errorf("content type must be %s", fiber.MIMEApplicationJSON)
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	return req, nil
}

// HandleList lists books, optionally filtered by ?search= and ?categoryId=.
func (h *BookHandler) HandleList(c *fiber.Ctx) error {
	books, err := h.catalog.ListBooks(c.UserContext(), services.BookFilter{
		Search:     c.Query("search"),
		CategoryID: c.Query("categoryId"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(books)
}

func (h *BookHandler) HandleGet(c *fiber.Ctx) error {
	book, err := h.books.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(book)
}

func (h *BookHandler) HandleCreate(c *fiber.Ctx) error {
	req, err := parseBookRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	book, err := h.books.Create(c.UserContext(), middleware.SessionFrom(c), req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

func (h *BookHandler) HandleUpdate(c *fiber.Ctx) error {
	req, err := parseBookRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	book, err := h.books.Update(c.UserContext(), middleware.SessionFrom(c), c.Params("id"), req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(book)
}

func (h *BookHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.books.Delete(c.UserContext(), middleware.SessionFrom(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Book deleted"})
}
