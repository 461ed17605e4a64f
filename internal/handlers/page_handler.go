package handlers

import (
	"bytes"
	"html/template"
	"strings"

	"pustaka/internal/middleware"
	"pustaka/internal/models"
	"pustaka/internal/services"
	"pustaka/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// LoginPath is the page anonymous visitors are redirected to.
const LoginPath = "/auth/login"

var pageTemplates = template.Must(template.New("pages").Parse(`{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} · Pustaka</title></head>
<body>
<nav><a href="/">Home</a> <a href="/library">Library</a>{{if .Admin}} <a href="/admin">Admin</a>{{end}}</nav>
{{if .Message}}<p role="alert">{{.Message}}</p>{{end}}
<h1>{{.Title}}</h1>
{{template "content" .}}
</body>
</html>{{end}}`))

func mustPage(name, content string) *template.Template {
	t := template.Must(pageTemplates.Clone())
	return template.Must(t.New(name).Parse(`{{define "content"}}` + content + `{{end}}`))
}

var (
	loginPage = mustPage("login", `<form method="post" action="/api/auth/login" data-callback="{{.CallbackURL}}">
<label>Email <input type="email" name="email" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Sign in</button>
</form>`)

	homePage = mustPage("home", `<p>Browse the digital library.</p>
{{if .Session}}<p><a href="/library">Go to your library</a></p>{{else}}<p><a href="/auth/login">Sign in</a></p>{{end}}`)

	libraryPage = mustPage("library", `<ul>{{range .Books}}
<li><a href="{{.FileURL}}">{{.Title}}</a> by {{.Author}}{{if .Category}} ({{.Category.Name}}){{end}}</li>
{{else}}<li>No books yet.</li>{{end}}</ul>`)

	adminPage = mustPage("admin", `{{with .Stats}}<dl>
<dt>Books</dt><dd>{{.Books}}</dd>
<dt>Categories</dt><dd>{{.Categories}}</dd>
<dt>Students</dt><dd>{{.Students}}</dd>
<dt>Active borrows</dt><dd>{{.ActiveBorrows}}</dd>
</dl>{{end}}
<ul>{{range .Categories}}<li>{{.Name}}</li>{{end}}</ul>
<ul>{{range .Students}}<li>{{.Name}} &lt;{{.Email}}&gt;</li>{{end}}</ul>`)
)

type pageData struct {
	Title       string
	Message     string
	CallbackURL string
	Session     *models.Session
	Admin       bool
	Books       []models.Book
	Categories  []models.Category
	Students    []models.User
	Stats       *services.Stats
}

// PageHandler renders the minimal server-side pages.
type PageHandler struct {
	catalog    *services.CatalogService
	categories *services.CategoryService
	students   *services.StudentService
	stats      *services.StatsService
	log        logger.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(catalog *services.CatalogService, categories *services.CategoryService, students *services.StudentService, stats *services.StatsService, log logger.Logger) *PageHandler {
	return &PageHandler{catalog: catalog, categories: categories, students: students, stats: stats, log: log}
}

// RegisterRoutes registers the page routes with their gate policies.
func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	router.Get(LoginPath, h.HandleLogin)
	router.Get("/", h.HandleHome)
	router.Get("/library", middleware.RequirePage(middleware.AnyRole, LoginPath), h.HandleLibrary)

	adminRoutes := router.Group("/admin", middleware.RequirePage(models.RoleAdmin, LoginPath))
	adminRoutes.Get("/", h.HandleAdmin)
	adminRoutes.Get("/*", h.HandleAdmin)
}

func (h *PageHandler) render(c *fiber.Ctx, t *template.Template, data pageData) error {
	data.Session = middleware.SessionFrom(c)
	data.Admin = data.Session.IsAdmin()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return respondError(c, h.log, err)
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *PageHandler) HandleLogin(c *fiber.Ctx) error {
	callback := c.Query("callbackUrl", "/library")
	// Only same-site paths are honoured as post-login targets.
	if !strings.HasPrefix(callback, "/") || strings.HasPrefix(callback, "//") {
		callback = "/library"
	}
	return h.render(c, loginPage, pageData{Title: "Sign in", CallbackURL: callback})
}

func (h *PageHandler) HandleHome(c *fiber.Ctx) error {
	return h.render(c, homePage, pageData{Title: "Pustaka", Message: c.Query("message")})
}

func (h *PageHandler) HandleLibrary(c *fiber.Ctx) error {
	books, err := h.catalog.ListBooks(c.UserContext(), services.BookFilter{
		Search:     c.Query("search"),
		CategoryID: c.Query("categoryId"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return h.render(c, libraryPage, pageData{Title: "Library", Books: books})
}

func (h *PageHandler) HandleAdmin(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := middleware.SessionFrom(c)

	stats, err := h.stats.Overview(ctx, session)
	if err != nil {
		return respondError(c, h.log, err)
	}
	categories, err := h.categories.List(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	students, err := h.students.List(ctx, session)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return h.render(c, adminPage, pageData{
		Title:      "Dashboard",
		Stats:      stats,
		Categories: categories,
		Students:   students,
	})
}
