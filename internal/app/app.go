// Package app wires configuration, storage, services and HTTP routes into
// a Fiber application.
package app

import (
	"time"

	"pustaka/internal/config"
	"pustaka/internal/handlers"
	"pustaka/internal/middleware"
	"pustaka/internal/repositories"
	"pustaka/internal/services"
	"pustaka/pkg/logger"
	"pustaka/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

// Deps are the external resources the application runs on.
type Deps struct {
	DB *gorm.DB
	// Fs holds uploaded files. Defaults to the OS filesystem.
	Fs afero.Fs
	// Publisher receives library events. Nil disables publishing.
	Publisher services.EventPublisher
	Logger    logger.Logger
}

// App is the assembled application.
type App struct {
	Fiber *fiber.App

	Auth       *services.AuthService
	Categories *services.CategoryService
	Books      *services.BookService
	Catalog    *services.CatalogService
	Students   *services.StudentService
	Reading    *services.ReadingService
	Stats      *services.StatsService
	Uploads    *services.UploadService

	db  *gorm.DB
	log logger.Logger
}

// New builds the services over GORM repositories and registers all routes.
func New(cfg *config.Config, deps Deps) *App {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	fs := deps.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	userRepo := repositories.NewGORMUserRepository(deps.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(deps.DB)
	bookRepo := repositories.NewGORMBookRepository(deps.DB)
	borrowRepo := repositories.NewGORMBorrowRepository(deps.DB)
	readRepo := repositories.NewGORMReadRepository(deps.DB)

	events := services.NewEvents(deps.Publisher, log)
	hasher := services.NewBcryptHasher()

	a := &App{
		Auth:       services.NewAuthService(userRepo, hasher, cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, events),
		Categories: services.NewCategoryService(categoryRepo, bookRepo, events),
		Books:      services.NewBookService(bookRepo, categoryRepo, borrowRepo, events),
		Catalog:    services.NewCatalogService(bookRepo),
		Students:   services.NewStudentService(userRepo, borrowRepo, hasher, events),
		Reading:    services.NewReadingService(bookRepo, borrowRepo, readRepo, events),
		Stats:      services.NewStatsService(bookRepo, categoryRepo, userRepo, borrowRepo),
		Uploads: services.NewUploadService(
			storage.NewLocalStore(fs, cfg.Upload.Dir, cfg.Upload.URLPrefix),
			cfg.Upload.MaxBytes,
		),
		db:  deps.DB,
		log: log,
	}

	a.Fiber = fiber.New(fiber.Config{
		AppName:      "pustaka",
		BodyLimit:    cfg.Upload.MaxBytes + 1<<20,
		ErrorHandler: handlers.ErrorHandler(log),
	})
	a.routes(cfg, fs)
	return a
}

func (a *App) routes(cfg *config.Config, fs afero.Fs) {
	r := a.Fiber

	r.Use(recover.New())
	if cfg.RequestLogging {
		r.Use(fiberlogger.New())
	}
	r.Use(middleware.Metrics())
	r.Use(middleware.LoadSession(a.Auth, cfg.Auth.CookieName, a.log))

	r.Get("/health", a.handleHealth)
	r.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	r.Use(cfg.Upload.URLPrefix, filesystem.New(filesystem.Config{
		Root: afero.NewHttpFs(fs).Dir(cfg.Upload.Dir),
	}))

	api := r.Group("/api")
	handlers.NewAuthHandler(a.Auth, handlers.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure,
	}, cfg.Auth.AllowRegistration, a.log).RegisterRoutes(api)
	handlers.NewCategoryHandler(a.Categories, a.log).RegisterRoutes(api)
	handlers.NewBookHandler(a.Books, a.Catalog, a.log).RegisterRoutes(api)
	handlers.NewStudentHandler(a.Students, a.log).RegisterRoutes(api)
	handlers.NewReadingHandler(a.Reading, a.log).RegisterRoutes(api)
	handlers.NewAdminHandler(a.Uploads, a.Stats, cfg.Upload.MaxBytes, a.log).RegisterRoutes(api)

	handlers.NewPageHandler(a.Catalog, a.Categories, a.Students, a.Stats, a.log).RegisterRoutes(r)
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	database := "up"
	if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		status = fiber.StatusServiceUnavailable
		database = "down"
	}

	body := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
	}
	if status != fiber.StatusOK {
		body["status"] = "unhealthy"
	}
	return c.Status(status).JSON(body)
}

// Listen serves HTTP on addr until Shutdown is called.
func (a *App) Listen(addr string) error {
	return a.Fiber.Listen(addr)
}

// Shutdown stops accepting requests and waits for active ones.
func (a *App) Shutdown() error {
	return a.Fiber.Shutdown()
}
