package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pustaka/internal/app"
	"pustaka/internal/config"
	"pustaka/internal/database"
	"pustaka/internal/models"
	"pustaka/internal/services"
	"pustaka/pkg/logger"
	"pustaka/pkg/rabbitmq"

	"github.com/streadway/amqp"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.AppEnv, nil)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if err := run(cfg, log, quit); err != nil {
		log.Error("server exited", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

// run starts the server and blocks until quit fires. Every resource it opens
// is released before it returns, on failure as well.
func run(cfg *config.Config, log logger.Logger, quit chan os.Signal) error {
	// --- Database ---
	db, err := database.Open(cfg.Database, cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("failed to close database", map[string]interface{}{"error": err.Error()})
		}
	}()
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// --- RabbitMQ (optional) ---
	deps := app.Deps{DB: db, Logger: log}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		deps.Publisher = mqClient

		if err := mqClient.ConsumeEvents(auditHandler(log)); err != nil {
			log.Error("failed to start audit consumer", map[string]interface{}{"error": err.Error()})
		} else {
			log.Info("audit consumer started", map[string]interface{}{"queue": rabbitmq.AuditQueue})
		}
	}

	a := app.New(cfg, deps)

	// --- Administrator bootstrap ---
	if err := bootstrapAdmin(context.Background(), a.Auth, cfg.Admin, log); err != nil {
		return fmt.Errorf("failed to bootstrap administrator: %w", err)
	}

	// --- Start HTTP Server ---
	go func() {
		log.Info("starting server", map[string]interface{}{"addr": cfg.Port, "env": cfg.AppEnv})
		if err := a.Listen(cfg.Port); err != nil {
			log.Error("server stopped", map[string]interface{}{"error": err.Error()})
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info("shutting down server", nil)
	if err := a.Shutdown(); err != nil {
		log.Error("error during shutdown", map[string]interface{}{"error": err.Error()})
	}
	log.Info("server gracefully stopped", nil)
	return nil
}

type adminEnsurer interface {
	EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error)
}

// bootstrapAdmin creates the configured administrator on first start.
// Nothing happens when no admin email is configured.
func bootstrapAdmin(ctx context.Context, auth adminEnsurer, admin config.AdminConfig, log logger.Logger) error {
	if admin.Email == "" {
		return nil
	}
	if admin.Password == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}

	user, created, err := auth.EnsureAdmin(ctx, admin.Name, admin.Email, admin.Password)
	if err != nil {
		return err
	}
	if created {
		log.Info("administrator created", map[string]interface{}{"user_id": user.ID})
	}
	return nil
}

// auditHandler writes every consumed library event to the log.
func auditHandler(log logger.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var evt services.Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			log.Warn("discarding malformed event", map[string]interface{}{
				"routing_key": msg.RoutingKey,
				"error":       err.Error(),
			})
			return fmt.Errorf("decode event: %w", err)
		}

		log.Info("library event", map[string]interface{}{
			"type":        evt.Type,
			"resource_id": evt.ResourceID,
			"actor_id":    evt.ActorID,
			"occurred_at": evt.OccurredAt.Format(time.RFC3339),
		})
		return nil
	}
}
