// cmd/web/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/config"
	"github.com/your-org/cafe-frontend/internal/domain/admin"
	"github.com/your-org/cafe-frontend/internal/domain/cart"
	"github.com/your-org/cafe-frontend/internal/domain/checkout"
	"github.com/your-org/cafe-frontend/internal/domain/menu"
	"github.com/your-org/cafe-frontend/internal/domain/tracking"
	"github.com/your-org/cafe-frontend/internal/infrastructure/cafeapi"
	"github.com/your-org/cafe-frontend/internal/infrastructure/database/postgres"
	"github.com/your-org/cafe-frontend/internal/infrastructure/database/redis"
	"github.com/your-org/cafe-frontend/internal/infrastructure/push"
	"github.com/your-org/cafe-frontend/internal/infrastructure/snapshot"
	apphttp "github.com/your-org/cafe-frontend/internal/interfaces/http"
	"github.com/your-org/cafe-frontend/internal/interfaces/http/handlers"
	"github.com/your-org/cafe-frontend/internal/interfaces/http/routes"
	"github.com/your-org/cafe-frontend/internal/pkg/auth"
	"github.com/your-org/cafe-frontend/internal/pkg/logger"
	"github.com/your-org/cafe-frontend/internal/pkg/pdf"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 30 * time.Second
	purgeInterval   = time.Hour
	tokenLeeway     = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"storage":     cfg.Storage.Driver,
		"push":        cfg.Push.Transport,
	}).Infof("Starting %s", cfg.App.Name)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Service stopped with error")
	}
	log.Info("Server shutdown completed")
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	checks := map[string]apphttp.HealthCheck{}

	var (
		store       snapshot.Store
		redisClient *goredis.Client
	)

	switch cfg.Storage.Driver {
	case "redis":
		conn, err := redis.NewConnection(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer conn.Close()

		redisClient = conn.GetClient()
		store = snapshot.NewRedisStore(redisClient, cfg.Storage.SnapshotTTL)
		checks["redis"] = conn.Health

	case "postgres":
		db, err := postgres.NewConnection(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		migration := postgres.NewMigration(db.GetDB(), log)
		if err := migration.RunAutoMigrations(); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
		if err := migration.CreateIndexes(); err != nil {
			log.WithError(err).Warn("Index creation failed")
		}
		if cfg.IsDevelopment() {
			if err := migration.GetTableInfo(); err != nil {
				log.WithError(err).Warn("Failed to read table info")
			}
		}

		gormStore := snapshot.NewGormStore(db.GetDB(), cfg.Storage.SnapshotTTL)
		store = gormStore
		checks["database"] = db.Health

		g.Go(func() error {
			ticker := time.NewTicker(purgeInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := migration.PurgeExpiredSnapshots(ctx, gormStore); err != nil {
						log.WithError(err).Warn("Snapshot purge failed")
					}
				}
			}
		})

	default:
		store = snapshot.NewMemoryStore(cfg.Storage.SnapshotTTL)
	}

	api := cafeapi.NewClient(cfg, log)
	hub := push.NewHub(log)
	transport, err := push.NewTransport(cfg, hub, log)
	if err != nil {
		return err
	}

	menuService := menu.NewService(api, store, log)
	carts := cart.NewService(store, menuService, cfg.Storage.CartIdleTTL, log)
	checkoutService := checkout.NewService(carts, api, store, log)
	trackingService := tracking.NewService(api, hub, store, cfg.Tracking.TickInterval, log)
	tokens := auth.NewTokenInspector(tokenLeeway)
	adminService := admin.NewService(api, hub, tokens, menuService, cfg.Tracking.TickInterval, cfg.ReportLocation(), log)

	server := apphttp.NewServer(cfg, apphttp.Dependencies{
		Handlers: routes.Handlers{
			Menu:  handlers.NewMenuHandler(menuService, log),
			Cart:  handlers.NewCartHandler(carts, log),
			Order: handlers.NewOrderHandler(checkoutService, trackingService, log),
			Admin: handlers.NewAdminHandler(adminService, pdf.NewService(cfg), cfg, log),
		},
		Tokens:        tokens,
		Redis:         redisClient,
		Checks:        checks,
		PushConnected: hub.Connected,
	}, log)

	g.Go(func() error {
		// Live updates are lost without the push channel, but ordering
		// keeps working
		if err := transport.Run(ctx); err != nil {
			log.WithError(err).Error("Push channel stopped, live updates unavailable")
		}
		return nil
	})

	g.Go(server.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	return g.Wait()
}
