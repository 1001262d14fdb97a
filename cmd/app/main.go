package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"danceslot/internal/analytics"
	"danceslot/internal/auth"
	"danceslot/internal/availability"
	"danceslot/internal/booking"
	"danceslot/internal/calendar"
	"danceslot/internal/config"
	"danceslot/internal/db"
	"danceslot/internal/logger"
	"danceslot/internal/notify"
	"danceslot/internal/pricing"
	"danceslot/internal/realtime"
	"danceslot/internal/server"
	"danceslot/internal/session"
	"danceslot/internal/studio"
	"danceslot/internal/user"
)

const startupTimeout = 5 * time.Second

// @title DanceSlot API
// @version 1.0
// @description Dance studio schedule and booking API.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Info("Starting DanceSlot", "env", cfg.Env, "timezone", cfg.StudioTimezone)

	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		logger.Fatalf("Failed to set up tokens: %v", err)
	}

	template, err := studio.Load(cfg.StudioFile)
	if err != nil {
		logger.Fatalf("Failed to load studio file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, store := openStore(ctx, cfg)
	if repos.close != nil {
		defer repos.close()
	}

	hub := realtime.NewHub()
	var publisher realtime.Publisher = hub
	var notifier booking.Notifier = notify.NewInline(cfg.NotifyEmail)

	if rdb := connectRedis(ctx, cfg.RedisAddr); rdb != nil {
		bridge := realtime.NewBridge(rdb, hub)
		go bridge.Run(ctx)
		publisher = bridge

		notifyService := notify.New(rdb, cfg.NotifyEmail)
		defer notifyService.Close()
		go notifyService.Start(ctx)
		notifier = notifyService
	}

	loc := cfg.Location()
	clock := calendar.Clock(time.Now)

	calendarService := calendar.NewService(repos.calendar, publisher)
	sessionService := session.NewService(repos.sessions, repos.bookings, template, publisher)
	availabilityService := availability.NewService(calendarService, sessionService, template, clock, loc)
	bookingService := booking.NewService(repos.bookings, availabilityService, notifier, publisher, cfg.StrictTransitions)
	pricingService := pricing.NewService(repos.pricing, publisher)
	analyticsService := analytics.NewService(repos.bookings, clock, loc)
	userService := user.NewService(repos.users, tokens, cfg.AdminEmail)

	board := booking.NewBoard(bookingService, booking.Filter{})
	stopBoard := board.Watch(hub)
	defer stopBoard()
	if err := board.Refresh(ctx); err != nil {
		logger.Warn("Initial booking board load failed", "error", err)
	}

	admin := auth.AdminCredentials{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash}
	if admin.PasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH is not set, admin login is disabled")
	}

	srv := server.New(cfg, tokens, server.Handlers{
		Auth:         auth.NewHandler(admin, userService, tokens),
		Studio:       studio.NewHandler(template),
		Calendar:     calendar.NewHandler(calendarService, clock, loc),
		Availability: availability.NewHandler(availabilityService),
		Session:      session.NewHandler(sessionService),
		Booking:      booking.NewHandler(bookingService, board),
		Pricing:      pricing.NewHandler(pricingService),
		Analytics:    analytics.NewHandler(analyticsService),
		Realtime:     realtime.NewHandler(hub),
		User:         user.NewHandler(userService),
	}, store)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

type repositories struct {
	sessions session.Repository
	bookings booking.Repository
	calendar calendar.Repository
	pricing  pricing.Repository
	users    user.Repository
	close    func()
}

// openStore connects to PostgreSQL and runs migrations. When the database is
// unreachable the service starts in demo mode on in-memory repositories.
func openStore(ctx context.Context, cfg *config.Config) (repositories, string) {
	connectCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	database, err := db.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		if cfg.IsProduction() {
			logger.Fatalf("Database unavailable: %v", err)
		}
		logger.Warn("Database unavailable, running in demo mode with in-memory storage", "error", err)
		return memoryRepositories(), server.StoreMemory
	}
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	return postgresRepositories(database), server.StorePostgres
}

func postgresRepositories(database *sqlx.DB) repositories {
	return repositories{
		sessions: session.NewRepository(database),
		bookings: booking.NewRepository(database),
		calendar: calendar.NewRepository(database),
		pricing:  pricing.NewRepository(database),
		users:    user.NewRepository(database),
		close:    func() { database.Close() },
	}
}

func memoryRepositories() repositories {
	return repositories{
		sessions: session.NewMemoryRepository(),
		bookings: booking.NewMemoryRepository(),
		calendar: calendar.NewMemoryRepository(),
		pricing:  pricing.NewMemoryRepository(),
		users:    user.NewMemoryRepository(),
	}
}

// connectRedis returns nil when Redis does not answer, in which case change
// events stay in-process and leads are logged inline.
func connectRedis(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, using in-process events and inline notifications", "addr", addr, "error", err)
		rdb.Close()
		return nil
	}

	logger.Info("Redis connected", "addr", addr)
	return rdb
}
