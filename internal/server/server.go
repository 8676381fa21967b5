// Package server wires the worklog HTTP application: middleware, routes,
// HTML handlers and embedded templates.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"worklog/internal/cache"
	"worklog/internal/config"
	"worklog/internal/database"
	"worklog/internal/middleware"
	"worklog/internal/models"
	"worklog/internal/observability"
	"worklog/internal/repository"
	"worklog/internal/service"
	"worklog/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	appName          = "worklog"
	loginRateWindow  = 5 * time.Minute
	shutdownDeadline = 10 * time.Second

	csrfCookieName = "worklog_csrf"
	csrfFormField  = "csrf_token"
	csrfContextKey = "csrf"
	csrfExpiration = 12 * time.Hour
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Manager
	pages          *renderer
	authService    *service.AuthService
	entryService   *service.EntryService
	tagService     *service.TagService
}

// NewServer connects the database and Redis described by cfg and builds a
// server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; sessions are then not revocable and login is not
// rate limited. The read cache is configured separately through the cache
// package.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	pages, err := newRenderer()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.HTTPMetrics(appName),
		sessions:       session.NewManager(cfg.SessionSecret, ttl, redisClient, cfg.IsProduction()),
		pages:          pages,
		authService:    service.NewAuthService(repository.NewUserRepository(db)),
		entryService:   service.NewEntryService(repository.NewEntryRepository(db)),
		tagService:     service.NewTagService(repository.NewTagRepository(db)),
	}, nil
}

// Bootstrap creates the configured admin account unless it already exists.
func (s *Server) Bootstrap(ctx context.Context) error {
	if s.config.AdminUsername == "" {
		return nil
	}
	if err := s.authService.EnsureUser(ctx, s.config.AdminUsername, s.config.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin user: %w", err)
	}
	return nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: s.ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Session before the context middleware so logs carry the user id.
	app.Use(middleware.LoadUser(s.sessions, s.userExists))
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())
	app.Use(s.csrfProtection())
}

// userExists lets LoadUser drop sessions whose account has been removed.
func (s *Server) userExists(ctx context.Context, id uint) (bool, error) {
	_, err := s.authService.GetUser(ctx, id)
	if err == nil {
		return true, nil
	}
	if models.CodeOf(err) == models.CodeNotFound {
		return false, nil
	}
	return false, err
}

// csrfProtection requires every form POST to echo the token issued in the
// worklog_csrf cookie. Operational endpoints never see a token.
func (s *Server) csrfProtection() fiber.Handler {
	return csrf.New(csrf.Config{
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/health") || p == "/metrics"
		},
		KeyLookup:      "form:" + csrfFormField,
		CookieName:     csrfCookieName,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		CookieHTTPOnly: true,
		CookieSecure:   s.config.IsProduction(),
		Expiration:     csrfExpiration,
		ContextKey:     csrfContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.WarnContext(c.UserContext(), "csrf check failed", "path", c.Path(), "error", err)
			return fiber.NewError(fiber.StatusForbidden, "This form has expired. Reload the page and try again.")
		},
	})
}

// SetupRoutes registers the HTML pages and operational endpoints.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/", s.Index)

	app.Get("/login", s.LoginPage)
	app.Post("/login",
		middleware.RateLimit(s.redis, s.config.Env, s.config.LoginRateLimit, loginRateWindow, "login"),
		s.Login,
	)

	protected := middleware.LoginRequired()
	app.Get("/logout", protected, s.Logout)

	app.Get("/entry", protected, s.NewEntryPage)
	app.Post("/entry", protected, s.CreateEntry)
	app.Get("/entries/edit/:slug", protected, s.EditEntryPage)
	app.Post("/entries/edit/:slug", protected, s.UpdateEntry)
	app.Get("/entries/:slug", s.EntryDetail)
	app.Get("/delete/:slug", protected, s.DeleteEntry)

	app.Get("/tags", s.AllTags)
	app.Get("/tags/:slug", s.EntriesByTag)
}

// Start builds the app and listens on the configured port until the app is
// shut down.
func (s *Server) Start() error {
	if s.app == nil {
		s.app = s.App()
	}
	middleware.Logger.Info("server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// RunWithQuit starts the server and blocks until quit receives a signal or
// the listener fails, then shuts down gracefully.
func (s *Server) RunWithQuit(quit <-chan os.Signal) error {
	s.app = s.App()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	var listenErr error
	select {
	case sig := <-quit:
		middleware.Logger.Info("shutting down server", "signal", fmt.Sprint(sig))
	case listenErr = <-errCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancel()
	return errors.Join(listenErr, s.Shutdown(ctx))
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}

	if err := database.Close(s.db); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
