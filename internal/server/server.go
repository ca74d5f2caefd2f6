package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"usercalc/internal/auth"
	"usercalc/internal/calculator"
	"usercalc/internal/config"
	"usercalc/internal/users"
)

// Server assembles the fiber application: middleware, routes and the
// handlers behind them.
type Server struct {
	app *fiber.App
	cfg config.Config
	log *zap.Logger
}

// New wires the full HTTP surface against the given database.
func New(cfg config.Config, db *gorm.DB, log *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(corsMiddleware(cfg.CORSOrigin))
	app.Use(requestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authSvc := auth.NewService(db, []byte(cfg.JWTSecret), cfg.TokenTTL)
	authHandler := auth.NewHandler(authSvc)
	userHandler := users.NewHandler(users.NewService(db))
	calcHandler := calculator.NewHandler(db, log)

	api := app.Group("/api")

	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	api.Get("/users", userHandler.List)
	api.Post("/users", userHandler.Create)
	api.Get("/users/:id", userHandler.Get)
	api.Put("/users/:id", userHandler.Update)
	api.Delete("/users/:id", userHandler.Delete)

	requireAuth := authSvc.Middleware()
	calcLimiter := limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	})
	api.Post("/calculate", calcLimiter, requireAuth, calcHandler.Calculate)
	api.Post("/evaluate", calcLimiter, requireAuth, calcHandler.Evaluate)
	api.Get("/history", requireAuth, calcHandler.History)

	return &Server{app: app, cfg: cfg, log: log}
}

// App exposes the fiber application for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving HTTP on the configured address.
func (s *Server) Listen() error {
	s.log.Info("listening", zap.String("addr", s.cfg.ListenAddr))
	return s.app.Listen(s.cfg.ListenAddr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// errorHandler renders every error as a JSON body, keeping the status
// carried by *fiber.Error and masking everything else as a 500.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}

func corsMiddleware(origin string) fiber.Handler {
	if origin == "" {
		origin = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins: origin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	})
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)))
		return err
	}
}
