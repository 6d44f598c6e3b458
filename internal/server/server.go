package server

import (
	"context"
	"log"

	"haskify-be/internal/bootstrap"
	"haskify-be/internal/config"
	"haskify-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	// Multipart overhead on top of the largest accepted file
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.App.MaxUploadBytes + 1024*1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	// Routes
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.HealthController.RegisterRoutes(app)
	c.TutorController.RegisterRoutes(app)
	c.RunnerController.RegisterRoutes(app)

	api := app.Group("/api")

	c.SessionController.RegisterRoutes(api)
	c.MaterialController.RegisterRoutes(api)
	c.AdminController.RegisterRoutes(api)
	c.QuizController.RegisterRoutes(api)
	c.TranscriptController.RegisterRoutes(api)
	c.ContactController.RegisterRoutes(api)
}
