package routes

import (
	"log/slog"
	"time"

	"github.com/ahmetk3436/companion/internal/handlers"
	"github.com/ahmetk3436/companion/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the Fiber app with the middleware stack shared by every route.
func NewApp(m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "companion v" + handlers.Version,
		ServerHeader: "companion",
		BodyLimit:    10 * 1024 * 1024, // image-to-video requests may carry inline images
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{
				"error": message,
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	app.Use(recover.New(recover.Config{
		EnableStackTrace: false,
	}))

	// Security headers
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	if m != nil {
		app.Use(m.Middleware())
	}

	// Request logger
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if c.Path() == "/api/health" || c.Path() == "/metrics" {
			return err
		}
		slog.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", metrics.StatusOf(c, err),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.IP(),
		)
		return err
	})

	return app
}

func Setup(
	app *fiber.App,
	m *metrics.Metrics,
	generatedDir string,
	publicPrefix string,
	systemHandler *handlers.SystemHandler,
	characterHandler *handlers.CharacterHandler,
	chatHandler *handlers.ChatHandler,
	mediaHandler *handlers.MediaHandler,
) {
	// ─── Public ──────────────────────────────────────────────────────────
	app.Get("/api/health", systemHandler.Health)
	if m != nil {
		app.Get("/metrics", m.Handler())
	}

	// Generated media
	app.Static(publicPrefix, generatedDir, fiber.Static{
		ByteRange: true,
		MaxAge:    3600,
	})

	api := app.Group("/api")

	// Characters
	api.Get("/characters", characterHandler.ListCharacters)
	api.Post("/characters", characterHandler.CreateCharacter)
	api.Get("/characters/:id", characterHandler.GetCharacter)

	// Chat
	api.Post("/chat", chatHandler.Chat)

	// Media generation
	api.Post("/generate-image", mediaHandler.GenerateImage)
	api.Post("/generate-video", mediaHandler.CreateVideo)
	api.Get("/generate-video", mediaHandler.VideoStatus)
	api.Post("/text-to-speech", mediaHandler.TextToSpeech)
}
