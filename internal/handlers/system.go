package handlers

import (
	"time"

	"github.com/ahmetk3436/companion/internal/store"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime = time.Now()
var Version = "1.0.0"

type SystemHandler struct {
	db         *gorm.DB
	characters *store.CharacterStore
}

func NewSystemHandler(db *gorm.DB, characters *store.CharacterStore) *SystemHandler {
	return &SystemHandler{db: db, characters: characters}
}

func (h *SystemHandler) Health(c *fiber.Ctx) error {
	dbStatus := "ok"
	statusCode := fiber.StatusOK

	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		statusCode = fiber.StatusServiceUnavailable
	} else if err := sqlDB.PingContext(c.UserContext()); err != nil {
		dbStatus = "unreachable: " + err.Error()
		statusCode = fiber.StatusServiceUnavailable
	}

	var characters int64
	if statusCode == fiber.StatusOK {
		if characters, err = h.characters.Count(c.UserContext()); err != nil {
			dbStatus = "error: " + err.Error()
			statusCode = fiber.StatusServiceUnavailable
		}
	}

	overall := "ok"
	if statusCode != fiber.StatusOK {
		overall = "degraded"
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":     overall,
		"service":    "companion",
		"version":    Version,
		"time":       time.Now().UTC().Format(time.RFC3339),
		"uptime":     time.Since(startTime).String(),
		"db":         dbStatus,
		"characters": characters,
	})
}
