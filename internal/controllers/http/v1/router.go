package http

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"plantcare-api/internal/services/reminders"
	"plantcare-api/internal/services/weather"
	"plantcare-api/internal/storage"
	"plantcare-api/pkg/logger"
)

type routes struct {
	weather   *weather.Service
	scheduler *reminders.Scheduler
	store     storage.Store
	l         *logger.Logger
}

func NewRouter(
	app *fiber.App,
	weatherService *weather.Service,
	scheduler *reminders.Scheduler,
	store storage.Store,
	l *logger.Logger,
) {
	r := &routes{
		weather:   weatherService,
		scheduler: scheduler,
		store:     store,
		l:         l,
	}

	// Swagger documentation
	app.Get("/swagger/doc.json", func(c *fiber.Ctx) error {
		swaggerData, err := os.ReadFile("docs/swagger.json")
		if err != nil {
			return c.Status(fiber.ErrInternalServerError.Code).JSON(fiber.Map{"error": "Failed to read Swagger documentation"})
		}

		c.Set("Content-Type", "application/json")
		return c.Send(swaggerData)
	})

	app.Get("/swagger/*", swagger.New(swagger.Config{
		URL:         "/swagger/doc.json",
		DeepLinking: true,
	}))

	// API routes
	app.Get("/weather", r.handleWeatherCall)
	app.Get("/companions", r.handleCompanions)

	app.Post("/gardens", r.handleCreateGarden)
	app.Get("/gardens/:id", r.handleGetGarden)
	app.Get("/gardens/:id/advice", r.handleGardenAdvice)
	app.Post("/gardens/:id/plants", r.handleCreatePlant)
	app.Delete("/plants/:id", r.handleDeletePlant)

	app.Post("/plants/:id/reminders", r.handleCreateReminder)
	app.Post("/reminders/:id/complete", r.handleCompleteReminder)
	app.Post("/reminders/:id/skip", r.handleSkipReminder)
	app.Get("/reminders/due", r.handleDueReminders)
	app.Patch("/reminders/:id/notified", r.handleMarkNotified)
}
