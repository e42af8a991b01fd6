package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/discord-bot-collab/weatherbot/internal/geo"
	"github.com/discord-bot-collab/weatherbot/internal/scheduler"
	"github.com/discord-bot-collab/weatherbot/internal/subscription"
)

var validate = validator.New()

// RegisterRoutes wires the operator-facing handlers into the Fiber app:
// subscription inspection, a manual forecast tick, and a geocoder probe.
func RegisterRoutes(app *fiber.App, store *subscription.Store, sched *scheduler.Scheduler, resolver scheduler.Resolver) {
	v1 := app.Group("/api/v1")

	v1.Get("/subscriptions", func(c *fiber.Ctx) error {
		return c.JSON(store.All())
	})

	v1.Get("/subscriptions/:guild", func(c *fiber.Ctx) error {
		sub, err := store.Get(c.Params("guild"))
		if err != nil {
			if errors.Is(err, subscription.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no subscription for guild")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read subscription")
		}
		return c.JSON(sub)
	})

	// Manual tick for operators: runs the same pipeline as the daily job.
	v1.Post("/forecast/run", func(c *fiber.Ctx) error {
		sched.RunAll(c.Context())
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"status": "run completed",
		})
	})

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		var q geocodeQuery
		q.Q = c.Query("q")
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coord, err := resolver.Resolve(c.Context(), q.Q)
		if err != nil {
			if errors.Is(err, geo.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no coordinates found for address")
			}
			return fiber.NewError(fiber.StatusBadGateway, "geocoding failed")
		}

		return c.JSON(fiber.Map{
			"address":    q.Q,
			"normalized": geo.Normalize(q.Q),
			"coordinate": coord,
		})
	})
}

// geocodeQuery holds query parameters for the geocoder probe.
type geocodeQuery struct {
	Q string `validate:"required"`
}
