package restapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sebelasdpib2/photo-bot/internal/controller/restapi/probe"
	"github.com/sebelasdpib2/photo-bot/pkg/logger"
)

// NewRouter mounts the liveness and readiness probes.
func NewRouter(app *fiber.App, state probe.StateProvider, startedAt time.Time, l logger.Interface) {
	probe.NewProbeRoutes(app, state, startedAt, l)
}
