package probe

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sebelasdpib2/photo-bot/pkg/logger"
)

func NewProbeRoutes(router fiber.Router, state StateProvider, startedAt time.Time, l logger.Interface) {
	r := &Probe{state: state, startedAt: startedAt, now: time.Now, logger: l}

	{
		router.Get("/health", r.health)
		router.Get("/ready", r.ready)
	}
}
