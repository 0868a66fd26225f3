package probe

import (
	"net/http"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sebelasdpib2/photo-bot/internal/controller/restapi/probe/response"
	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/pkg/logger"
)

// StateProvider exposes the transport connection state.
type StateProvider interface {
	State() entity.ConnectionState
}

type Probe struct {
	state     StateProvider
	startedAt time.Time
	now       func() time.Time
	logger    logger.Interface
}

func (r *Probe) health(ctx *fiber.Ctx) error {
	now := r.now()

	return ctx.Status(http.StatusOK).JSON(response.Health{
		Status:        "ok",
		UptimeSeconds: now.Sub(r.startedAt).Seconds(),
		PID:           os.Getpid(),
		Timestamp:     now.UTC().Format(time.RFC3339),
	})
}

func (r *Probe) ready(ctx *fiber.Ctx) error {
	state := r.state.State()
	ts := r.now().UTC().Format(time.RFC3339)

	if state != entity.Open {
		r.logger.Debug("Probe - ready - not ready, connection state %s", state)

		return ctx.Status(http.StatusServiceUnavailable).JSON(response.Ready{
			Status:          "not_ready",
			ConnectionState: string(state),
			Timestamp:       ts,
		})
	}

	return ctx.Status(http.StatusOK).JSON(response.Ready{
		Status:          "ready",
		ConnectionState: string(state),
		Timestamp:       ts,
	})
}
