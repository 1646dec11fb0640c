package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/shc-api/pkg/errors"
)

// Pinger is a dependency the service cannot work without, e.g. the message
// broker.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	deps    map[string]Pinger
	timeout time.Duration
}

// NewHandler builds the health endpoints. Nil dependencies are skipped, so
// a deployment without a broker is always ready.
func NewHandler(deps map[string]Pinger) *Handler {
	live := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			live[name] = p
		}
	}
	return &Handler{
		deps:    live,
		timeout: 2 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.check(ctx); err != nil {
		c.JSON(err.StatusCode(), gin.H{
			"status": "DOWN",
			"reason": err.Message,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// check pings every dependency and reports the first one that fails.
func (h *Handler) check(ctx context.Context) *apperrors.AppError {
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			return apperrors.NewUnavailable(name+" unreachable", err)
		}
	}
	return nil
}
