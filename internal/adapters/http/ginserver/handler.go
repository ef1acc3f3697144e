package ginserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vshulcz/Twintick/internal/domain"
	"github.com/vshulcz/Twintick/internal/ports"
	"go.uber.org/zap"
)

// FailureBody is rendered whenever the snapshot could not be fetched.
const FailureBody = "Something went wrong pulling the value from the channel"

const textPlain = "text/plain; charset=utf-8"

// Handler exposes the current counter snapshot over HTTP.
type Handler struct {
	src          ports.SnapshotSource
	logger       *zap.Logger
	legacyStatus bool
}

// Option tweaks a Handler.
type Option func(*Handler)

// WithLegacyErrorStatus answers failed lookups with 200 instead of a 5xx status.
func WithLegacyErrorStatus(enabled bool) Option {
	return func(h *Handler) { h.legacyStatus = enabled }
}

// WithLogger sets the logger used for failed lookups.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler wires a snapshot source into a gin-compatible HTTP handler.
func NewHandler(src ports.SnapshotSource, opts ...Option) *Handler {
	h := &Handler{src: src, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Index handles `GET /` with one "Value X: n" line per counter.
func (h *Handler) Index(c *gin.Context) {
	snap, err := h.src.Current(c.Request.Context())
	if err != nil {
		h.httpError(c, err)
		return
	}
	c.Data(http.StatusOK, textPlain, []byte(snap.String()))
}

func (h *Handler) httpError(c *gin.Context, err error) {
	status := http.StatusServiceUnavailable
	if errors.Is(err, domain.ErrTimeout) {
		status = http.StatusGatewayTimeout
	}
	h.logger.Warn("snapshot lookup failed", zap.Error(err), zap.Int("status", status))
	if h.legacyStatus {
		status = http.StatusOK
	}
	c.Data(status, textPlain, []byte(FailureBody))
}
