package scrape

import (
	"net/http"

	"github.com/de-tools/posture-exporter/pkg/metrics"
	"github.com/rs/zerolog"
)

// Renderer produces the exposition body served to scrapers.
type Renderer interface {
	Render() ([]byte, error)
}

type Handler struct {
	registry Renderer
}

func NewHandler(registry Renderer) *Handler {
	return &Handler{registry: registry}
}

// Metrics serves the current snapshot in exposition format. A render
// failure is logged and answered with an empty 200 body so a broken
// snapshot never takes the scrape endpoint down with it.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	body, err := h.registry.Render()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to render metrics")
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", metrics.ContentType)
	if _, err := w.Write(body); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to write metrics response")
	}
}
