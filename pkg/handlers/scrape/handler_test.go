package scrape

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/posture-exporter/pkg/metrics"
	"github.com/de-tools/posture-exporter/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRenderer struct{}

func (failingRenderer) Render() ([]byte, error) {
	return nil, errors.New("gather exploded")
}

func TestHandler_Metrics_ServesSnapshot(t *testing.T) {
	registry := metrics.NewRegistry()
	registry.Replace(&domain.CollectionSnapshot{
		Samples: []domain.MetricSample{{
			Policy: "CIS Kubernetes V1.24 Benchmark",
			Zone:   "Entire Infrastructure",
			Kind:   domain.MetricFailedControls,
			Value:  106,
		}},
		CompletedAt: time.Now().UTC(),
	})
	handler := NewHandler(registry)

	recorder := httptest.NewRecorder()
	handler.Metrics(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, metrics.ContentType, recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Body.String(),
		`sysdig_posture_failed_controls{policy="CIS Kubernetes V1.24 Benchmark",zone="Entire Infrastructure"} 106`)
}

func TestHandler_Metrics_EmptyBodyBeforeFirstSnapshot(t *testing.T) {
	handler := NewHandler(metrics.NewRegistry())

	recorder := httptest.NewRecorder()
	handler.Metrics(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "sysdig_posture_")
}

func TestHandler_Metrics_RenderFailureServesEmptyOK(t *testing.T) {
	handler := NewHandler(failingRenderer{})

	recorder := httptest.NewRecorder()
	handler.Metrics(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, recorder.Body.String())
}
