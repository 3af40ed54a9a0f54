package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satori-video/streams/internal/health"
	"github.com/satori-video/streams/metric"
)

func TestHealthzReportsHealthyByDefault(t *testing.T) {
	srv := health.NewServer(":0", nil, nil, nil)
	defer srv.Shutdown(context.Background())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.ServeHTTPForTest(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got health.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.True(t, got.Healthy)
}

func TestHealthzReportsUnhealthyStatus(t *testing.T) {
	srv := health.NewServer(":0", nil, func() health.Status {
		return health.Status{Healthy: false, Detail: "frame source disconnected"}
	}, nil)
	defer srv.Shutdown(context.Background())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.ServeHTTPForTest(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var got health.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.False(t, got.Healthy)
	require.Equal(t, "frame source disconnected", got.Detail)
}

func TestMetricsServesPrometheusRegistry(t *testing.T) {
	reg := metric.NewRegistry()
	reg.FramesIngested.WithLabelValues("file").Inc()

	srv := health.NewServer(":0", reg, nil, nil)
	defer srv.Shutdown(context.Background())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.ServeHTTPForTest(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "satori_video_source_frames_ingested_total")
}

func TestMetricsWithoutRegistryIsEmpty(t *testing.T) {
	srv := health.NewServer(":0", nil, nil, nil)
	defer srv.Shutdown(context.Background())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.ServeHTTPForTest(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
}
