package metric_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/satori-video/streams/metric"
)

func TestFramesIngestedIncrements(t *testing.T) {
	r := metric.NewRegistry()
	r.FramesIngested.WithLabelValues("file").Inc()
	r.FramesIngested.WithLabelValues("file").Inc()

	require.Equal(t, float64(2), testutil.ToFloat64(r.FramesIngested.WithLabelValues("file")))
}

func TestObserveFrameLatency(t *testing.T) {
	r := metric.NewRegistry()
	created := time.Now().Add(-250 * time.Millisecond)
	r.ObserveFrameLatency(created, created.Add(250*time.Millisecond))

	require.Equal(t, 1, testutil.CollectAndCount(r.FrameLatency))
}
