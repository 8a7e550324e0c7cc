package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/storage"
)

func TestMetricsServerExposesGatewayMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := storage.NewMetrics(reg)
	metrics.Seeds.Inc()
	metrics.Saves.WithLabelValues("local").Inc()

	srv, err := startMetricsServer("127.0.0.1:0", reg, zap.NewNop())
	require.NoError(t, err)

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "streakd_remote_seeds_total 1")
	require.Contains(t, string(body), `streakd_saves_total{mode="local"} 1`)

	require.NoError(t, srv.Close())
	_, err = http.Get("http://" + srv.Addr() + "/metrics")
	require.Error(t, err)
}
