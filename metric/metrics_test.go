package metric

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncConnectAttempt(PathNew)
		m.IncConnectFailure(PathReconnect, "transport-connection")
		m.IncReconnect(TriggerGraceful)
		m.IncFrameReceived(true)
		m.IncTokenRefresh(false)
		m.ObserveFirstFrame(0.25)
	})
}

func TestCountersRecord(t *testing.T) {
	reg := NewRegistry()
	m := reg.Metrics()

	m.IncConnectAttempt(PathNew)
	m.IncConnectAttempt(PathNew)
	m.IncConnectAttempt(PathReconnect)
	m.IncFrameReceived(false)
	m.IncFrameReceived(true)
	m.IncTokenRefresh(true)

	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.ConnectAttempts.WithLabelValues(PathNew)))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.ConnectAttempts.WithLabelValues(PathReconnect)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.FramesReceived))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DepthCarried))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.TokenRefreshes.WithLabelValues("ok")))
}

func TestHandlerServesExposition(t *testing.T) {
	reg := NewRegistry()
	reg.Metrics().IncConnectAttempt(PathNew)

	srv := httptest.NewServer(reg.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
