package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	m := New()

	m.MessageAccepted()
	m.MessageAccepted()
	m.MessageSuppressed("duplicate")
	m.MessageSuppressed("empty")
	m.MessageSuppressed("duplicate")
	m.DeliveryDropped()
	m.ConnectionsChanged(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.accepted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.suppressed.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.suppressed.WithLabelValues("empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.connections))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ConnectionsChanged(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chat_active_connections 1")
}
