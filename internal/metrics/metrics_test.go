package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorHikeLifecycle(t *testing.T) {
	c := NewCollector(20, 50*time.Millisecond, 12.5)

	c.HikeStarted()
	c.HikeStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(c.ActiveHikes))

	c.HikeFinished(true)
	c.HikeFinished(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.ActiveHikes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HikesFinished.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HikesFinished.WithLabelValues("stopped")))

	c.UpdateInc()
	c.DegenerateInc()
	c.TickObserve(time.Microsecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.UpdatesEmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DegenerateSegments))
	assert.Equal(t, 0.05, testutil.ToFloat64(c.TickInterval))
	assert.Equal(t, 12.5, testutil.ToFloat64(c.TrailLength))
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector(20, 50*time.Millisecond, 1)
	c.UpdateInc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "trailsim_position_updates_total 1"))
	assert.Contains(t, body, "trailsim_speed_mps 20")
}
