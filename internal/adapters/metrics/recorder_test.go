package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/family-draft-cli/internal/ports"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCountsOutcomes(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveFetch(ports.OutcomeOK, 120*time.Millisecond)
	r.ObserveFetch(ports.OutcomeOK, 80*time.Millisecond)
	r.ObserveFetch(ports.OutcomeTransport, time.Second)
	r.ObserveFetch(ports.OutcomeConfig, 0)
	r.ObserveSubmit("pick", ports.OutcomeRejected, 300*time.Millisecond)
	r.ObserveSubmit("undo", ports.OutcomeOK, 200*time.Millisecond)
	r.SetSequence(7)

	assert.InDelta(t, 2, testutil.ToFloat64(r.fetches.WithLabelValues(ports.OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.fetches.WithLabelValues(ports.OutcomeTransport)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.fetches.WithLabelValues(ports.OutcomeConfig)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.submits.WithLabelValues("pick", ports.OutcomeRejected)), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(r.snapshotSequence), 0)

	assert.Equal(t, 2, testutil.CollectAndCount(r.submitDuration))
}

func TestRecorderHandlerServesOwnRegistry(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveFetch(ports.OutcomeStale, 10*time.Millisecond)

	server := httptest.NewServer(NewServer("", r).Handler)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `fdraft_sync_fetch_total{outcome="stale"} 1`)
	assert.Contains(t, string(body), "fdraft_sync_fetch_duration_seconds_count 1")
	assert.NotContains(t, string(body), "go_goroutines")
}
