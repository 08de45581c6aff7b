package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/fsmtrail/pkg/adapters/memory"
	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenReader struct{}

func (brokenReader) Read(context.Context, string, string, string) ([]domain.TransitionRecord, error) {
	return nil, errors.New("disk on fire")
}

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	log := memory.NewEventLog()
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range []domain.TransitionRecord{
		{To: "pending"},
		{From: domain.StateRef("pending"), To: "shipped"},
		{From: domain.StateRef("pending"), To: "delivered"},
	} {
		r.EntityType, r.EntityID, r.Attribute = "order", "42", "status"
		r.OccurredAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, log.Append(ctx, r))
	}
	return NewHandler(history.New(log), opts...)
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if out != nil {
		require.NoError(t, json.NewDecoder(w.Body).Decode(out), w.Body.String())
	}
	return w.Code
}

func TestServer_History(t *testing.T) {
	h := newTestHandler(t)

	var records []domain.TransitionRecord
	assert.Equal(t, http.StatusOK, get(t, h, "/entities/order/42/status/history", &records))
	require.Len(t, records, 3)
	assert.Equal(t, "pending", records[0].To)

	var empty []domain.TransitionRecord
	assert.Equal(t, http.StatusOK, get(t, h, "/entities/order/404/status/history", &empty))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestServer_ReplayValidateStatistics(t *testing.T) {
	h := newTestHandler(t)

	var replay history.Result
	assert.Equal(t, http.StatusOK, get(t, h, "/entities/order/42/status/replay", &replay))
	assert.Equal(t, 3, replay.TransitionCount)
	assert.Equal(t, "delivered", *replay.FinalState)

	var validation history.Validation
	assert.Equal(t, http.StatusOK, get(t, h, "/entities/order/42/status/validate", &validation))
	assert.False(t, validation.Valid)
	assert.Len(t, validation.Errors, 1)

	var stats history.Stats
	assert.Equal(t, http.StatusOK, get(t, h, "/entities/order/42/status/statistics", &stats))
	assert.Equal(t, 2, stats.TransitionFrequency["pending→shipped"]+stats.TransitionFrequency["pending→delivered"])

	var report history.Report
	assert.Equal(t, http.StatusOK, get(t, h, "/entities/order/42/status/report", &report))
	assert.Equal(t, 3, report.Stats.TotalTransitions)
}

func TestServer_BlankArgumentIsBadRequest(t *testing.T) {
	h := newTestHandler(t)

	var body map[string]string
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/entities/order/%20/status/replay", &body))
	assert.Contains(t, body["error"], "entity id")
}

func TestServer_ReaderFailure(t *testing.T) {
	h := NewHandler(history.New(brokenReader{}))

	var body map[string]string
	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/entities/order/1/status/history", &body))
	assert.Contains(t, body["error"], "disk on fire")
}

func TestServer_HealthAndMounts(t *testing.T) {
	h := newTestHandler(t, WithMount("/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mounted":true}`))
	})))

	var health map[string]string
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz", &health))
	assert.Equal(t, "ok", health["status"])

	var mounted map[string]bool
	assert.Equal(t, http.StatusOK, get(t, h, "/metrics", &mounted))
	assert.True(t, mounted["mounted"])
}
