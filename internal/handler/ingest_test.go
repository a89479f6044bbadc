package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yieldscope/apy-tracker/internal/ingest"
	"github.com/yieldscope/apy-tracker/internal/store"
)

type noopFetcher struct{}

func (noopFetcher) Fetch(context.Context) ([]store.PoolMetricSample, string, error) {
	return nil, "test", nil
}

type noopSampleStore struct{}

func (noopSampleStore) UpsertSamples(context.Context, []store.PoolMetricSample) (int, int, error) {
	return 0, 0, nil
}

func (noopSampleStore) SweepExpired(context.Context, int) (int64, error) {
	return 0, nil
}

func TestIngestStatus(t *testing.T) {
	sched := ingest.New(noopFetcher{}, noopSampleStore{}, ingest.Config{}, slog.Default(), nil)
	handler := IngestStatus(sched)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ingest/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status ingest.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.State != ingest.StatePending {
		t.Errorf("state = %q, want %q", status.State, ingest.StatePending)
	}
}

func TestTriggerIngestAccepted(t *testing.T) {
	sched := ingest.New(noopFetcher{}, noopSampleStore{}, ingest.Config{}, slog.Default(), nil)
	handler := TriggerIngest(sched)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ingest/trigger", nil))

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
}
