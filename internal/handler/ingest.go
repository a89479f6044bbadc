package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/yieldscope/apy-tracker/internal/ingest"
)

// IngestStatus exposes the scheduler's last cycle outcome.
func IngestStatus(sched *ingest.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sched.Status())
	}
}

// TriggerIngest starts a fetch cycle immediately. The scheduler skips the
// request if a cycle is already running.
func TriggerIngest(sched *ingest.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Detach from the request context so the cycle survives the response.
		go sched.Trigger(context.WithoutCancel(r.Context()))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status":"triggered"}`))
	}
}
