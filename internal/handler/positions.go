package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yieldscope/apy-tracker/internal/metrics"
	"github.com/yieldscope/apy-tracker/internal/position"
)

// RecordEarnings accepts a deposit and responds with the projected earnings
// for the user's updated position in that pool.
func RecordEarnings(agg *position.Aggregator) http.HandlerFunc {
	type request struct {
		UserID string  `json:"user_id"`
		PoolID string  `json:"pool_id"`
		Amount float64 `json:"amount"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.UserID == "" || req.PoolID == "" {
			http.Error(w, `{"error":"user_id and pool_id required"}`, http.StatusBadRequest)
			return
		}

		projection, err := agg.RecordDeposit(r.Context(), req.UserID, req.PoolID, req.Amount)
		if err != nil {
			if errors.Is(err, position.ErrInvalidAmount) {
				http.Error(w, `{"error":"amount must be positive"}`, http.StatusBadRequest)
				return
			}
			http.Error(w, `{"error":"failed to record deposit"}`, http.StatusInternalServerError)
			return
		}

		metrics.DepositsTotal.Inc()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(projection)
	}
}

// GetPositions summarizes every pool position a user holds.
func GetPositions(agg *position.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
			return
		}

		summary, err := agg.Aggregate(r.Context(), userID)
		if err != nil {
			http.Error(w, `{"error":"failed to aggregate positions"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(summary)
	}
}
