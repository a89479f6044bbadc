package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yieldscope/apy-tracker/internal/apy"
	"github.com/yieldscope/apy-tracker/internal/cache"
	"github.com/yieldscope/apy-tracker/internal/store"
)

// MetricStore is the slice of the metric store the pool handlers read from.
type MetricStore interface {
	ListPoolIDs(ctx context.Context) ([]string, error)
	History(ctx context.Context, poolID string, start, end *time.Time) ([]store.PoolMetricSample, error)
	LatestSample(ctx context.Context, poolID string) (*store.PoolMetricSample, error)
}

func ListPools(s MetricStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pools, err := s.ListPoolIDs(r.Context())
		if err != nil {
			http.Error(w, `{"error":"failed to list pools"}`, http.StatusInternalServerError)
			return
		}
		if pools == nil {
			pools = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"pools": pools})
	}
}

// PoolHistory returns the ascending APY series for one pool, optionally
// bounded by start and end query params in RFC 3339 form.
func PoolHistory(s MetricStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poolID := chi.URLParam(r, "poolID")

		start, err := parseTimeParam(r, "start")
		if err != nil {
			http.Error(w, `{"error":"invalid start timestamp"}`, http.StatusBadRequest)
			return
		}
		end, err := parseTimeParam(r, "end")
		if err != nil {
			http.Error(w, `{"error":"invalid end timestamp"}`, http.StatusBadRequest)
			return
		}

		samples, err := s.History(r.Context(), poolID, start, end)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrInvalidRange):
				http.Error(w, `{"error":"start must not be after end"}`, http.StatusBadRequest)
			case errors.Is(err, store.ErrNoSamples):
				http.Error(w, `{"error":"no samples for pool"}`, http.StatusNotFound)
			default:
				http.Error(w, `{"error":"failed to load history"}`, http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pool_id": poolID,
			"samples": samples,
		})
	}
}

// PoolCurrent returns the latest sample plus compounded APY over the trailing
// 7 and 30 day windows.
func PoolCurrent(s MetricStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poolID := chi.URLParam(r, "poolID")

		latest, err := s.LatestSample(r.Context(), poolID)
		if err != nil {
			if errors.Is(err, store.ErrNoSamples) {
				http.Error(w, `{"error":"no samples for pool"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"failed to load sample"}`, http.StatusInternalServerError)
			return
		}

		now := time.Now().UTC()
		week, err := compoundSince(r.Context(), s, poolID, now.AddDate(0, 0, -7))
		if err != nil {
			http.Error(w, `{"error":"failed to load history"}`, http.StatusInternalServerError)
			return
		}
		month, err := compoundSince(r.Context(), s, poolID, now.AddDate(0, 0, -30))
		if err != nil {
			http.Error(w, `{"error":"failed to load history"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pool_id":      poolID,
			"latest":       latest,
			"compound_7d":  week,
			"compound_30d": month,
		})
	}
}

// PoolAPR serves the pool's current APR, read through the optional redis
// cache. A nil cache degrades to hitting the store every time.
func PoolAPR(s MetricStore, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poolID := chi.URLParam(r, "poolID")

		if apr, ok := c.CurrentAPR(r.Context(), poolID); ok {
			writeAPR(w, poolID, apr, true)
			return
		}

		latest, err := s.LatestSample(r.Context(), poolID)
		if err != nil {
			if errors.Is(err, store.ErrNoSamples) {
				http.Error(w, `{"error":"no samples for pool"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"failed to load sample"}`, http.StatusInternalServerError)
			return
		}

		var apr float64
		if latest.APY != nil {
			apr = *latest.APY
		}
		c.SetCurrentAPR(r.Context(), poolID, apr)
		writeAPR(w, poolID, apr, false)
	}
}

// TrainingSource supplies regression rows for the forecast endpoint.
type TrainingSource interface {
	TrainingRows(ctx context.Context) (features [][]float64, targets []float64, err error)
}

// Forecast fits a linear model over stored samples and predicts total APY
// from the posted component yields.
func Forecast(s TrainingSource) http.HandlerFunc {
	type request struct {
		Bribe      float64 `json:"bribe"`
		TradingFee float64 `json:"trading_fee"`
		CRVReward  float64 `json:"crv_reward"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		features, targets, err := s.TrainingRows(r.Context())
		if err != nil {
			http.Error(w, `{"error":"failed to load training data"}`, http.StatusInternalServerError)
			return
		}

		model, err := apy.Fit(features, targets)
		if err != nil {
			if errors.Is(err, apy.ErrNoTrainingData) {
				http.Error(w, `{"error":"not enough samples to fit a model"}`, http.StatusServiceUnavailable)
				return
			}
			http.Error(w, `{"error":"failed to fit model"}`, http.StatusInternalServerError)
			return
		}

		predicted, err := model.Predict([]float64{req.Bribe, req.TradingFee, req.CRVReward})
		if err != nil {
			http.Error(w, `{"error":"failed to predict"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"predicted_apy": predicted,
			"samples":       len(targets),
		})
	}
}

func compoundSince(ctx context.Context, s MetricStore, poolID string, since time.Time) (float64, error) {
	samples, err := s.History(ctx, poolID, &since, nil)
	if err != nil {
		if errors.Is(err, store.ErrNoSamples) {
			return 0, nil
		}
		return 0, err
	}
	returns := make([]*float64, len(samples))
	for i, sample := range samples {
		returns[i] = sample.APY
	}
	return apy.Compound(returns), nil
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func writeAPR(w http.ResponseWriter, poolID string, apr float64, cached bool) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"pool_id": poolID,
		"apr":     apr,
		"cached":  cached,
	})
}
