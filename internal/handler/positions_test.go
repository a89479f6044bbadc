package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yieldscope/apy-tracker/internal/position"
)

func testAggregator(st *memPositionStore) *position.Aggregator {
	return position.NewAggregator(st, st, slog.Default())
}

func TestRecordEarningsValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "invalid JSON",
			body:       `{invalid`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing user_id",
			body:       `{"pool_id": "3pool", "amount": 100}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing pool_id",
			body:       `{"user_id": "alice", "amount": 100}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero amount",
			body:       `{"user_id": "alice", "pool_id": "3pool", "amount": 0}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative amount",
			body:       `{"user_id": "alice", "pool_id": "3pool", "amount": -5}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	handler := RecordEarnings(testAggregator(newMemPositionStore()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/earnings", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRecordEarningsProjects(t *testing.T) {
	st := newMemPositionStore()
	st.addSample("3pool", fptr(10))
	st.addSample("3pool", fptr(10))
	handler := RecordEarnings(testAggregator(st))

	body := strings.NewReader(`{"user_id": "alice", "pool_id": "3pool", "amount": 100}`)
	req := httptest.NewRequest(http.MethodPost, "/api/earnings", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var proj position.EarningsProjection
	if err := json.NewDecoder(rec.Body).Decode(&proj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if proj.TotalAmount != 100 {
		t.Errorf("total_amount = %v, want 100", proj.TotalAmount)
	}
	if diff := proj.ProjectedEarning - 21.0; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("projected_earning = %v, want 21.0", proj.ProjectedEarning)
	}
}

func TestGetPositionsRequiresUser(t *testing.T) {
	handler := GetPositions(testAggregator(newMemPositionStore()))

	req := httptest.NewRequest(http.MethodGet, "/api/positions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetPositionsEmptySummary(t *testing.T) {
	handler := GetPositions(testAggregator(newMemPositionStore()))

	req := httptest.NewRequest(http.MethodGet, "/api/positions?user_id=alice", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var summary position.PositionsSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Positions == nil || len(summary.Positions) != 0 {
		t.Errorf("positions = %v, want empty slice", summary.Positions)
	}
}
