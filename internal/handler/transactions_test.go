package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateDepositValidation(t *testing.T) {
	// Validation runs before the store is touched.
	handler := CreateDeposit(nil, nil)

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
			body:       `{"amount": 100, "asset": "usdc"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero amount",
			body:       `{"user_id": "alice", "amount": 0}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative amount",
			body:       `{"user_id": "alice", "amount": -1}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/transactions/deposits", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestCreateWithdrawalValidation(t *testing.T) {
	handler := CreateWithdrawal(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/withdrawals",
		strings.NewReader(`{"user_id": "", "amount": 50}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestListDepositsRequiresUser(t *testing.T) {
	handler := ListDeposits(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/deposits", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantSkip  int
		wantLimit int
	}{
		{name: "defaults", query: "", wantSkip: 0, wantLimit: 50},
		{name: "explicit", query: "?skip=10&limit=25", wantSkip: 10, wantLimit: 25},
		{name: "limit capped", query: "?limit=500", wantSkip: 0, wantLimit: 50},
		{name: "negative skip ignored", query: "?skip=-3", wantSkip: 0, wantLimit: 50},
		{name: "non-numeric ignored", query: "?skip=abc&limit=xyz", wantSkip: 0, wantLimit: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/transactions/deposits"+tt.query, nil)
			skip, limit := pagination(req)
			if skip != tt.wantSkip || limit != tt.wantLimit {
				t.Errorf("pagination = (%d, %d), want (%d, %d)", skip, limit, tt.wantSkip, tt.wantLimit)
			}
		})
	}
}
