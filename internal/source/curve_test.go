package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const curvePayload = `{
  "data": {
    "poolData": [
      {
        "id": "3pool",
        "apy": {"total": 4.2, "apy": 9.9},
        "bribeApy": 1.5,
        "tradingFee": 0.3,
        "gaugeRewards": [
          {"token": "CRV", "apy": 2.0},
          {"token": "LDO", "apy": 0.7}
        ]
      },
      {
        "address": "0xabc",
        "apy": 7.25,
        "fee": "0.04"
      },
      {
        "id": "empty-pool"
      },
      {
        "apy": 1.0
      }
    ]
  }
}`

func TestCurveFetchParsesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(curvePayload))
	}))
	defer srv.Close()

	samples, err := NewCurve(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// Pool without id and address is dropped.
	if len(samples) != 3 {
		t.Fatalf("len(samples) = %d, want 3", len(samples))
	}

	first := samples[0]
	if first.PoolID != "3pool" {
		t.Errorf("PoolID = %q, want %q", first.PoolID, "3pool")
	}
	if *first.APY != 4.2 {
		t.Errorf("APY = %v, want 4.2 (nested total preferred)", *first.APY)
	}
	if *first.Bribe != 1.5 {
		t.Errorf("Bribe = %v, want 1.5", *first.Bribe)
	}
	if *first.TradingFee != 0.3 {
		t.Errorf("TradingFee = %v, want 0.3", *first.TradingFee)
	}
	if *first.CRVReward != 2.0 {
		t.Errorf("CRVReward = %v, want 2.0 (case-insensitive token match)", *first.CRVReward)
	}

	second := samples[1]
	if second.PoolID != "0xabc" {
		t.Errorf("PoolID = %q, want address fallback %q", second.PoolID, "0xabc")
	}
	if *second.APY != 7.25 {
		t.Errorf("APY = %v, want scalar 7.25", *second.APY)
	}
	if *second.TradingFee != 0.04 {
		t.Errorf("TradingFee = %v, want fee fallback 0.04 from string", *second.TradingFee)
	}
	if *second.CRVReward != 0 || *second.Bribe != 0 {
		t.Errorf("missing rewards should default to 0, got crv=%v bribe=%v", *second.CRVReward, *second.Bribe)
	}

	third := samples[2]
	if *third.APY != 0 || *third.Bribe != 0 || *third.TradingFee != 0 || *third.CRVReward != 0 {
		t.Errorf("missing numeric fields should all be 0.0, got %+v", third)
	}
	if third.APY == nil {
		t.Error("missing numeric fields must never stay null")
	}
}

func TestCurveFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewCurve(srv.URL).Fetch(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestCurveFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refused connection

	_, err := NewCurve(srv.URL).Fetch(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestCurveFetchInvalidPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"poolData": "not-a-list"}}`))
	}))
	defer srv.Close()

	_, err := NewCurve(srv.URL).Fetch(context.Background())
	if !errors.Is(err, ErrInvalidData) {
		t.Errorf("error = %v, want ErrInvalidData", err)
	}
}

func TestParseCurveAPY(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"nested total", `{"total": 3.5}`, 3.5},
		{"nested apy fallback", `{"apy": 2.5}`, 2.5},
		{"total wins over apy", `{"total": 1.0, "apy": 9.0}`, 1.0},
		{"scalar", `5.5`, 5.5},
		{"string scalar", `"6.5"`, 6.5},
		{"null", `null`, 0},
		{"empty object", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseCurveAPY([]byte(tt.raw)); got != tt.want {
				t.Errorf("parseCurveAPY(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
