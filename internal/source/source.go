// Package source fetches pool yield metrics from external data providers
// and normalizes them into stored sample rows.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/yieldscope/apy-tracker/internal/store"
)

// fetchTimeout bounds one provider round trip.
const fetchTimeout = 10 * time.Second

var (
	// ErrUnavailable marks a transport failure or timeout talking to a provider.
	ErrUnavailable = errors.New("source unavailable")

	// ErrInvalidData marks a successful call whose payload shape could not be
	// parsed.
	ErrInvalidData = errors.New("source returned invalid data")
)

// Source is one provider of pool metric samples. A Fetch is a single network
// round trip; implementations leave RecordedAt zero and the caller stamps it.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]store.PoolMetricSample, error)
}

// StatusReporter receives per-source outcome updates for observability.
type StatusReporter interface {
	SourceSucceeded(name string, samples int)
	SourceFailed(name string)
}

// flexFloat decodes a JSON number that some providers serialize as a string
// (The Graph returns BigDecimal fields quoted).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// fp boxes a float. Provider samples always carry concrete values: a field
// missing from the raw payload becomes 0.0, not null.
func fp(v float64) *float64 { return &v }
