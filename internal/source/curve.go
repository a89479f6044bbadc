package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/yieldscope/apy-tracker/internal/store"
)

const defaultCurveAPI = "https://api.curve.fi/api/getPools/ethereum/main"

// Curve fetches pool metrics from the public Curve pool-data API.
type Curve struct {
	client      *http.Client
	url         string
	rewardToken string
}

func NewCurve(url string) *Curve {
	if url == "" {
		url = defaultCurveAPI
	}
	return &Curve{
		client:      &http.Client{Timeout: fetchTimeout},
		url:         url,
		rewardToken: "crv",
	}
}

func (c *Curve) Name() string { return "curve-api" }

type curvePool struct {
	ID           string          `json:"id"`
	Address      string          `json:"address"`
	Apy          json.RawMessage `json:"apy"`
	BribeApy     flexFloat       `json:"bribeApy"`
	TradingFee   *flexFloat      `json:"tradingFee"`
	Fee          *flexFloat      `json:"fee"`
	GaugeRewards []struct {
		Token string    `json:"token"`
		Apy   flexFloat `json:"apy"`
	} `json:"gaugeRewards"`
}

type curveResponse struct {
	Data struct {
		PoolData []curvePool `json:"poolData"`
	} `json:"data"`
}

func (c *Curve) Fetch(ctx context.Context) ([]store.PoolMetricSample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("curve api request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: curve api: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: curve api status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload curveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode curve payload: %v", ErrInvalidData, err)
	}

	var samples []store.PoolMetricSample
	for _, pool := range payload.Data.PoolData {
		poolID := pool.ID
		if poolID == "" {
			poolID = pool.Address
		}
		if poolID == "" {
			continue
		}

		tradingFee := 0.0
		if pool.TradingFee != nil {
			tradingFee = float64(*pool.TradingFee)
		} else if pool.Fee != nil {
			tradingFee = float64(*pool.Fee)
		}

		crv := 0.0
		for _, reward := range pool.GaugeRewards {
			if strings.EqualFold(reward.Token, c.rewardToken) {
				crv = float64(reward.Apy)
				break
			}
		}

		samples = append(samples, store.PoolMetricSample{
			PoolID:     poolID,
			APY:        fp(parseCurveAPY(pool.Apy)),
			Bribe:      fp(float64(pool.BribeApy)),
			TradingFee: fp(tradingFee),
			CRVReward:  fp(crv),
		})
	}
	return samples, nil
}

// parseCurveAPY handles the two shapes the Curve API has used for the apy
// field: a nested object with total/apy sub-fields, or a bare number.
func parseCurveAPY(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var nested struct {
		Total *flexFloat `json:"total"`
		Apy   *flexFloat `json:"apy"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		if nested.Total != nil {
			return float64(*nested.Total)
		}
		if nested.Apy != nil {
			return float64(*nested.Apy)
		}
		// An object with neither sub-field still parses; fall through in
		// case the value is actually a scalar.
	}
	var scalar flexFloat
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return float64(scalar)
	}
	return 0
}
