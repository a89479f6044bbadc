package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/yieldscope/apy-tracker/internal/store"
)

const defaultSubgraphAPI = "https://api.thegraph.com/subgraphs/name/curvefi/curve"

const subgraphQuery = `{
  pools(first: 1000) {
    id
    swapFee
    gauge {
      rewardData {
        apy
        token { symbol }
      }
    }
  }
}`

// Subgraph fetches pool metrics from The Graph's on-chain indexer. Per-pool
// APY is the sum of all gauge reward APYs; the reward token of interest
// contributes crv_reward and every other reward sums into bribe.
type Subgraph struct {
	client      *http.Client
	url         string
	rewardToken string
}

func NewSubgraph(url string) *Subgraph {
	if url == "" {
		url = defaultSubgraphAPI
	}
	return &Subgraph{
		client:      &http.Client{Timeout: fetchTimeout},
		url:         url,
		rewardToken: "crv",
	}
}

func (g *Subgraph) Name() string { return "curve-subgraph" }

type subgraphResponse struct {
	Data struct {
		Pools []struct {
			ID      string    `json:"id"`
			SwapFee flexFloat `json:"swapFee"`
			Gauge   *struct {
				RewardData []struct {
					Apy   flexFloat `json:"apy"`
					Token struct {
						Symbol string `json:"symbol"`
					} `json:"token"`
				} `json:"rewardData"`
			} `json:"gauge"`
		} `json:"pools"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (g *Subgraph) Fetch(ctx context.Context) ([]store.PoolMetricSample, error) {
	body, err := json.Marshal(map[string]string{"query": subgraphQuery})
	if err != nil {
		return nil, fmt.Errorf("marshal subgraph query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("subgraph request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: subgraph: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: subgraph status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload subgraphResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode subgraph payload: %v", ErrInvalidData, err)
	}
	if len(payload.Errors) > 0 {
		return nil, fmt.Errorf("%w: subgraph: %s", ErrInvalidData, payload.Errors[0].Message)
	}

	var samples []store.PoolMetricSample
	for _, pool := range payload.Data.Pools {
		if pool.ID == "" {
			continue
		}

		var total, bribe, crv float64
		if pool.Gauge != nil {
			for _, reward := range pool.Gauge.RewardData {
				apy := float64(reward.Apy)
				total += apy
				if strings.EqualFold(reward.Token.Symbol, g.rewardToken) {
					crv += apy
				} else {
					bribe += apy
				}
			}
		}

		samples = append(samples, store.PoolMetricSample{
			PoolID:     pool.ID,
			APY:        fp(total),
			Bribe:      fp(bribe),
			TradingFee: fp(float64(pool.SwapFee)),
			CRVReward:  fp(crv),
		})
	}
	return samples, nil
}
