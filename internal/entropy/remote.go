package entropy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const randomOrgEndpoint = "https://api.random.org/json-rpc/4/invoke"

// refillBackoff spaces out refill attempts after a failure.
const refillBackoff = time.Minute

// Remote serves floats from a pool filled by random.org. Float never waits
// on the network: a low pool starts a background refill, and an empty pool
// falls back to crypto/rand.
type Remote struct {
	apiKey   string
	endpoint string
	batch    int
	client   *http.Client

	mu         sync.Mutex
	pool       []float64
	refilling  bool
	retryAfter time.Time
}

// NewRemote returns a random.org backed source, or nil when apiKey is empty.
// Callers should use Choose to get a usable Source either way.
func NewRemote(apiKey string, batch int) *Remote {
	if apiKey == "" {
		return nil
	}
	if batch <= 0 {
		batch = 100
	}
	return &Remote{
		apiKey:   apiKey,
		endpoint: randomOrgEndpoint,
		batch:    batch,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Choose returns r if it is usable, else a crypto source.
func Choose(r *Remote) Source {
	if r == nil {
		return Crypto{}
	}
	return r
}

func (r *Remote) Float() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pool) < max(1, r.batch/10) && !r.refilling && time.Now().After(r.retryAfter) {
		r.refilling = true
		go r.refillInBackground()
	}
	if len(r.pool) == 0 {
		return cryptoFloat()
	}
	v := r.pool[0]
	r.pool = r.pool[1:]
	return v
}

// Fill fetches one batch and adds it to the pool.
func (r *Remote) Fill(ctx context.Context) error {
	vals, err := r.fetch(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.pool = append(r.pool, vals...)
	r.mu.Unlock()
	slog.Debug("entropy pool refilled", "count", len(vals))
	return nil
}

func (r *Remote) refillInBackground() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := r.Fill(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.refilling = false
	if err != nil {
		r.retryAfter = time.Now().Add(refillBackoff)
		slog.Debug("entropy refill failed", "error", err)
	}
}

// Pooled reports how many draws are buffered.
func (r *Remote) Pooled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pool)
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      int            `json:"id"`
}

type rpcResponse struct {
	Result struct {
		Random struct {
			Data []float64 `json:"data"`
		} `json:"random"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (r *Remote) fetch(ctx context.Context) ([]float64, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "generateDecimalFractions",
		Params: map[string]any{
			"apiKey":        r.apiKey,
			"n":             r.batch,
			"decimalPlaces": 6,
		},
		ID: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("random.org: %s", out.Error.Message)
	}

	vals := make([]float64, 0, len(out.Result.Random.Data))
	for _, v := range out.Result.Random.Data {
		if v >= 0 && v < 1 {
			vals = append(vals, v)
		}
	}
	return vals, nil
}
