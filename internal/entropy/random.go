// Package entropy provides the uniform integer source used for rival shuffles
// and sandbox skirmishes. A random.org backed Client is available for live
// matches; Seeded gives reproducible runs.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	mrand "math/rand"
	"net/http"
	"sync"
	"time"
)

// Source yields uniform integers in [lo, hi].
type Source interface {
	IntRange(lo, hi int) int
}

// Client provides true random numbers from random.org with a local pool.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client

	mu   sync.Mutex
	pool []float64
}

const randomOrgEndpoint = "https://api.random.org/json-rpc/4/invoke"

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: randomOrgEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Float returns a random float64 in [0, 1). Uses the pool, refilling from
// random.org when low. Falls back to crypto/rand on API failure.
func (c *Client) Float() float64 {
	if c == nil {
		return cryptoRandFloat()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pool) < 10 {
		c.refill()
	}

	if len(c.pool) == 0 {
		return cryptoRandFloat()
	}

	val := c.pool[0]
	c.pool = c.pool[1:]
	return val
}

// IntRange returns a uniform integer in [lo, hi]. A nil Client uses crypto/rand.
// When the pool runs low the call blocks on a random.org request (up to the
// HTTP client timeout), so a live host sees an occasional slow call.
func (c *Client) IntRange(lo, hi int) int {
	return scale(c.Float(), lo, hi)
}

func (c *Client) refill() {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateDecimalFractions",
		"params": map[string]any{
			"apiKey":        c.apiKey,
			"n":             100,
			"decimalPlaces": 6,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		slog.Debug("random.org marshal failed", "error", err)
		return
	}

	resp, err := c.client.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Debug("random.org fetch failed", "error", err)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Debug("random.org read failed", "error", err)
		return
	}

	var result struct {
		Result struct {
			Random struct {
				Data []float64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		slog.Debug("random.org parse failed", "error", err)
		return
	}

	if result.Error != nil {
		slog.Debug("random.org API error", "error", result.Error.Message)
		return
	}

	c.pool = append(c.pool, result.Result.Random.Data...)
	slog.Debug("random.org pool refilled", "count", len(result.Result.Random.Data))
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Seeded is a deterministic Source for reproducible matches and tests.
type Seeded struct {
	rng *mrand.Rand
}

// NewSeeded creates a Seeded source.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

// IntRange returns a uniform integer in [lo, hi].
func (s *Seeded) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// Float returns a float64 in [0, 1).
func (s *Seeded) Float() float64 {
	return s.rng.Float64()
}

// Shuffle permutes n elements uniformly with src (Fisher-Yates).
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := src.IntRange(0, i)
		swap(i, j)
	}
}

func scale(f float64, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	n := lo + int(math.Floor(f*float64(hi-lo+1)))
	if n > hi {
		n = hi
	}
	return n
}

// cryptoRandFloat generates a random float64 using crypto/rand as fallback.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
