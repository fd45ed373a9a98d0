package lang

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultRateURL is a free endpoint returning USD-based quotes.
	DefaultRateURL = "https://open.er-api.com/v6/latest/USD"
	// DefaultRateTTL is how long fetched rates are served before a refresh.
	DefaultRateTTL = time.Hour

	fetchTimeout = 5 * time.Second
)

// Rates caches pairwise currency exchange rates. It is seeded with static
// fallback data so conversions work offline, refreshed from the network at
// most once per TTL, and safe for concurrent use. Network failures are
// swallowed: the cache keeps serving whatever it has.
type Rates struct {
	mu        sync.Mutex
	table     map[string]map[string]float64
	fetchedAt time.Time
	ttl       time.Duration
	url       string
	client    *http.Client
}

// NewRates builds a cache on the default endpoint and TTL, attempting one
// initial refresh.
func NewRates() *Rates {
	return NewRatesFrom(DefaultRateURL, DefaultRateTTL)
}

// NewRatesFrom builds a cache on a custom endpoint and TTL. One refresh is
// attempted immediately; if it fails, the fallback table stands until the
// TTL elapses.
func NewRatesFrom(url string, ttl time.Duration) *Rates {
	r := &Rates{
		table:     fallbackRates(),
		fetchedAt: time.Now(),
		ttl:       ttl,
		url:       url,
		client:    &http.Client{Timeout: fetchTimeout},
	}
	r.refresh()
	return r
}

// Get returns the rate multiplying an amount in from to yield an amount in
// to. Identical codes are always 1. A stale cache is refreshed first; on
// refresh failure the existing table is used. Codes with no direct entry are
// bridged through USD.
func (r *Rates) Get(from, to string) (float64, bool) {
	if from == to {
		return 1, true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.fetchedAt) > r.ttl {
		r.refreshLocked()
	}
	if row, ok := r.table[from]; ok {
		if rate, ok := row[to]; ok {
			return rate, true
		}
	}
	if from != "USD" && to != "USD" {
		usd := r.table["USD"]
		fromRate, okFrom := usd[from]
		toRate, okTo := usd[to]
		if okFrom && okTo && fromRate != 0 {
			return (1 / fromRate) * toRate, true
		}
	}
	return 0, false
}

// Set installs a manual override in both directions; the reverse rate is the
// exact reciprocal. Non-positive rates are rejected. Overrides last until the
// next successful network refresh, which rebuilds the table from scratch.
func (r *Rates) Set(from, to string, rate float64) bool {
	if rate <= 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.table[from] == nil {
		r.table[from] = make(map[string]float64)
	}
	if r.table[to] == nil {
		r.table[to] = make(map[string]float64)
	}
	r.table[from][to] = rate
	r.table[to][from] = 1 / rate
	return true
}

func (r *Rates) refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshLocked()
}

// refreshLocked fetches USD-based quotes and rebuilds the whole table by
// bridging every pair through USD. The timestamp advances only on success,
// so a dead endpoint is retried on the next stale Get.
func (r *Rates) refreshLocked() {
	table, err := fetchRateTable(r.client, r.url)
	if err != nil {
		return
	}
	r.table = table
	r.fetchedAt = time.Now()
}

func fetchRateTable(client *http.Client, url string) (map[string]map[string]float64, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate endpoint returned %s", resp.Status)
	}

	var body struct {
		Result string             `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Result != "success" {
		return nil, errors.New("rate endpoint reported failure")
	}
	if len(body.Rates) == 0 {
		return nil, errors.New("rate endpoint returned no rates")
	}

	usd := make(map[string]float64, len(body.Rates)+1)
	usd["USD"] = 1
	for code, rate := range body.Rates {
		if rate > 0 {
			usd[code] = rate
		}
	}

	table := map[string]map[string]float64{"USD": usd}
	for code, usdRate := range usd {
		if code == "USD" {
			continue
		}
		row := make(map[string]float64, len(usd))
		for target, targetRate := range usd {
			row[target] = targetRate / usdRate
		}
		table[code] = row
	}
	return table, nil
}

// fallbackRates is the static seed table used before any successful fetch.
func fallbackRates() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"USD": {
			"USD": 1, "EUR": 0.85, "GBP": 0.72, "CAD": 1.25,
			"JPY": 115, "AUD": 1.35, "CNY": 6.45, "INR": 75,
		},
		"EUR": {
			"EUR": 1, "USD": 1.18, "GBP": 0.86, "CAD": 1.47,
			"JPY": 135, "AUD": 1.59, "CNY": 7.60, "INR": 88,
		},
		"GBP": {
			"GBP": 1, "USD": 1.39, "EUR": 1.16, "CAD": 1.70,
			"JPY": 155, "AUD": 1.85, "CNY": 8.85, "INR": 102,
		},
		"CAD": {
			"CAD": 1, "USD": 0.80, "EUR": 0.68, "GBP": 0.59,
			"JPY": 92, "AUD": 1.10, "CNY": 5.20, "INR": 60,
		},
	}
}
