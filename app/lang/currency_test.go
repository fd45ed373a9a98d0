package lang

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRatesGetSameCode(t *testing.T) {
	r := newTestRates()
	rate, ok := r.Get("USD", "USD")
	if !ok || rate != 1 {
		t.Errorf("USD->USD = %v, %v", rate, ok)
	}
	// even for codes the table has never seen
	rate, ok = r.Get("XXX", "XXX")
	if !ok || rate != 1 {
		t.Errorf("XXX->XXX = %v, %v", rate, ok)
	}
}

func TestRatesDirectLookup(t *testing.T) {
	r := newTestRates()
	rate, ok := r.Get("USD", "EUR")
	if !ok || rate != 0.85 {
		t.Errorf("USD->EUR = %v, %v, want 0.85", rate, ok)
	}
	rate, ok = r.Get("EUR", "USD")
	if !ok || rate != 1.18 {
		t.Errorf("EUR->USD = %v, %v, want 1.18", rate, ok)
	}
}

func TestRatesUSDBridge(t *testing.T) {
	r := newTestRates()
	// JPY has no row of its own in the fallback table
	rate, ok := r.Get("JPY", "INR")
	if !ok {
		t.Fatal("JPY->INR should bridge through USD")
	}
	want := (1 / 115.0) * 75
	if math.Abs(rate-want) > 1e-12 {
		t.Errorf("JPY->INR = %v, want %v", rate, want)
	}
}

func TestRatesUnknownCode(t *testing.T) {
	r := newTestRates()
	if _, ok := r.Get("USD", "XYZ"); ok {
		t.Error("USD->XYZ should not resolve")
	}
}

func TestRatesSet(t *testing.T) {
	r := newTestRates()
	if r.Set("USD", "GBP", 0) {
		t.Error("zero rate accepted")
	}
	if r.Set("USD", "GBP", -1) {
		t.Error("negative rate accepted")
	}
	if !r.Set("USD", "XYZ", 2.5) {
		t.Fatal("valid rate rejected")
	}
	rate, _ := r.Get("USD", "XYZ")
	if rate != 2.5 {
		t.Errorf("USD->XYZ = %v, want 2.5", rate)
	}
	back, _ := r.Get("XYZ", "USD")
	if back != 1/2.5 {
		t.Errorf("XYZ->USD = %v, want exact reciprocal %v", back, 1/2.5)
	}
}

func TestRatesRefreshFromEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result":"success","rates":{"USD":1,"EUR":0.9,"JPY":150}}`)
	}))
	defer srv.Close()

	r := NewRatesFrom(srv.URL, time.Hour)
	rate, ok := r.Get("USD", "EUR")
	if !ok || rate != 0.9 {
		t.Errorf("USD->EUR = %v, %v, want fetched 0.9", rate, ok)
	}
	// cross rates are bridged through the USD quotes at rebuild time
	rate, ok = r.Get("EUR", "JPY")
	if !ok || math.Abs(rate-150/0.9) > 1e-9 {
		t.Errorf("EUR->JPY = %v, %v, want %v", rate, ok, 150/0.9)
	}
}

func TestRatesRefreshFailureKeepsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRatesFrom(srv.URL, time.Hour)
	rate, ok := r.Get("USD", "EUR")
	if !ok || rate != 0.85 {
		t.Errorf("after failed refresh USD->EUR = %v, %v, want fallback 0.85", rate, ok)
	}
}

func TestRatesRefreshOnlyWhenStale(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"result":"success","rates":{"USD":1,"EUR":0.9}}`)
	}))
	defer srv.Close()

	r := NewRatesFrom(srv.URL, time.Hour)
	if n := hits.Load(); n != 1 {
		t.Fatalf("construction fetched %d times, want 1", n)
	}
	r.Get("USD", "EUR")
	r.Get("EUR", "USD")
	if n := hits.Load(); n != 1 {
		t.Errorf("fresh cache refetched: %d hits", n)
	}

	r.mu.Lock()
	r.fetchedAt = time.Now().Add(-2 * time.Hour)
	r.mu.Unlock()
	r.Get("USD", "EUR")
	if n := hits.Load(); n != 2 {
		t.Errorf("stale cache did not refetch: %d hits", n)
	}
}

// A successful refresh rebuilds the table from scratch, so manual setrate
// overrides do not survive it. Long-standing behavior; documents relying on
// overrides should avoid a live endpoint.
func TestRefreshDiscardsOverrides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result":"success","rates":{"USD":1,"EUR":0.9}}`)
	}))
	defer srv.Close()

	r := NewRatesFrom(srv.URL, time.Hour)
	if !r.Set("USD", "EUR", 2) {
		t.Fatal("override rejected")
	}
	rate, _ := r.Get("USD", "EUR")
	if rate != 2 {
		t.Fatalf("override not visible: %v", rate)
	}

	r.mu.Lock()
	r.fetchedAt = time.Now().Add(-2 * time.Hour)
	r.mu.Unlock()
	rate, _ = r.Get("USD", "EUR")
	if rate != 0.9 {
		t.Errorf("after refresh USD->EUR = %v, want endpoint value 0.9", rate)
	}
}
