package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

func testBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      0,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	}
}

// TestNormalizeIdempotent verifies normalization applied twice equals once.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"  Exeter, UK ", "LONDON", "exeter, uk", "\tYork\n", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

// TestResolveCachesResult verifies the Exeter scenario: a successful lookup
// is cached, and an equivalent (differently trimmed/cased) address returns
// the identical value without a second network call.
func TestResolveCachesResult(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.URL.Query().Get("q"); got != "Exeter, UK" {
			t.Errorf("unexpected q parameter: %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Errorf("unexpected limit parameter: %q", got)
		}
		w.Write([]byte(`[{"lat":"50.7236","lon":"-3.5275"}]`))
	}))
	defer server.Close()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewResolver(server.Client(), cache, "test-agent", WithBaseURL(server.URL), WithBackoff(testBackoff()))

	coord, err := r.Resolve(context.Background(), "Exeter, UK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Coordinate{Latitude: 50.7236, Longitude: -3.5275}
	if coord != want {
		t.Fatalf("expected %+v, got %+v", want, coord)
	}

	// Equivalent string post-normalization: must be a cache hit.
	coord2, err := r.Resolve(context.Background(), "  exeter, uk ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coord2 != want {
		t.Fatalf("expected %+v, got %+v", want, coord2)
	}
	if calls != 1 {
		t.Fatalf("expected 1 network call, got %d", calls)
	}
}

// TestResolveCachesNotFound verifies a confirmed empty result is cached
// permanently: the second lookup fails fast without a network call.
func TestResolveCachesNotFound(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewResolver(server.Client(), cache, "test-agent", WithBaseURL(server.URL), WithBackoff(testBackoff()))

	for i := 0; i < 2; i++ {
		if _, err := r.Resolve(context.Background(), "nowhere at all"); err != ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 network call, got %d", calls)
	}
}

// TestResolveDoesNotCacheTransientFailure verifies server errors are not
// cached: the next lookup retries the geocoder.
func TestResolveDoesNotCacheTransientFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewResolver(server.Client(), cache, "test-agent", WithBaseURL(server.URL), WithBackoff(testBackoff()))

	if _, err := r.Resolve(context.Background(), "Exeter, UK"); err == nil {
		t.Fatal("expected an error")
	}
	if cache.Len() != 0 {
		t.Fatalf("transient failure must not be cached, got %d entries", cache.Len())
	}

	if _, err := r.Resolve(context.Background(), "Exeter, UK"); err == nil {
		t.Fatal("expected an error")
	}
	if calls != 2 {
		t.Fatalf("expected 2 network calls, got %d", calls)
	}
}

// TestCachePersistsAcrossReopen verifies cache entries survive a restart and
// keep their on-disk string form.
func TestCachePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	cache, err := OpenCache(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cache.StoreCoordinate("exeter, uk", "50.7236", "-3.5275"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cache.StoreNotFound("nowhere at all"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := OpenCache(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coord, hit, err := reopened.Lookup("exeter, uk")
	if !hit || err != nil {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	want := Coordinate{Latitude: 50.7236, Longitude: -3.5275}
	if coord != want {
		t.Fatalf("expected %+v, got %+v", want, coord)
	}

	if _, hit, err := reopened.Lookup("nowhere at all"); !hit || err != ErrNotFound {
		t.Fatalf("expected cached not-found, got hit=%v err=%v", hit, err)
	}
}
