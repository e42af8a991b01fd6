package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org/search"

// BackoffConfig controls retry behaviour for geocoder calls.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// Resolver resolves free-text addresses to coordinates through a
// Nominatim-style geocoding API, backed by a persistent cache.
//
// Only confirmed empty results are cached; transport, decode and rate-limit
// failures surface as errors and the next lookup retries.
type Resolver struct {
	client    *http.Client
	cache     *Cache
	baseURL   string
	userAgent string
	backoff   BackoffConfig
	circuit   *gobreaker.CircuitBreaker
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithBaseURL overrides the geocoding endpoint (used by tests).
func WithBaseURL(u string) ResolverOption {
	return func(r *Resolver) { r.baseURL = u }
}

// WithBackoff overrides the retry configuration.
func WithBackoff(b BackoffConfig) ResolverOption {
	return func(r *Resolver) { r.backoff = b }
}

// NewResolver creates a Resolver using the given HTTP client and cache.
// The User-Agent is required by Nominatim's usage policy.
func NewResolver(client *http.Client, cache *Cache, userAgent string, opts ...ResolverOption) *Resolver {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	r := &Resolver{
		client:    client,
		cache:     cache,
		baseURL:   defaultBaseURL,
		userAgent: userAgent,
		backoff: BackoffConfig{
			MaxRetries:      2,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the coordinate for an address. Cache hits (including
// cached no-results) return without any network call. On a miss a single
// geocoding request is issued and the outcome is cached only when the
// geocoder answered: first result on success, a permanent no-result marker
// when the result set is empty.
func (r *Resolver) Resolve(ctx context.Context, address string) (Coordinate, error) {
	key := Normalize(address)

	if coord, hit, err := r.cache.Lookup(key); hit {
		return coord, err
	}

	lat, lon, err := r.query(ctx, address)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if serr := r.cache.StoreNotFound(key); serr != nil {
				return Coordinate{}, serr
			}
			return Coordinate{}, ErrNotFound
		}
		// Transient failure: not cached, retried on next lookup.
		return Coordinate{}, fmt.Errorf("geocode %q: %w", address, err)
	}

	if err := r.cache.StoreCoordinate(key, lat, lon); err != nil {
		return Coordinate{}, err
	}
	coord, _, cerr := r.cache.Lookup(key)
	return coord, cerr
}

// query performs the geocoding request with retries and circuit breaking.
func (r *Resolver) query(ctx context.Context, address string) (lat, lon string, err error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", address)
		values.Set("format", "json")
		values.Set("limit", "1")

		req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", r.baseURL, values.Encode()), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", r.userAgent)
		return req, nil
	}

	resp, err := r.doWithResilience(ctx, buildRequest)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", "", fmt.Errorf("decode geocoder response: %w", err)
	}

	if len(results) == 0 {
		return "", "", ErrNotFound
	}
	return results[0].Lat, results[0].Lon, nil
}

// doWithResilience executes the request with exponential backoff and a
// circuit breaker around the geocoder.
func (r *Resolver) doWithResilience(ctx context.Context, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := r.circuit.Execute(func() (interface{}, error) {
			resp, execErr := r.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= r.backoff.MaxRetries {
			return nil, lastErr
		}

		delay := r.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if r.backoff.MaxInterval > 0 && delay > r.backoff.MaxInterval {
			delay = r.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
