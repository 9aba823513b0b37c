package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/noah-isme/claims-api/pkg/config"
)

// ErrUnavailable reports that no distance could be produced for a pair of locations.
var ErrUnavailable = errors.New("distance unavailable")

// Locator resolves the road distance between two free-form locations.
type Locator interface {
	DistanceKm(ctx context.Context, from, to string) (float64, error)
}

// Client calls an HTTP distance API guarded by a rate limiter and a circuit breaker.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

type distanceResponse struct {
	DistanceKm *float64 `json:"distanceKm"`
}

// NewClient builds a client from configuration. httpClient may be nil.
func NewClient(cfg config.GeoConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "geo-distance",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// an unknown location is an answer, not an outage
			return err == nil || errors.Is(err, ErrUnavailable)
		},
	})
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		breaker: breaker,
	}
}

// DistanceKm returns the distance in kilometres or an error when the lookup could not be completed.
func (c *Client) DistanceKm(ctx context.Context, from, to string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("geo rate limit: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, from, to)
	})
	if err != nil {
		return 0, err
	}
	return result.(float64), nil
}

func (c *Client) fetch(ctx context.Context, from, to string) (float64, error) {
	query := url.Values{}
	query.Set("from", from)
	query.Set("to", to)
	endpoint := fmt.Sprintf("%s/distance?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build geo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("geo request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity:
		return 0, ErrUnavailable
	case resp.StatusCode != http.StatusOK:
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload distanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode geo response: %w", err)
	}
	if payload.DistanceKm == nil || *payload.DistanceKm < 0 {
		return 0, ErrUnavailable
	}
	return *payload.DistanceKm, nil
}

// NoopLocator is used when the distance integration is disabled.
type NoopLocator struct{}

// DistanceKm always reports the distance as unavailable.
func (NoopLocator) DistanceKm(context.Context, string, string) (float64, error) {
	return 0, ErrUnavailable
}
