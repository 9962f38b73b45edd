// Package geocode resolves street addresses with the Google Geocoding API.
package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

const (
	DefaultBaseURL      = "https://maps.googleapis.com/maps/api/geocode/json"
	DefaultRegionSuffix = "Metro Manila, Philippines"
)

type Config struct {
	BaseURL      string
	APIKey       string
	RegionSuffix string
	// RequestsPerSecond caps outbound calls; zero disables the limit.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client implements ports.Geocoder.
type Client struct {
	baseURL    string
	apiKey     string
	suffix     string
	limiter    *rate.Limiter
	httpClient *http.Client
	log        zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		suffix:     cfg.RegionSuffix,
		limiter:    limiter,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Geocode returns the first result's location for address. The configured
// region suffix is appended unless the address already ends with it.
func (c *Client) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	if c.apiKey == "" {
		return domain.Coordinates{}, fmt.Errorf("%w: api key not set", domain.ErrGeocodeFailed)
	}
	query := c.withSuffix(address)

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode: %w", err)
	}

	u := c.baseURL + "?address=" + url.QueryEscape(query) + "&key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode: create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("address", query).Msg("geocoding request failed")
		return domain.Coordinates{}, fmt.Errorf("%w: %v", domain.ErrGeocodeFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %v", domain.ErrGeocodeFailed, err)
	}

	status := gjson.GetBytes(body, "status").String()
	loc := gjson.GetBytes(body, "results.0.geometry.location")
	if status != "OK" || !loc.Exists() {
		c.log.Warn().
			Str("status", status).
			Str("error_message", gjson.GetBytes(body, "error_message").String()).
			Str("address", query).
			Msg("geocoding failed")
		return domain.Coordinates{}, fmt.Errorf("%w: status %q", domain.ErrGeocodeFailed, status)
	}

	return domain.Coordinates{
		Lat: loc.Get("lat").Float(),
		Lng: loc.Get("lng").Float(),
	}, nil
}

func (c *Client) withSuffix(address string) string {
	address = strings.TrimSpace(address)
	if c.suffix == "" || strings.HasSuffix(strings.ToLower(address), strings.ToLower(c.suffix)) {
		return address
	}
	return address + ", " + c.suffix
}
