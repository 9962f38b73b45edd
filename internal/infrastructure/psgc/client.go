// Package psgc reads Philippine administrative divisions from the PSGC API.
package psgc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

const (
	DefaultBaseURL    = "https://psgc.gitlab.io/api"
	DefaultRegionCode = "130000000"
)

type Config struct {
	BaseURL    string
	RegionCode string
	Timeout    time.Duration
}

// Client implements ports.DivisionDirectory for one region.
type Client struct {
	baseURL    string
	region     string
	httpClient *http.Client
	log        zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	region := cfg.RegionCode
	if region == "" {
		region = DefaultRegionCode
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    base,
		region:     region,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Cities lists the cities of the configured region. The region document's
// _cities_url is followed when present.
func (c *Client) Cities(ctx context.Context) ([]ports.Division, error) {
	citiesURL := fmt.Sprintf("%s/regions/%s/cities/", c.baseURL, c.region)

	region, err := c.get(ctx, fmt.Sprintf("%s/regions/%s/", c.baseURL, c.region))
	if err != nil {
		c.log.Warn().Err(err).Str("region", c.region).Msg("region lookup failed, using default cities url")
	} else if u := gjson.GetBytes(region, "_cities_url").String(); u != "" {
		citiesURL = u
	}

	body, err := c.get(ctx, citiesURL)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return divisions(body)
}

func (c *Client) Barangays(ctx context.Context, cityCode string) ([]ports.Division, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/cities/%s/barangays/", c.baseURL, cityCode))
	if err != nil {
		return nil, fmt.Errorf("list barangays: %w", err)
	}
	return divisions(body)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode), Raw: string(body)}
	}
	if !gjson.ValidBytes(body) {
		return nil, domain.ErrMalformedResponse
	}
	return body, nil
}

func divisions(body []byte) ([]ports.Division, error) {
	arr := gjson.ParseBytes(body)
	if !arr.IsArray() {
		return nil, domain.ErrMalformedResponse
	}
	out := make([]ports.Division, 0, len(arr.Array()))
	arr.ForEach(func(_, v gjson.Result) bool {
		out = append(out, ports.Division{
			Code:         v.Get("code").String(),
			Name:         v.Get("name").String(),
			ProvinceName: v.Get("provinceName").String(),
		})
		return true
	})
	return out, nil
}
