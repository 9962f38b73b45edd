// Package backend is the client for the merchant REST API.
package backend

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/lalaba/merchant-app/internal/api/metrics"
	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the REST backend with the persisted bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     ports.TokenStore
	log        zerolog.Logger
}

// New creates a backend client.
func New(cfg Config, tokens ports.TokenStore, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		log:        log,
	}
}

// AcceptOrder calls POST /orders/{id}/accept-merchant.
func (c *Client) AcceptOrder(ctx context.Context, orderID string) (*domain.AcceptResult, error) {
	body, err := c.do(ctx, "accept_order", http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/accept-merchant", nil, false)
	if err != nil {
		return nil, err
	}
	var res domain.AcceptResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, c.malformed("accept_order", body, err)
	}
	if res.OrderID == "" {
		res.OrderID = orderID
	}
	return &res, nil
}

// MerchantOrders calls GET /orders/merchant.
func (c *Client) MerchantOrders(ctx context.Context) ([]domain.Order, error) {
	body, err := c.do(ctx, "merchant_orders", http.MethodGet, "/orders/merchant", nil, false)
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0)
	if err := decodeField(body, "orders", &orders); err != nil {
		return nil, c.malformed("merchant_orders", body, err)
	}
	return orders, nil
}

// SetupBusiness calls POST /businesses/setup.
func (c *Client) SetupBusiness(ctx context.Context, in ports.SetupBusinessInput) error {
	_, err := c.do(ctx, "setup_business", http.MethodPost, "/businesses/setup", in, true)
	return err
}

// CreateCategory calls POST /businesses/categories.
func (c *Client) CreateCategory(ctx context.Context, in ports.CreateCategoryInput) (*domain.Category, error) {
	body, err := c.do(ctx, "create_category", http.MethodPost, "/businesses/categories", in, true)
	if err != nil {
		return nil, err
	}
	cat := domain.Category{Name: in.Name, Icon: in.Icon, SortOrder: in.SortOrder}
	if err := decodeObject(body, "category", &cat); err != nil {
		return nil, c.malformed("create_category", body, err)
	}
	return &cat, nil
}

// CreateProduct calls POST /businesses/{merchantId}/products.
func (c *Client) CreateProduct(ctx context.Context, merchantID string, in ports.CreateProductInput) (*domain.Product, error) {
	if merchantID == "" {
		return nil, &domain.ValidationError{Fields: []string{"merchantId"}, Msg: "merchant id is required"}
	}
	body, err := c.do(ctx, "create_product", http.MethodPost, "/businesses/"+url.PathEscape(merchantID)+"/products", in, true)
	if err != nil {
		return nil, err
	}
	p := domain.Product{Name: in.Name, Category: in.Category, Price: in.Price, ImageURL: in.ImageURL, Available: in.Available}
	if err := decodeObject(body, "product", &p); err != nil {
		return nil, c.malformed("create_product", body, err)
	}
	return &p, nil
}

// Products calls GET /businesses/{merchantId}/products.
func (c *Client) Products(ctx context.Context, merchantID string) ([]domain.Product, error) {
	if merchantID == "" {
		return nil, &domain.ValidationError{Fields: []string{"merchantId"}, Msg: "merchant id is required"}
	}
	body, err := c.do(ctx, "list_products", http.MethodGet, "/businesses/"+url.PathEscape(merchantID)+"/products", nil, false)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0)
	if err := decodeField(body, "products", &products); err != nil {
		return nil, c.malformed("list_products", body, err)
	}
	return products, nil
}

// UpdateService calls PATCH /businesses/{merchantId}/services/serviceId/{name}.
func (c *Client) UpdateService(ctx context.Context, merchantID string, in ports.UpdateServiceInput) (*domain.Service, error) {
	if merchantID == "" {
		return nil, &domain.ValidationError{Fields: []string{"merchantId"}, Msg: "merchant id is required"}
	}
	path := "/businesses/" + url.PathEscape(merchantID) + "/services/serviceId/" + url.PathEscape(in.Name)
	body, err := c.do(ctx, "update_service", http.MethodPatch, path, in, true)
	if err != nil {
		return nil, err
	}
	svc := domain.Service{
		ID:                         in.ServiceID,
		Name:                       in.Name,
		Price:                      in.Price,
		Inclusions:                 in.Inclusions,
		DefaultDetergentID:         in.DefaultDetergentID,
		DefaultFabricConditionerID: in.DefaultFabricConditionerID,
	}
	if err := decodeObject(body, "service", &svc); err != nil {
		return nil, c.malformed("update_service", body, err)
	}
	return &svc, nil
}

// do sends one request and returns the JSON body of a 2xx response.
// idempotent writes carry an Idempotency-Key derived from the payload so a
// resubmitted identical write is recognisable server-side.
func (c *Client) do(ctx context.Context, endpoint, method, path string, payload any, idempotent bool) ([]byte, error) {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
		metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	token, err := c.tokens.Get(ctx, ports.KeyUserToken)
	if err != nil {
		return nil, fmt.Errorf("%s: read token: %w", endpoint, err)
	}
	if token == "" {
		c.log.Error().Str("endpoint", endpoint).Msg("no auth token found")
		return nil, domain.ErrMissingToken
	}

	var reqBody io.Reader
	var raw []byte
	if payload != nil {
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", endpoint, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotent && raw != nil {
		sum := sha256.Sum256(append([]byte(method+" "+path+"\n"), raw...))
		req.Header.Set("Idempotency-Key", hex.EncodeToString(sum[:]))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("endpoint", endpoint).Msg("backend request failed")
		return nil, fmt.Errorf("%s: %w: %v", endpoint, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: read response: %v", endpoint, domain.ErrNetwork, err)
	}

	if len(bytes.TrimSpace(body)) == 0 && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		outcome = "ok"
		return []byte("{}"), nil
	}

	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "rejected"
		apiErr := &domain.APIError{
			Status: resp.StatusCode,
			Raw:    truncate(string(body), 2048),
		}
		if !strings.Contains(ct, "text/html") && gjson.ValidBytes(body) {
			apiErr.Message = gjson.GetBytes(body, "error").String()
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.log.Warn().Str("endpoint", endpoint).Int("status", resp.StatusCode).Str("error", apiErr.Message).Msg("backend rejected request")
		return nil, fmt.Errorf("%s: %w", endpoint, apiErr)
	}

	if strings.Contains(ct, "text/html") || !gjson.ValidBytes(body) {
		outcome = "malformed"
		return nil, c.malformed(endpoint, body, fmt.Errorf("status %d, content type %q", resp.StatusCode, ct))
	}

	outcome = "ok"
	return body, nil
}

func (c *Client) malformed(endpoint string, body []byte, cause error) error {
	c.log.Error().Err(cause).Str("endpoint", endpoint).Str("raw_body", truncate(string(body), 2048)).Msg("unexpected response format")
	return fmt.Errorf("%s: %w", endpoint, domain.ErrMalformedResponse)
}

// decodeField unmarshals the array at field, or the whole body when the body
// itself is an array.
func decodeField(body []byte, field string, out any) error {
	res := gjson.GetBytes(body, field)
	if !res.Exists() {
		if gjson.ParseBytes(body).IsArray() {
			return json.Unmarshal(body, out)
		}
		return fmt.Errorf("missing %q", field)
	}
	if res.Type == gjson.Null {
		return nil
	}
	return json.Unmarshal([]byte(res.Raw), out)
}

// decodeObject merges the object at field, or the whole body, into out.
// An empty acknowledgement leaves out untouched.
func decodeObject(body []byte, field string, out any) error {
	res := gjson.GetBytes(body, field)
	if res.Exists() && res.IsObject() {
		return json.Unmarshal([]byte(res.Raw), out)
	}
	if gjson.ParseBytes(body).IsObject() {
		return json.Unmarshal(body, out)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
