package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/makersnr-dev/qr-order-nr-admin-v2/config"
)

// StatusError is a non-2xx answer from the upstream service. The body text
// is carried verbatim so the admin surface can pass it through.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Code, e.Body)
}

// TransportError is a network-level failure before any upstream answer.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "upstream request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err means the upstream could not serve the
// call, either a non-2xx answer or a network failure.
func IsUnavailable(err error) bool {
	var se *StatusError
	var te *TransportError
	return errors.As(err, &se) || errors.As(err, &te)
}

// Client issues authenticated requests against the upstream order/menu
// service. Every call is a fresh request; no retries, no caching.
type Client struct {
	apiBase string
	token   string
	client  *http.Client
}

// NewClient creates a client for the configured upstream.
func NewClient(cfg *config.UpstreamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiBase: cfg.APIBase,
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchOrders retrieves the full order snapshot.
func (c *Client) FetchOrders(ctx context.Context, includeCleared bool) ([]OrderPayload, error) {
	path := "/orders?includeCleared=0"
	if includeCleared {
		path = "/orders?includeCleared=1"
	}
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var orders []OrderPayload
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal orders response: %w", err)
	}
	return orders, nil
}

// FetchMenu retrieves the full menu snapshot.
func (c *Client) FetchMenu(ctx context.Context) ([]MenuPayload, error) {
	body, err := c.do(ctx, http.MethodGet, "/menu", nil)
	if err != nil {
		return nil, err
	}
	var menu []MenuPayload
	if err := json.Unmarshal(body, &menu); err != nil {
		return nil, fmt.Errorf("failed to unmarshal menu response: %w", err)
	}
	return menu, nil
}

// PatchOrderStatus forwards a status change for one order.
func (c *Client) PatchOrderStatus(ctx context.Context, id, status string) error {
	_, err := c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id), map[string]string{"status": status})
	return err
}

// PostRefund asks the upstream to refund one order.
func (c *Client) PostRefund(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, "/refund/"+url.PathEscape(id), nil)
	return err
}

// CreateMenu forwards a new menu item.
func (c *Client) CreateMenu(ctx context.Context, m MenuPatch) error {
	_, err := c.do(ctx, http.MethodPost, "/menu", m)
	return err
}

// PatchMenu forwards a partial menu update.
func (c *Client) PatchMenu(ctx context.Context, id int64, m MenuPatch) error {
	_, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/menu/%d", id), m)
	return err
}

// FetchDailyCode retrieves today's access code.
func (c *Client) FetchDailyCode(ctx context.Context) (*DailyCodePayload, error) {
	return c.dailyCode(ctx, http.MethodGet, "/daily-code")
}

// RegenDailyCode asks the upstream to generate a fresh code.
func (c *Client) RegenDailyCode(ctx context.Context) (*DailyCodePayload, error) {
	return c.dailyCode(ctx, http.MethodPost, "/daily-code/regen")
}

// ClearDailyCode asks the upstream to drop any override code.
func (c *Client) ClearDailyCode(ctx context.Context) (*DailyCodePayload, error) {
	return c.dailyCode(ctx, http.MethodPost, "/daily-code/clear")
}

func (c *Client) dailyCode(ctx context.Context, method, path string) (*DailyCodePayload, error) {
	body, err := c.do(ctx, method, path, nil)
	if err != nil {
		return nil, err
	}
	var code DailyCodePayload
	if err := json.Unmarshal(body, &code); err != nil {
		return nil, fmt.Errorf("failed to unmarshal daily-code response: %w", err)
	}
	return &code, nil
}

// do performs one request and returns the response body. Non-2xx answers
// come back as *StatusError.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	return body, nil
}
