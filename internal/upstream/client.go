// Package upstream is the HTTP client for the live incident-management
// API. The sandbox only ever lists components from it (seed import) and
// deletes entities it created in demo mode (cleanup sweep).
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/statusgarden/sandbox/internal/domain"
	"golang.org/x/time/rate"
)

const defaultTimeout = 10 * time.Second

// Config holds upstream API settings.
type Config struct {
	BaseURL string
	PageID  string
	Token   string        // API key, sent as "Authorization: OAuth <token>"
	Timeout time.Duration // request timeout
	// DeleteRPS caps delete calls per second; zero means unthrottled.
	DeleteRPS float64
}

// Client talks to the live system. No internal retries: sweep callers
// re-attempt failed items on the next invocation.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an upstream client.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	limit := rate.Inf
	if config.DeleteRPS > 0 {
		limit = rate.Limit(config.DeleteRPS)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// StatusError is a non-2xx response from the live system.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// IsNotFound reports whether err is an upstream 404. The sweep treats a
// missing entity the same as a deleted one.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// ListComponents fetches the live component list for the configured page.
func (c *Client) ListComponents(ctx context.Context) ([]domain.Component, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resourceURL("components", ""), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	var components []domain.Component
	if err := json.NewDecoder(resp.Body).Decode(&components); err != nil {
		return nil, fmt.Errorf("decode components: %w", err)
	}
	return components, nil
}

// DeleteIncident deletes an incident by id.
func (c *Client) DeleteIncident(ctx context.Context, id string) error {
	return c.delete(ctx, "incidents", id)
}

// DeleteTemplate deletes an incident template by id.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.delete(ctx, "incident_templates", id)
}

// DeleteComponent deletes a component by id. The cleanup sweep never calls
// this (deleting components breaks page structure); it exists for manual
// tooling.
func (c *Client) DeleteComponent(ctx context.Context, id string) error {
	return c.delete(ctx, "components", id)
}

func (c *Client) delete(ctx context.Context, resource, id string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle delete: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.resourceURL(resource, id), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", resource, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	return nil
}

func (c *Client) resourceURL(resource, id string) string {
	u := fmt.Sprintf("%s/pages/%s/%s", c.config.BaseURL, url.PathEscape(c.config.PageID), resource)
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (c *Client) authorize(req *http.Request) {
	if c.config.Token != "" {
		req.Header.Set("Authorization", "OAuth "+c.config.Token)
	}
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
