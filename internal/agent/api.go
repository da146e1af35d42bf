// Package agent implements the consuming-device side of the platform: an
// authoritative-by-refetch issue cache, merge of realtime events, and an
// offline write queue replayed when connectivity returns.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/civicsync/civicsync/internal/apperr"
	"github.com/civicsync/civicsync/internal/models"
)

// Draft is a not-yet-submitted issue report.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
}

// API is the slice of the issue service the agent consumes.
type API interface {
	FetchIssues(ctx context.Context) ([]models.Issue, error)
	CreateIssue(ctx context.Context, draft Draft) (*models.Issue, error)
	Upvote(ctx context.Context, id uint) (*models.Issue, error)
}

// HTTPClient talks to the REST surface. Network-level failures surface as
// apperr.ErrUnavailable so the agent knows to go offline.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken attaches a bearer token to subsequent requests.
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// Login authenticates and stores the returned token on the client.
func (c *HTTPClient) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *HTTPClient) FetchIssues(ctx context.Context) ([]models.Issue, error) {
	var issues []models.Issue
	if err := c.do(ctx, http.MethodGet, "/issues", nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (c *HTTPClient) CreateIssue(ctx context.Context, draft Draft) (*models.Issue, error) {
	var issue models.Issue
	if err := c.do(ctx, http.MethodPost, "/issues", draft, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (c *HTTPClient) Upvote(ctx context.Context, id uint) (*models.Issue, error) {
	var issue models.Issue
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/issues/%d/upvote", id), nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	case resp.StatusCode == http.StatusNotFound:
		return apperr.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return apperr.Validation("request", readError(resp.Body))
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: server returned %d", apperr.ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func readError(r io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return "rejected"
}
