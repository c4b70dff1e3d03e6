package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/exlog/internal/models"
)

// HTTPClient implements DataSource by calling the exlog REST API. Used for
// remote MCP mode where the binary runs locally (stdio) but data lives on
// the remote server.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &models.NotFoundError{Resource: "user", ID: req.URL.Query().Get("userId")}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	return c.do(req)
}

func (c *HTTPClient) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// CreateUser creates a user via POST /api/exercise/new-user.
func (c *HTTPClient) CreateUser(ctx context.Context, username string) (*models.User, error) {
	body, err := c.postForm(ctx, "/api/exercise/new-user", url.Values{"username": {username}})
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("httpclient: decoding user: %w", err)
	}
	return &u, nil
}

// GetUser loads a user's full document via GET /api/exercise/log without
// filters; the unfiltered response carries the complete log and count.
func (c *HTTPClient) GetUser(ctx context.Context, id string) (*models.User, error) {
	body, err := c.get(ctx, "/api/exercise/log", url.Values{"userId": {id}})
	if err != nil {
		return nil, err
	}
	var res struct {
		ID       string         `json:"id"`
		Username string         `json:"username"`
		Count    int            `json:"count"`
		Log      []models.Entry `json:"log"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("httpclient: decoding log response: %w", err)
	}
	log := res.Log
	if log == nil {
		log = []models.Entry{}
	}
	return &models.User{ID: res.ID, Username: res.Username, Count: res.Count, Log: log}, nil
}

// ListUsers retrieves all users via GET /api/exercise/users.
func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {
	body, err := c.get(ctx, "/api/exercise/users", nil)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("httpclient: decoding users: %w", err)
	}
	return users, nil
}

// AppendEntry appends an entry via POST /api/exercise/add.
func (c *HTTPClient) AppendEntry(ctx context.Context, userID, description string, duration float64, date models.Date) (*models.User, error) {
	form := url.Values{
		"userId":      {userID},
		"description": {description},
		"duration":    {strconv.FormatFloat(duration, 'f', -1, 64)},
		"date":        {date.String()},
	}
	body, err := c.postForm(ctx, "/api/exercise/add", form)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("httpclient: decoding user: %w", err)
	}
	return &u, nil
}
