// Package chroma is a thin typed client for the Chroma HTTP API, covering the
// collection management and query surface that chromactl needs: enumerate,
// create and delete collections, fetch records, count, and run a semantic
// nearest-neighbor query from free text. Embedding generation and ranking
// happen entirely server-side.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chromactl/internal/version"
)

const (
	// DefaultPort is the Chroma server's default HTTP port.
	DefaultPort = 8000

	// DefaultTenant and DefaultDatabase are the namespaces a fresh Chroma
	// install serves collections from.
	DefaultTenant   = "default_tenant"
	DefaultDatabase = "default_database"

	defaultTimeout = 30 * time.Second
)

// Config configures the connection to the Chroma server. Host is required;
// everything else has a working default.
type Config struct {
	Host     string
	Port     int
	SSL      bool
	Token    string
	Tenant   string
	Database string
	Timeout  time.Duration
}

// Client talks to a single Chroma server. It is safe for one invocation's
// worth of sequential calls; chromactl creates one per process.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client from the given connection settings.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidArgument)
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Tenant == "" {
		cfg.Tenant = DefaultTenant
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	scheme := "http"
	if cfg.SSL {
		scheme = "https"
	}
	baseURL := fmt.Sprintf("%s://%s/api/v2/tenants/%s/databases/%s",
		scheme,
		net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		url.PathEscape(cfg.Tenant),
		url.PathEscape(cfg.Database))

	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// ListCollections returns the existing collections in the order the server
// reports them.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	var cols []Collection
	if err := c.do(ctx, http.MethodGet, "/collections", nil, &cols); err != nil {
		return nil, wrapError("ListCollections", err)
	}
	return cols, nil
}

type createCollectionRequest struct {
	Name        string         `json:"name"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	GetOrCreate bool           `json:"get_or_create"`
}

// CreateCollection creates a new collection. The metadata map carries the
// distance metric under SpaceMetadataKey plus any embedding hints. Fails with
// ErrAlreadyExists when the name is taken.
func (c *Client) CreateCollection(ctx context.Context, name string, metadata map[string]any) (*Collection, error) {
	if name == "" {
		return nil, wrapError("CreateCollection", fmt.Errorf("%w: name is required", ErrInvalidArgument))
	}
	req := createCollectionRequest{Name: name, Metadata: metadata}
	var col Collection
	if err := c.do(ctx, http.MethodPost, "/collections", req, &col); err != nil {
		return nil, wrapError("CreateCollection", err)
	}
	return &col, nil
}

// GetCollection resolves a collection by name. Record-level calls address the
// collection by its server-assigned ID, so every collection-scoped command
// starts here.
func (c *Client) GetCollection(ctx context.Context, name string) (*Collection, error) {
	var col Collection
	if err := c.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(name), nil, &col); err != nil {
		return nil, wrapError("GetCollection", err)
	}
	return &col, nil
}

// DeleteCollection deletes the named collection. Deletion is not idempotent:
// a second delete fails with ErrNotFound.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodDelete, "/collections/"+url.PathEscape(name), nil, nil); err != nil {
		return wrapError("DeleteCollection", err)
	}
	return nil
}

// Count returns the number of records held by the collection.
func (c *Client) Count(ctx context.Context, col *Collection) (int, error) {
	var n int
	if err := c.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(col.ID)+"/count", nil, &n); err != nil {
		return 0, wrapError("Count", err)
	}
	return n, nil
}

type getRecordsRequest struct {
	Limit   int      `json:"limit"`
	Include []string `json:"include"`
}

// GetRecords fetches up to limit arbitrary records from the collection.
// Ordering is service-defined. Set withEmbeddings to also pull the stored
// vectors (used for reporting embedding dimensions).
func (c *Client) GetRecords(ctx context.Context, col *Collection, limit int, withEmbeddings bool) (*GetResult, error) {
	if limit <= 0 {
		return nil, wrapError("GetRecords", fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit))
	}
	req := getRecordsRequest{
		Limit:   limit,
		Include: []string{"documents", "metadatas"},
	}
	if withEmbeddings {
		req.Include = append(req.Include, "embeddings")
	}
	var res GetResult
	if err := c.do(ctx, http.MethodPost, "/collections/"+url.PathEscape(col.ID)+"/get", req, &res); err != nil {
		return nil, wrapError("GetRecords", err)
	}
	return &res, nil
}

type queryRequest struct {
	QueryTexts []string `json:"query_texts"`
	NResults   int      `json:"n_results"`
	Include    []string `json:"include"`
}

// Query runs a semantic similarity search for the given text. The server
// embeds the text and returns the nResults nearest records ordered by
// ascending distance.
func (c *Client) Query(ctx context.Context, col *Collection, text string, nResults int) (*QueryResult, error) {
	if text == "" {
		return nil, wrapError("Query", fmt.Errorf("%w: query text is required", ErrInvalidArgument))
	}
	if nResults <= 0 {
		return nil, wrapError("Query", fmt.Errorf("%w: n_results must be positive, got %d", ErrInvalidArgument, nResults))
	}
	req := queryRequest{
		QueryTexts: []string{text},
		NResults:   nResults,
		Include:    []string{"documents", "metadatas", "distances"},
	}
	var res QueryResult
	if err := c.do(ctx, http.MethodPost, "/collections/"+url.PathEscape(col.ID)+"/query", req, &res); err != nil {
		return nil, wrapError("Query", err)
	}
	return &res, nil
}

// do performs a single request against the API and decodes the JSON response
// into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapNetworkError(err)
	}
	defer resp.Body.Close()

	if err := checkHTTPStatus(resp); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// checkHTTPStatus maps HTTP response statuses to client errors.
func checkHTTPStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrAlreadyExists
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.ToLower(string(body))
	// Older Chroma servers report these as a 500 with an error string.
	if strings.Contains(msg, "already exists") {
		return ErrAlreadyExists
	}
	if strings.Contains(msg, "does not exist") {
		return ErrNotFound
	}
	return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// mapNetworkError maps transport-level failures to ErrConnection. Context
// cancellation stays visible to callers through the wrapped cause.
func mapNetworkError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}
