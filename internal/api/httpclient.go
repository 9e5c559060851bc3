package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/stuverflow/stuverflow-go/internal/logging"
	"github.com/stuverflow/stuverflow-go/internal/models"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 10 << 20
)

// HTTPClient is the production Client implementation over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
	log     logging.Logger
}

// NewHTTPClient builds a client for the given base URL. A zero timeout falls
// back to the 10s default. tokens may be nil for a purely anonymous client.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenProvider, log logging.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logging.NewDiscard()
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

// do performs one request and returns the raw response body. Every failure
// comes back as *APIError; raw transport errors never escape.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, authorized bool) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, &APIError{Message: FallbackMessage, cause: err}
	}

	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if authorized && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.log.Debug(ctx, "api request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "api transport failure", "method", method, "path", path, "error", err)
		return nil, newTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, newTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn(ctx, "api error response", "method", method, "path", path, "status", resp.StatusCode)
		return nil, newStatusError(resp.StatusCode, raw)
	}

	return raw, nil
}

// doJSON marshals payload as a JSON body. A nil payload sends no body.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, payload any, authorized bool) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, &APIError{Message: FallbackMessage, cause: err}
		}
		body = bytes.NewReader(buf)
	}
	return c.do(ctx, method, path, query, body, "application/json", authorized)
}

// unwrapOne peels a single {"data": ...} envelope layer, if present.
func unwrapOne(raw json.RawMessage) json.RawMessage {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return raw
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return raw
	}
	return env.Data
}

// unwrapData resolves the response envelope convention: the payload sits
// under "data", and some endpoints nest once more under "data.data".
func unwrapData(raw json.RawMessage) json.RawMessage {
	return unwrapOne(unwrapOne(raw))
}

func (c *HTTPClient) LoginUser(ctx context.Context, req models.LoginRequest) (*models.Identity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	raw, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil, req, false)
	if err != nil {
		return nil, err
	}
	return decodeIdentity(raw)
}

func (c *HTTPClient) SignupUser(ctx context.Context, req models.SignupRequest) (*models.Identity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	raw, err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", nil, req, false)
	if err != nil {
		return nil, err
	}
	return decodeIdentity(raw)
}

// UpdateProfile sends the patch as JSON, or multipart when an avatar file is
// attached. Content-type selection is automatic based on the payload shape.
func (c *HTTPClient) UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) (*models.Identity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	var err error
	if req.Avatar != nil {
		body, contentType, merr := encodeProfileMultipart(req)
		if merr != nil {
			return nil, &APIError{Message: FallbackMessage, cause: merr}
		}
		raw, err = c.do(ctx, http.MethodPut, "/api/profile", nil, body, contentType, true)
	} else {
		raw, err = c.doJSON(ctx, http.MethodPut, "/api/profile", nil, req.Patch, true)
	}
	if err != nil {
		return nil, err
	}
	return decodeIdentity(raw)
}

func decodeIdentity(raw json.RawMessage) (*models.Identity, error) {
	var id models.Identity
	if err := json.Unmarshal(unwrapData(raw), &id); err != nil {
		return nil, newDecodeError(err)
	}
	return &id, nil
}

// encodeProfileMultipart writes the patch as a "patch" form field and the
// avatar bytes as a file part.
func encodeProfileMultipart(req models.ProfileUpdateRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	patch, err := json.Marshal(req.Patch)
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("patch", string(patch)); err != nil {
		return nil, "", err
	}

	part, err := w.CreateFormFile("avatar", req.Avatar.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Avatar.Data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// page is the per-resource search result shape: {"data": [...], "total": n}.
type page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func searchPage[T any](ctx context.Context, c *HTTPClient, path string, query url.Values) ([]T, int, error) {
	raw, err := c.do(ctx, http.MethodGet, path, query, nil, "", true)
	if err != nil {
		return nil, 0, err
	}

	// Peel only the transport envelope; the page object keeps its own "data".
	var p page[T]
	if err := json.Unmarshal(unwrapOne(raw), &p); err != nil {
		return nil, 0, newDecodeError(err)
	}
	if p.Data == nil {
		p.Data = []T{}
	}
	return p.Data, p.Total, nil
}

func searchQuery(q string, limit int) url.Values {
	v := url.Values{}
	v.Set("q", q)
	v.Set("limit", strconv.Itoa(limit))
	return v
}

func (c *HTTPClient) SearchQuestions(ctx context.Context, query string, limit int, sortBy string) ([]models.Question, int, error) {
	v := searchQuery(query, limit)
	if sortBy != "" {
		v.Set("sort", sortBy)
	}
	return searchPage[models.Question](ctx, c, "/api/search/questions", v)
}

func (c *HTTPClient) SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, int, error) {
	return searchPage[models.UserSummary](ctx, c, "/api/search/users", searchQuery(query, limit))
}

func (c *HTTPClient) SearchCommunities(ctx context.Context, query string, limit int) ([]models.CommunitySummary, int, error) {
	return searchPage[models.CommunitySummary](ctx, c, "/api/search/communities", searchQuery(query, limit))
}

func (c *HTTPClient) Suggest(ctx context.Context, query string, limit int) (models.SuggestionBundle, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/search/suggestions", searchQuery(query, limit), nil, "", true)
	if err != nil {
		return models.EmptySuggestions(), err
	}

	var bundle models.SuggestionBundle
	if err := json.Unmarshal(unwrapData(raw), &bundle); err != nil {
		return models.EmptySuggestions(), newDecodeError(err)
	}
	return bundle.Normalize(), nil
}

func (c *HTTPClient) Trending(ctx context.Context, feed string) ([]models.TrendingItem, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/trending/"+url.PathEscape(feed), nil, nil, "", true)
	if err != nil {
		return nil, err
	}

	var items []models.TrendingItem
	if err := json.Unmarshal(unwrapData(raw), &items); err != nil {
		return nil, newDecodeError(err)
	}
	if items == nil {
		items = []models.TrendingItem{}
	}
	return items, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, "", false); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
