package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fitly/fitly/internal/common"
	"github.com/fitly/fitly/internal/logging"
)

// Options configures the backend client handle.
type Options struct {
	// BaseURL is the service endpoint, e.g. https://xyz.example.co.
	BaseURL string
	// AnonKey is the anonymous access key sent with every request.
	AnonKey string
	// SessionFile is where the auth sub-client caches its session.
	// Empty disables persistence.
	SessionFile string
	// HTTPClient overrides the default HTTP client (tests, timeouts).
	HTTPClient *http.Client
	// AutoRefresh enables the background access-token refresh loop.
	AutoRefresh bool

	Logger logging.Logger
}

// Client is the single long-lived handle to the backend service.
// It is effectively read-only configuration after New; the only mutable
// state it owns is the auth session, guarded inside Auth.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	log     logging.Logger

	Auth *Auth
}

// New builds the client handle. A missing endpoint or anonymous key is a
// configuration error; callers treat it as fatal at startup.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, common.NewError(common.KindConfig, "backend URL is not set", nil)
	}
	if strings.TrimSpace(opts.AnonKey) == "" {
		return nil, common.NewError(common.KindConfig, "anonymous access key is not set", nil)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewDefault("info")
	}

	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		anonKey: opts.AnonKey,
		http:    hc,
		log:     log,
	}
	c.Auth = newAuth(c, opts.SessionFile, opts.AutoRefresh)
	return c, nil
}

// BaseURL returns the configured service endpoint without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// AnonKey returns the anonymous access key.
func (c *Client) AnonKey() string { return c.anonKey }

// Close stops the auth refresh loop. The handle itself has no teardown.
func (c *Client) Close() {
	c.Auth.close()
}

// doJSON performs a JSON request against the service. The bearer token is
// the current access token when one exists, the anonymous key otherwise.
// out may be nil for calls whose response body is irrelevant.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, header http.Header, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return common.NewError(common.KindNetwork, "backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return backendError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return common.NewError(common.KindBackend, "malformed response", err)
	}
	return nil
}

func (c *Client) bearer() string {
	if tok := c.Auth.AccessToken(); tok != "" {
		return tok
	}
	return c.anonKey
}
