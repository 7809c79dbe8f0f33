package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dlfarias/teamvault/internal/logging"
	"github.com/dlfarias/teamvault/internal/types"
	"github.com/dlfarias/teamvault/internal/utils"
	"github.com/google/uuid"
)

// DefaultBaseURL is the production endpoint of the remote API
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Client is a typed, retrying wrapper over the remote HTTP API. It attaches
// the bearer credential to every request, follows pagination links, and
// classifies error responses into the stable error taxonomy.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	maxAttempts int
	baseDelay   time.Duration
	logger      logging.Logger
}

// Options configures a Client
type Options struct {
	BaseURL     string
	MaxAttempts int
	BaseDelay   time.Duration
	HTTPClient  *http.Client
	Logger      logging.Logger
}

// NewClient creates a client around the given bearer token. The HTTP client
// is owned by the caller and must be closed (CloseIdleConnections) at run end.
func NewClient(token string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = utils.DefaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Duration(utils.DefaultRetryBaseDelayMs) * time.Millisecond
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNoOpLogger()
	}
	return &Client{
		httpClient:  opts.HTTPClient,
		baseURL:     opts.BaseURL,
		token:       token,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		logger:      opts.Logger,
	}
}

// NewRequestContext creates a request context with a fresh trace ID
func NewRequestContext(teamID, driveID string, requestType types.RequestType) *types.RequestContext {
	return &types.RequestContext{
		TeamID:      teamID,
		DriveID:     driveID,
		RequestType: requestType,
		TraceID:     uuid.New().String(),
	}
}

// Close releases idle connections held by the underlying HTTP client
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// get performs one GET with the shared retry policy and returns the raw body.
//
// Retry rules:
//   - connection/timeout failures back off exponentially from baseDelay
//   - 429 sleeps max(current backoff, Retry-After hint), then doubles
//   - 401 raises CREDENTIAL_EXPIRED immediately, never retried
//   - 403 raises FORBIDDEN with the remote diagnostic verbatim, not retried here
//   - exhausting the attempt budget raises RETRY_EXHAUSTED naming the call
func (c *Client) get(ctx context.Context, reqCtx *types.RequestContext, rawURL string, params url.Values) ([]byte, error) {
	logger := c.logger.WithTraceID(reqCtx.TraceID)
	target := rawURL
	if len(params) > 0 {
		target = rawURL + "?" + params.Encode()
	}

	delay := c.baseDelay
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, utils.NewAppError(utils.NewSyncError(utils.ErrCodeInvalidArgument, err.Error()).Build())
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Network error, backing off",
				logging.F("attempt", attempt),
				logging.F("maxAttempts", c.maxAttempts),
				logging.F("requestType", reqCtx.RequestType),
				logging.F("error", err.Error()),
			)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay = nextDelay(delay)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			logger.Warn("Response read failed, backing off",
				logging.F("attempt", attempt),
				logging.F("error", readErr.Error()),
			)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay = nextDelay(delay)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := rateLimitDelay(resp.Header.Get("Retry-After"), delay)
			logger.Warn("Rate limited, waiting",
				logging.F("waitMs", wait.Milliseconds()),
				logging.F("attempt", attempt),
				logging.F("requestType", reqCtx.RequestType),
			)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			delay = maxDuration(nextDelay(delay), wait)
			continue

		case resp.StatusCode >= 500:
			logger.Warn("Server error, backing off",
				logging.F("status", resp.StatusCode),
				logging.F("attempt", attempt),
			)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay = nextDelay(delay)
			continue

		case resp.StatusCode >= 400:
			return nil, classifyResponse(resp.StatusCode, body, reqCtx, logger)
		}

		return body, nil
	}

	return nil, utils.NewAppError(
		utils.NewSyncError(utils.ErrCodeRetryExhausted,
			fmt.Sprintf("request %s failed after %d attempts", reqCtx.RequestType, c.maxAttempts)).
			WithContext("url", rawURL).
			WithContext("traceId", reqCtx.TraceID).
			Build())
}

// getJSON performs a GET and unmarshals the body into out
func (c *Client) getJSON(ctx context.Context, reqCtx *types.RequestContext, path string, out interface{}) error {
	body, err := c.get(ctx, reqCtx, c.absoluteURL(path), nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return utils.NewAppError(utils.NewSyncError(utils.ErrCodeUnknown,
			fmt.Sprintf("malformed response for %s: %v", reqCtx.RequestType, err)).Build())
	}
	return nil
}

// page is the envelope of every paginated listing response
type page struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// getAllPages follows continuation links and returns the concatenation of all
// pages' items. Order across pages is preserved but carries no meaning.
func (c *Client) getAllPages(ctx context.Context, reqCtx *types.RequestContext, path string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	next := c.absoluteURL(path)
	for next != "" {
		body, err := c.get(ctx, reqCtx, next, nil)
		if err != nil {
			return nil, err
		}
		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, utils.NewAppError(utils.NewSyncError(utils.ErrCodeUnknown,
				fmt.Sprintf("malformed page for %s: %v", reqCtx.RequestType, err)).Build())
		}
		items = append(items, p.Value...)
		next = p.NextLink
	}
	return items, nil
}

func (c *Client) absoluteURL(path string) string {
	if len(path) > 8 && (path[:7] == "http://" || path[:8] == "https://") {
		return path
	}
	return c.baseURL + path
}

func nextDelay(d time.Duration) time.Duration {
	d *= 2
	max := time.Duration(utils.MaxRetryDelayMs) * time.Millisecond
	if d > max {
		return max
	}
	return d
}

// rateLimitDelay honors a Retry-After hint, which arrives either as a
// delay in seconds or as an HTTP date. The hint only ever lengthens the wait.
func rateLimitDelay(retryAfter string, current time.Duration) time.Duration {
	if retryAfter == "" {
		return current
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		hinted := time.Duration(seconds) * time.Second
		return maxDuration(current, hinted)
	}
	if when, err := http.ParseTime(retryAfter); err == nil {
		return maxDuration(current, time.Until(when))
	}
	return current
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
