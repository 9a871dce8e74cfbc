package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/stlplant/tankview/pkg/buildinfo"
	"github.com/stlplant/tankview/pkg/cache"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/httputil"
	"github.com/stlplant/tankview/pkg/model"
	"github.com/stlplant/tankview/pkg/observability"
)

const (
	// RequestIDHeader carries a per-request id for correlating logs.
	RequestIDHeader = "X-Request-ID"

	defaultTimeout    = 30 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = 500 * time.Millisecond
	maxErrorBody      = 64 << 10
)

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	logger     *log.Logger
	alerter    Alerter
	cache      *httputil.JSONCache
	keyer      cache.Keyer
	attempts   int
	retryDelay time.Duration

	Customers    CustomerService
	Plants       PlantService
	Lines        LineService
	Products     Resource[model.Product]
	Requirements Resource[model.Requirement]
	Devices      DeviceService
	Functions    Resource[model.Function]
	Tanks        TankService
	TankGroups   TankGroupService
	Chat         ChatService
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAlerter reports failures and successes to a.
func WithAlerter(a Alerter) Option {
	return func(c *Client) {
		if a != nil {
			c.alerter = a
		}
	}
}

// WithRetry sets how often idempotent requests are attempted and the
// initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.retryDelay = delay
	}
}

// WithCache caches successful GET responses in backend for ttl. Keys are
// scoped by the backend host.
func WithCache(backend cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if backend != nil {
			c.cache = httputil.NewJSONCache(backend, ttl)
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid API URL %q", baseURL)
	}

	c := &Client{
		baseURL:    u,
		http:       &http.Client{Timeout: defaultTimeout},
		logger:     log.New(io.Discard),
		alerter:    discardAlerter{},
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.keyer = cache.NewScopedKeyer(nil, u.Host+":")

	c.Customers = CustomerService{Resource[model.Customer]{c, "/customers"}}
	c.Plants = PlantService{Resource[model.Plant]{c, "/plants"}}
	c.Lines = LineService{Resource[model.Line]{c, "/lines"}}
	c.Products = Resource[model.Product]{c, "/products"}
	c.Requirements = Resource[model.Requirement]{c, "/production-requirements"}
	c.Devices = DeviceService{Resource[model.Device]{c, "/devices"}}
	c.Functions = Resource[model.Function]{c, "/functions"}
	c.Tanks = TankService{Resource[model.Tank]{c, "/tanks/"}}
	c.TankGroups = TankGroupService{Resource[model.TankGroup]{c, "/tank-groups/"}}
	c.Chat = ChatService{c}
	return c, nil
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Get fetches path into out, consulting the response cache when one is
// configured.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	if c.cache == nil {
		return c.Do(ctx, http.MethodGet, path, nil, out)
	}
	key := c.keyer.APIKey(http.MethodGet, path)
	if ok, err := c.cache.Get(ctx, key, out); err == nil && ok {
		c.logger.Debug("api cache hit", "path", path)
		return nil
	}
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}
	if err := c.cache.Set(ctx, key, raw); err != nil {
		c.logger.Warn("api cache write failed", "path", path, "err", err)
	}
	return decode(raw, out, path)
}

// Do sends a request with an optional JSON body and decodes the JSON
// response into out. A nil out discards the response body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	err := c.do(ctx, method, path, body, out)
	if err != nil && ctx.Err() == nil {
		c.alerter.Alert(ctx, Alert{
			Level:   AlertError,
			Message: errors.UserMessage(err),
			TTL:     ErrorAlertTTL,
			Retry: func(ctx context.Context) error {
				return c.Do(ctx, method, path, body, out)
			},
		})
	}
	return err
}

// Notify shows a success alert.
func (c *Client) Notify(ctx context.Context, message string) {
	c.alerter.Alert(ctx, Alert{Level: AlertSuccess, Message: message, TTL: SuccessAlertTTL})
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "encode %s %s", method, path)
		}
	}

	target := c.resolve(path)
	requestID := uuid.NewString()
	idempotent := isIdempotent(method)

	attempts := 1
	if idempotent {
		attempts = c.attempts
	}

	var respBody []byte
	var status int
	err := httputil.Retry(ctx, attempts, c.retryDelay, func() error {
		var err error
		status, respBody, err = c.attempt(ctx, method, target, requestID, payload)
		if err != nil && idempotent && retryableStatus(err) {
			return httputil.Retryable(err)
		}
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "%s %s", method, path)
		}
		return unwrapRetryable(err)
	}

	if out == nil || status == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	return decode(respBody, out, path)
}

func (c *Client) attempt(ctx context.Context, method string, target *url.URL, requestID string, payload []byte) (int, []byte, error) {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), rdr)
	if err != nil {
		return 0, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, requestID)

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, target.Host, target.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, target.Host, target.Path, err)
		c.logger.Debug("request failed", "method", method, "url", target, "id", requestID, "err", err)
		return 0, nil, errors.Wrap(errors.ErrCodeNetwork, err, "network error. Please check your connection")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	hooks.OnResponse(ctx, method, target.Host, target.Path, resp.StatusCode, time.Since(start))
	c.logger.Debug("response", "method", method, "url", target, "status", resp.StatusCode, "id", requestID)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(errors.ErrCodeNetwork, err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, nil, statusError(resp.StatusCode, data)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) resolve(path string) *url.URL {
	ref, err := url.Parse(path)
	if err != nil {
		ref = &url.URL{Path: path}
	}
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawQuery = ref.RawQuery
	return &u
}

// statusError builds the error for a non-2xx response.
func statusError(status int, body []byte) *errors.Error {
	msg := detailMessage(body)
	if msg == "" {
		msg = "HTTP " + strconv.Itoa(status) + ": " + http.StatusText(status)
	}
	e := errors.New(errors.FromStatus(status), "%s", msg)
	e.Status = status
	return e
}

// detailMessage extracts the "detail" field of an error body. Validation
// errors carry a list of {msg} objects, which are joined.
func detailMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	if json.Unmarshal(body, &payload) != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(payload.Detail, &s) == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(payload.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func decode(data []byte, out any, path string) error {
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "decode response from %s", path)
	}
	return nil
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

func retryableStatus(err error) bool {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Code == errors.ErrCodeNetwork || e.Code == errors.ErrCodeTimeout
}

func unwrapRetryable(err error) error {
	var re *httputil.RetryableError
	if stderrors.As(err, &re) {
		return re.Err
	}
	return err
}
