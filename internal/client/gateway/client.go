package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/countrybook/internal/client/metrics"
	"github.com/dmitrijs2005/countrybook/internal/common"
	"github.com/dmitrijs2005/countrybook/internal/logging"
	"github.com/google/uuid"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// Authorizer decorates an outbound request with credentials.
type Authorizer interface {
	Authorize(req *http.Request) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(req *http.Request) error

func (f AuthorizerFunc) Authorize(req *http.Request) error { return f(req) }

// Client is the transport shared by Backend and Countries.
type Client struct {
	baseURL      *url.URL
	http         *http.Client
	log          logging.Logger
	metrics      *metrics.Metrics
	newRequestID func() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRequestID overrides the X-Request-ID generator (uuid v4 by default).
func WithRequestID(gen func() string) Option {
	return func(c *Client) {
		if gen != nil {
			c.newRequestID = gen
		}
	}
}

// NewClient builds a transport rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:      u,
		http:         &http.Client{Timeout: defaultTimeout},
		log:          logging.Discard(),
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.metrics != nil {
		hc := *c.http
		hc.Transport = c.metrics.InstrumentRoundTripper(hc.Transport)
		c.http = &hc
	}
	return c, nil
}

// BaseURL returns the root every request path is joined to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	auth   Authorizer
	out    any
}

// segment escapes a caller-supplied value for use as one path element.
// Dot segments are percent-encoded so JoinPath cannot resolve them against
// the endpoint prefix.
func segment(s string) string {
	s = strings.TrimSpace(s)
	if s == "." || s == ".." {
		return strings.Repeat("%2E", len(s))
	}
	return url.PathEscape(s)
}

func (c *Client) do(ctx context.Context, cl call) error {
	rid := c.newRequestID()

	req, err := c.newRequest(ctx, cl, rid)
	if err != nil {
		return c.fail(ctx, &Error{Kind: KindUnknown, Op: cl.op, RequestID: rid, Err: err})
	}

	if cl.auth != nil {
		if err := cl.auth.Authorize(req); err != nil {
			var ge *Error
			if errors.As(err, &ge) {
				return c.fail(ctx, ge)
			}
			return c.fail(ctx, &Error{Kind: KindAuth, Op: cl.op, RequestID: rid, Message: err.Error(), Err: err})
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(ctx, &Error{Kind: KindNetwork, Op: cl.op, RequestID: rid, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.fail(ctx, &Error{Kind: KindNetwork, Op: cl.op, Status: resp.StatusCode, RequestID: rid, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(ctx, statusError(cl.op, resp.StatusCode, body, rid))
	}

	if cl.out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, cl.out); err != nil {
		return c.fail(ctx, &Error{Kind: KindUnknown, Op: cl.op, Status: resp.StatusCode, RequestID: rid,
			Message: "Unexpected response from server", Err: fmt.Errorf("decode response: %w", err)})
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, cl call, rid string) (*http.Request, error) {
	u := c.baseURL.JoinPath(cl.path)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", common.ContentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", common.ContentTypeJSON)
	}
	req.Header.Set(common.RequestIDHeader, rid)
	return req, nil
}

func (c *Client) fail(ctx context.Context, e *Error) error {
	c.metrics.IncrementFailure(e.Op, string(e.Kind))
	c.log.Warn(ctx, "gateway call failed",
		"op", e.Op, "kind", e.Kind, "status", e.Status, "request_id", e.RequestID, "err", e.Err)
	return e
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindNetwork
	}
	return KindUnknown
}

// statusError turns a non-2xx response into *Error, pulling the display
// message from msg, message or error, and field errors from errors.
func statusError(op string, status int, body []byte, rid string) *Error {
	e := &Error{Kind: kindForStatus(status), Op: op, Status: status, RequestID: rid}

	var payload map[string]json.RawMessage
	if json.Unmarshal(body, &payload) != nil {
		return e
	}
	for _, key := range []string{"msg", "message", "error"} {
		var s string
		if raw, ok := payload[key]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			e.Message = s
			break
		}
	}
	if raw, ok := payload["errors"]; ok {
		e.Fields = fieldErrors(raw)
	}
	if e.Kind == KindNetwork {
		// a gateway-level message is not meant for the user
		e.Message = ""
	}
	return e
}

// fieldErrors accepts either {"field": "msg"} / {"field": {"message": ...}}
// or a list of {"path"|"param"|"field", "msg"|"message"} objects.
func fieldErrors(raw json.RawMessage) map[string]string {
	out := map[string]string{}

	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil {
		for k, v := range obj {
			if m := fieldMessage(v); m != "" {
				out[k] = m
			}
		}
	}

	var list []map[string]json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		for _, item := range list {
			var name string
			for _, key := range []string{"path", "param", "field"} {
				if v, ok := item[key]; ok && json.Unmarshal(v, &name) == nil && name != "" {
					break
				}
			}
			if name == "" {
				continue
			}
			for _, key := range []string{"msg", "message"} {
				if v, ok := item[key]; ok {
					if m := fieldMessage(v); m != "" {
						out[name] = m
						break
					}
				}
			}
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func fieldMessage(v json.RawMessage) string {
	var s string
	if json.Unmarshal(v, &s) == nil {
		return s
	}
	var nested struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if json.Unmarshal(v, &nested) == nil {
		if nested.Message != "" {
			return nested.Message
		}
		return nested.Msg
	}
	return ""
}
