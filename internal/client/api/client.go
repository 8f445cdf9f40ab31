// Package api is the HTTP client of the document service.
//
// Every call yields a stream of Event values: zero or more progress events
// and exactly one terminal success or error event, after which the channel
// is closed. Progress never blocks the producer; a consumer that falls
// behind, or stops reading, loses intermediate progress but the terminal
// event always fits into the channel buffer. Dropping the channel stops
// observation only; cancel the context to abort the transfer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/scansync/internal/common"
)

type Client struct {
	baseURL  string
	http     *http.Client
	behavior RequestBehavior
	token    string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each exchange, including reading the response body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithBehavior(b RequestBehavior) Option {
	return func(c *Client) { c.behavior = b }
}

// New returns a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		behavior: EmptyRequestBehavior{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAccessToken returns a copy of c that sends token as a bearer
// credential. An empty token disables the header.
func (c *Client) WithAccessToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) AccessToken() string {
	return c.token
}

// headers merges behavior headers with req.Headers (request wins) and sets
// the bearer credential, replacing any caller-supplied Authorization.
func (c *Client) headers(req *Request) http.Header {
	merged := make(map[string]string)
	for k, v := range c.behavior.AdditionalHeaders() {
		merged[k] = v
	}
	for k, v := range req.Headers {
		for existing := range merged {
			if strings.EqualFold(existing, k) {
				delete(merged, existing)
			}
		}
		merged[k] = v
	}

	if c.token != "" {
		for k := range merged {
			if strings.EqualFold(k, common.AuthorizationHeaderName) {
				delete(merged, k)
			}
		}
		merged[common.AuthorizationHeaderName] = common.BearerPrefix + c.token
	}

	h := make(http.Header, len(merged))
	for k, v := range merged {
		h.Set(k, v)
	}
	return h
}

func (c *Client) url(req *Request) string {
	u := c.baseURL + "/" + strings.TrimPrefix(req.Endpoint, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

// observe starts req and returns its event stream. The response body is
// decoded as JSON into T; an empty body yields the zero T.
func observe[T any](ctx context.Context, c *Client, req Request) <-chan Event[T] {
	em := newEmitter[T]()

	go func() {
		c.behavior.BeforeSend(ctx, &req)

		data, err := send[T](ctx, c, &req, em)
		if err != nil {
			if em.finish(errorEvent[T](err)) {
				c.behavior.AfterError(ctx, &req, err)
			}
			return
		}
		if em.finish(successEvent(data)) {
			c.behavior.AfterSuccess(ctx, &req)
		}
	}()

	return em.ch
}

func send[T any](ctx context.Context, c *Client, req *Request, em *emitter[T]) (T, error) {
	var zero T

	payload, contentType, err := req.body()
	if err != nil {
		return zero, err
	}

	var body io.Reader
	if payload != nil {
		body = &progressReader{r: bytes.NewReader(payload), total: int64(len(payload)), report: em.progress}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(req), body)
	if err != nil {
		return zero, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header = c.headers(req)
	if payload != nil {
		httpReq.ContentLength = int64(len(payload))
		httpReq.Header.Set("Content-Type", contentType)
	}

	em.progress(0)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("%w: read response: %w", common.ErrTransport, err)
	}

	if err := mapStatus(resp.StatusCode, raw); err != nil {
		return zero, err
	}

	var out T
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("%w: decode response: %w", common.ErrServer, err)
	}
	return out, nil
}
