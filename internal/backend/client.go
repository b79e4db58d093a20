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

	"github.com/pkg/errors"
)

const (
	// DefaultTimeout bounds a single HTTP request to the backend.
	DefaultTimeout = 30 * time.Second
	// DefaultHealthTimeout bounds the health probe.
	DefaultHealthTimeout = 10 * time.Second

	apiKeyHeader    = "x-api-key"
	maxResponseSize = 8 << 20
	maxErrorBody    = 512
)

// Client talks to the conversational backend. It holds configuration only;
// connections live in a Session.
type Client struct {
	baseURL       string
	apiToken      string
	timeout       time.Duration
	healthTimeout time.Duration
	newTransport  func() http.RoundTripper
}

// Option configures a Client.
type Option func(*Client)

// WithAPIToken sets the value sent in the x-api-key header.
func WithAPIToken(token string) Option {
	return func(c *Client) { c.apiToken = token }
}

// WithTimeout sets the per-request timeout used by sessions.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHealthTimeout sets the timeout of the health probe.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.healthTimeout = d
		}
	}
}

// WithTransport overrides how sessions build their round tripper.
func WithTransport(fn func() http.RoundTripper) Option {
	return func(c *Client) { c.newTransport = fn }
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		timeout:       DefaultTimeout,
		healthTimeout: DefaultHealthTimeout,
		newTransport: func() http.RoundTripper {
			return http.DefaultTransport.(*http.Transport).Clone()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Session is the connection scope of one relay turn. Every session owns its
// transport, so closing it releases the connections it opened.
type Session struct {
	client    *Client
	transport http.RoundTripper
	http      *http.Client
}

// NewSession opens a new connection scope. Callers must Close it.
func (c *Client) NewSession() *Session {
	transport := c.newTransport()
	return &Session{
		client:    c,
		transport: transport,
		http:      &http.Client{Transport: transport, Timeout: c.timeout},
	}
}

// Close releases idle connections held by the session.
func (s *Session) Close() error {
	if t, ok := s.transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
	return nil
}

// PostMessage submits a chat turn. It is never retried here: the backend
// appends a message for every accepted request.
func (s *Session) PostMessage(ctx context.Context, req PostMessageRequest) (*PostMessageResponse, error) {
	const op = "post message"

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling post message request")
	}

	respBody, err := s.do(ctx, op, http.MethodPost, s.client.baseURL+"/conversation", body)
	if err != nil {
		return nil, err
	}

	var resp PostMessageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &ProtocolError{Op: op, Reason: "invalid JSON", Err: err}
	}
	if resp.MessageID == "" {
		return nil, &ProtocolError{Op: op, Reason: "response has no messageId"}
	}
	return &resp, nil
}

// GetConversation fetches the current snapshot of a conversation.
func (s *Session) GetConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	const op = "get conversation"

	endpoint := fmt.Sprintf("%s/conversation/%s", s.client.baseURL, url.PathEscape(conversationID))
	respBody, err := s.do(ctx, op, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var conv Conversation
	if err := json.Unmarshal(respBody, &conv); err != nil {
		return nil, &ProtocolError{Op: op, Reason: "invalid snapshot", Err: err}
	}
	return &conv, nil
}

func (s *Session) do(ctx context.Context, op, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s request", op)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	s.client.authorize(httpReq)

	httpResp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Op: op, Err: errors.Wrap(err, "reading response")}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &BackendError{Op: op, StatusCode: httpResp.StatusCode, Body: truncate(string(respBody), maxErrorBody)}
	}
	return respBody, nil
}

// Health reports whether GET /health answers 200 within the health timeout.
// It never returns an error: any failure counts as unhealthy.
func (c *Client) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	c.authorize(req)

	transport := c.newTransport()
	defer func() {
		if t, ok := transport.(interface{ CloseIdleConnections() }); ok {
			t.CloseIdleConnections()
		}
	}()

	resp, err := (&http.Client{Transport: transport, Timeout: c.healthTimeout}).Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	return resp.StatusCode == http.StatusOK
}

func (c *Client) authorize(req *http.Request) {
	if c.apiToken != "" {
		req.Header.Set(apiKeyHeader, c.apiToken)
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
