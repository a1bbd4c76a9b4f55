package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxResponseBody = 8 << 20

const unexpectedResponse = "The server returned an unexpected response. Please try again."

// ErrNoToken is wrapped into KindToken errors.
var ErrNoToken = errors.New("user token not found")

// TokenSource hands out the current user's access token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx for ContextToken.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// ContextToken reads the token stored by WithToken. It is the default source:
// the BFF forwards whatever the browser presented and never mints tokens.
var ContextToken TokenSource = TokenFunc(func(ctx context.Context) (string, error) {
	token, _ := ctx.Value(tokenKey{}).(string)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
})

// Client is the only code that talks to the gear API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zap.SugaredLogger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		var hc http.Client
		if c.http != nil {
			hc = *c.http
		}
		hc.Timeout = d
		c.http = &hc
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  ContextToken,
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	// op completes "There was a problem ..." in user messages.
	op     string
	method string
	path   string
	body   any
	auth   bool
}

// call runs the shared request template: token, request, status check,
// decode and validate. decode may be nil when the response body is ignored.
func call[T any](ctx context.Context, c *Client, req request, decode func([]byte) (T, error)) (T, error) {
	var zero T
	requestID := uuid.NewString()
	log := c.log.With("op", req.op, "method", req.method, "path", req.path, "request_id", requestID)

	var token string
	if req.auth {
		t, err := c.tokens.Token(ctx)
		if err == nil && t == "" {
			err = ErrNoToken
		}
		if err != nil {
			log.Warnw("no access token for remote call", "error", err)
			return zero, &Error{
				Kind:    KindToken,
				Op:      req.op,
				Message: fmt.Sprintf("There was a problem %s. User token not found.", req.op),
				Err:     err,
			}
		}
		token = t
	}

	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return zero, &Error{Kind: KindInput, Op: req.op, Message: fmt.Sprintf("There was a problem %s.", req.op), Err: err}
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return zero, &Error{Kind: KindInput, Op: req.op, Message: fmt.Sprintf("There was a problem %s.", req.op), Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Errorw("remote call failed", "kind", KindTransport, "error", err)
		return zero, &Error{Kind: KindTransport, Op: req.op, Message: fmt.Sprintf("There was a problem %s.", req.op), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ParseFetchError(resp)
		log.Errorw("remote call rejected", "kind", KindStatus, "status", resp.StatusCode, "message", msg)
		return zero, &Error{
			Kind:    KindStatus,
			Op:      req.op,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("There was a problem %s: %s", req.op, msg),
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, msg),
		}
	}

	if decode == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return zero, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		log.Errorw("reading remote response failed", "kind", KindTransport, "error", err)
		return zero, &Error{Kind: KindTransport, Op: req.op, Status: resp.StatusCode, Message: fmt.Sprintf("There was a problem %s.", req.op), Err: err}
	}
	value, err := decode(raw)
	if err != nil {
		log.Errorw("remote response failed validation", "kind", KindShape, "status", resp.StatusCode, "error", err)
		return zero, &Error{Kind: KindShape, Op: req.op, Status: resp.StatusCode, Message: unexpectedResponse, Err: err}
	}
	return value, nil
}

func inputError(op, message string) *Error {
	return &Error{Kind: KindInput, Op: op, Message: message}
}
