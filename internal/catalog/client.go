package catalog

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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// API is the remote collection as seen by the controller. It is implemented
// by *Client and by test fakes.
type API interface {
	List(ctx context.Context) ([]Book, error)
	Create(ctx context.Context, book NewBook) (Book, error)
	Update(ctx context.Context, book ExistingBook) (Book, error)
	Delete(ctx context.Context, id string) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to a REST collection rooted at a single resource path.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	tracer    trace.Tracer
}

const (
	defaultUserAgent = "bookshelf/0.1"
	requestTimeout   = 10 * time.Second
	maxResponseBytes = 8 << 20
	tracerName       = "github.com/five82/bookshelf/internal/catalog"
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the transport timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTracerProvider sets where request spans are recorded. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewClient builds a Client for the collection at baseURL, for example
// "http://127.0.0.1:3000/books".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the collection URL requests are resolved against.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// List fetches the whole collection.
func (c *Client) List(ctx context.Context) ([]Book, error) {
	body, err := c.do(ctx, "list", http.MethodGet, "", nil)
	if err != nil {
		return nil, err
	}
	var books []Book
	if err := json.Unmarshal(body, &books); err != nil {
		return nil, &RequestError{Op: "decode response", Err: err}
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Create stores a new record and returns the server representation, which
// carries the assigned identifier.
func (c *Client) Create(ctx context.Context, book NewBook) (Book, error) {
	body, err := c.do(ctx, "create", http.MethodPost, "", book.Payload())
	if err != nil {
		return Book{}, err
	}
	var created Book
	if err := json.Unmarshal(body, &created); err != nil {
		return Book{}, &RequestError{Op: "decode response", Err: err}
	}
	if !created.HasID() {
		return Book{}, &RequestError{Op: "decode response", Err: fmt.Errorf("created book has no id")}
	}
	return created, nil
}

// Update replaces the record with book's identifier. When the server answers
// with something other than that record, the submitted record is returned.
func (c *Client) Update(ctx context.Context, book ExistingBook) (Book, error) {
	if !book.Book.HasID() {
		return Book{}, &RequestError{Op: "update", Err: fmt.Errorf("book id required")}
	}
	payload := book.Payload()
	body, err := c.do(ctx, "update", http.MethodPut, book.ID(), payload)
	if err != nil {
		return Book{}, err
	}
	var updated Book
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &updated) != nil || updated.ID != book.ID() {
		return payload, nil
	}
	return updated, nil
}

// Delete removes the record with the given identifier.
func (c *Client) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &RequestError{Op: "delete", Err: fmt.Errorf("book id required")}
	}
	_, err := c.do(ctx, "delete", http.MethodDelete, id, nil)
	return err
}

func (c *Client) do(ctx context.Context, op, method, id string, payload any) ([]byte, error) {
	if c == nil {
		return nil, &RequestError{Op: op, Err: fmt.Errorf("client is nil")}
	}
	reqURL := c.resourceURL(id)

	ctx, span := c.tracer.Start(ctx, "catalog."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", reqURL),
	)

	body, status, err := c.send(ctx, op, method, reqURL, payload)
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, op, method, reqURL string, payload any) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, &RequestError{Op: "encode payload", Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, 0, &RequestError{Op: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &ConnectivityError{Method: method, URL: reqURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, &ConnectivityError{Method: method, URL: reqURL, Err: fmt.Errorf("read %s response: %w", op, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &StatusError{
			Method:  method,
			URL:     reqURL,
			Code:    resp.StatusCode,
			Message: serverMessage(body, resp.StatusCode),
		}
	}
	return body, resp.StatusCode, nil
}

// resourceURL returns the collection URL, or the item URL when id is set.
func (c *Client) resourceURL(id string) string {
	if id == "" {
		return c.baseURL.String()
	}
	u := *c.baseURL
	u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + "/" + id
	u.RawPath = strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + "/" + url.PathEscape(id)
	return u.String()
}

// serverMessage extracts the human readable part of an error response.
func serverMessage(body []byte, code int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
	}
	text := strings.TrimSpace(string(body))
	if text != "" && !json.Valid(body) && len(text) <= 200 && !strings.ContainsAny(text, "\n<") {
		return text
	}
	return http.StatusText(code)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("api url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
