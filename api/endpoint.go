// Package api issues requests against the listings backend. Each remote
// operation is represented by an Endpoint: a fixed request descriptor plus
// the outcome state of its most recently resolved invocation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"realtydesk/session"
)

// Client carries what every endpoint needs: the transport, the base URL used
// to resolve relative paths, and the session store supplying the bearer
// token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      session.Store
}

func NewClient(baseURL string, timeout time.Duration, store session.Store) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		store:      store,
	}
}

// FormBody is a prebuilt multipart payload. Endpoints send it verbatim with
// its own content type so the multipart boundary survives intact.
type FormBody struct {
	ContentType string
	Payload     []byte
}

// RequestError is a completed request the backend rejected. Message is taken
// from the response body's "error" or "message" field when present.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Override replaces parts of an endpoint's descriptor for one invocation.
// Zero fields fall back to the descriptor's defaults.
type Override struct {
	URL    string
	Body   any
	Method string
}

// Outcome is the tri-state result of an endpoint: in flight, resolved with a
// payload, or resolved with an error message. Data and Err are never both
// set.
type Outcome[T any] struct {
	Data     *T
	Err      string
	InFlight bool
}

// Endpoint issues one kind of request and tracks its outcome. Overlapping
// invocations are not serialized: whichever resolves last owns the state.
// Callers that need ordering invoke sequentially.
type Endpoint[T any] struct {
	client *Client
	url    string
	method string
	body   any

	mu       sync.Mutex
	closed   bool
	data     *T
	errMsg   string
	inFlight bool
}

func NewEndpoint[T any](client *Client, method, url string, body any) *Endpoint[T] {
	return &Endpoint[T]{client: client, method: method, url: url, body: body}
}

// Outcome returns a snapshot of the endpoint's current state.
func (e *Endpoint[T]) Outcome() Outcome[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Outcome[T]{Data: e.data, Err: e.errMsg, InFlight: e.inFlight}
}

// Close detaches the endpoint from its owner. Requests already in flight
// still run, but their resolution no longer updates the endpoint.
func (e *Endpoint[T]) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.inFlight = false
}

// Execute runs the request with the descriptor's defaults.
func (e *Endpoint[T]) Execute(ctx context.Context) Outcome[T] {
	return e.ExecuteWith(ctx, Override{})
}

// ExecuteWith runs the request once. It never returns an error: transport,
// backend and decode failures are normalized into the outcome's message, and
// prior data stays visible until the request resolves.
func (e *Endpoint[T]) ExecuteWith(ctx context.Context, ov Override) Outcome[T] {
	e.mu.Lock()
	if e.closed {
		out := Outcome[T]{Data: e.data, Err: e.errMsg}
		e.mu.Unlock()
		return out
	}
	e.inFlight = true
	e.errMsg = ""
	e.mu.Unlock()

	method := e.method
	if ov.Method != "" {
		method = ov.Method
	}
	url := e.url
	if ov.URL != "" {
		url = ov.URL
	}
	body := e.body
	if ov.Body != nil {
		body = ov.Body
	}

	payload, err := e.client.do(ctx, method, url, body)
	var decoded *T
	if err == nil {
		decoded = new(T)
		if derr := json.Unmarshal(payload, decoded); derr != nil {
			err = fmt.Errorf("decode response: %w", derr)
			decoded = nil
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Outcome[T]{Data: e.data, Err: e.errMsg}
	}
	e.inFlight = false
	if err != nil {
		e.errMsg = err.Error()
		log.Printf("api error: %s %s: %v", method, url, err)
	} else {
		e.data = decoded
	}
	return Outcome[T]{Data: e.data, Err: e.errMsg}
}

// do builds, sends and reads one request, returning the raw response body.
func (c *Client) do(ctx context.Context, method, url string, body any) ([]byte, error) {
	var reader io.Reader
	contentType := "application/json"

	// GET never carries a body, even when one was supplied.
	if body != nil && method != http.MethodGet {
		switch b := body.(type) {
		case *FormBody:
			reader = bytes.NewReader(b.Payload)
			contentType = b.ContentType
		default:
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("encode request: %w", err)
			}
			reader = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(url), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := session.Token(c.store); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Status: resp.StatusCode, Message: errorMessage(payload)}
	}
	return payload, nil
}

// resolve prefixes relative paths with the configured base URL.
func (c *Client) resolve(url string) string {
	if strings.HasPrefix(url, "/") {
		return c.baseURL + url
	}
	return url
}

func errorMessage(payload []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return "Request failed"
}
