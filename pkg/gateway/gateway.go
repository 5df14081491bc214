// Package gateway is the client for the hosted backend this app delegates
// storage and authentication to: a password-based auth API plus a tabular
// REST API with filtering, ordering and relational embeds. Nothing here owns
// data; every record belongs to the remote service.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const sessionStoreKey = "auth_session"

// SessionStore persists the session across process restarts. pkg/cache
// satisfies it.
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	store   SessionStore

	mu        sync.Mutex
	session   *Session
	listeners map[int]AuthChangeFunc
	nextSub   int
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithSessionStore enables session recovery across restarts.
func WithSessionStore(s SessionStore) Option {
	return func(c *Client) { c.store = s }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		httpc:     &http.Client{Timeout: 30 * time.Second},
		listeners: make(map[int]AuthChangeFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.restoreSession()
	return c
}

func (c *Client) restoreSession() {
	if c.store == nil {
		return
	}
	raw, found, err := c.store.Get(context.Background(), sessionStoreKey)
	if err != nil || !found {
		return
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Printf("discarding undecodable stored session: %v", err)
		return
	}
	c.mu.Lock()
	c.session = &s
	c.mu.Unlock()
}

func (c *Client) persistSession(s *Session) {
	if c.store == nil {
		return
	}
	ctx := context.Background()
	if s == nil {
		if err := c.store.Delete(ctx, sessionStoreKey); err != nil {
			log.Printf("clearing stored session: %v", err)
		}
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		log.Printf("encoding session for storage: %v", err)
		return
	}
	if err := c.store.Set(ctx, sessionStoreKey, raw); err != nil {
		log.Printf("persisting session: %v", err)
	}
}

// do executes one request against the gateway, decoding a successful body
// into dest when dest is non-nil and mapping failures to *Error.
func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func parseError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Code             string `json:"code"`
	}
	_ = json.Unmarshal(raw, &payload)

	message := payload.Message
	if message == "" {
		message = payload.Msg
	}
	if message == "" {
		message = payload.ErrorDescription
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = resp.Status
	}

	return &Error{
		Status:  resp.StatusCode,
		Code:    payload.Code,
		Message: message,
	}
}
