// Package client is the Go SDK for services registering themselves with
// the fleetway control plane. Registrations are TTL-bound on the
// discovery side, so the client re-registers periodically until shut
// down.
package client

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const headerServiceToken = "X-Service-Token"

type Client struct {
	baseURL     string
	serviceName string
	privateKey  *rsa.PrivateKey
	issuer      string
	tokenTTL    time.Duration

	httpClient        *http.Client
	keepAliveInterval time.Duration
	logger            *slog.Logger

	mu           sync.Mutex
	lastRegister RegisterRequest
	registered   bool
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithKeepAliveInterval overrides how often the client re-registers.
// Keep it under the control plane's registry TTL or the discovery
// projections will flap.
func WithKeepAliveInterval(interval time.Duration) Option {
	return func(c *Client) { c.keepAliveInterval = interval }
}

func WithIssuer(issuer string) Option {
	return func(c *Client) { c.issuer = issuer }
}

// New creates a registry client. privateKeyPEM may be empty when the
// control plane runs without authentication.
func New(baseURL, serviceName, privateKeyPEM string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:           baseURL,
		serviceName:       serviceName,
		issuer:            "fleetway",
		tokenTTL:          5 * time.Minute,
		httpClient:        &http.Client{Timeout: 10 * time.Second},
		keepAliveInterval: 150 * time.Second,
		logger:            slog.Default(),
	}

	if privateKeyPEM != "" {
		key, err := parseRSAPrivateKey(privateKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		c.privateKey = key
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Register registers the service and starts the keep-alive loop.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*ServiceRecord, error) {
	c.mu.Lock()
	if c.registered {
		c.mu.Unlock()
		return nil, fmt.Errorf("already registered, call Shutdown first")
	}
	c.lastRegister = req
	c.mu.Unlock()

	rec, err := c.doRegister(ctx, req)
	if err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.registered = true
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go c.keepAlive(loopCtx)

	c.logger.Info("service registered",
		"service", rec.ServiceName,
		"status", rec.Status,
		"keep_alive_interval", c.keepAliveInterval.String(),
	)
	return rec, nil
}

// Deregister removes the service from the registry. Safe to call after
// Shutdown.
func (c *Client) Deregister(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/v1/registry/services/"+c.serviceName, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deregister request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrServiceNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("deregister failed with status %d: %s", resp.StatusCode, readBody(resp.Body))
	}
}

// Healthy returns all currently healthy services.
func (c *Client) Healthy(ctx context.Context) ([]ServiceRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/registry/services/healthy", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("healthy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("healthy request failed with status %d: %s", resp.StatusCode, readBody(resp.Body))
	}

	var list ServiceList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return list.Services, nil
}

// Shutdown stops the keep-alive loop and waits for it to exit. It does
// not deregister; call Deregister first for a clean exit.
func (c *Client) Shutdown() {
	c.mu.Lock()
	if !c.registered {
		c.mu.Unlock()
		return
	}
	c.registered = false
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
}

func (c *Client) keepAlive(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			req := c.lastRegister
			c.mu.Unlock()

			if _, err := c.doRegister(ctx, req); err != nil {
				c.logger.Warn("keep-alive re-registration failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) doRegister(ctx context.Context, regReq RegisterRequest) (*ServiceRecord, error) {
	body, err := json.Marshal(regReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/registry/services", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		var errResp errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return nil, fmt.Errorf("register failed with status %d: %s", resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("register failed with status %d", resp.StatusCode)
	}

	var rec ServiceRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &rec, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.privateKey != nil {
		token, err := c.serviceToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate service token: %w", err)
		}
		req.Header.Set(headerServiceToken, token)
	}
	return req, nil
}

func (c *Client) serviceToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": c.serviceName,
		"iss": c.issuer,
		"iat": now.Unix(),
		"exp": now.Add(c.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(c.privateKey)
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return string(b)
}

func parseRSAPrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}
	return rsaKey, nil
}
