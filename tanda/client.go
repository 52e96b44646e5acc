package tanda

import (
	// Go Internal Packages
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	// Local Packages
	config "tanda-go/config"
	errors "tanda-go/errors"

	// External Packages
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TokenCache stores the bearer token between calls. Implementations must be
// safe for concurrent use.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Client issues authenticated calls against the Tanda API.
type Client struct {
	cfg     config.Tanda
	http    *http.Client
	cache   TokenCache
	breaker *gobreaker.CircuitBreaker
	group   singleflight.Group
	logger  *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client, its timeout is kept as given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBreaker configures the circuit breaker wrapping every outbound request.
func WithBreaker(conf config.Breaker) Option {
	return func(c *Client) { c.breaker = newBreaker(conf, c.logger) }
}

// NewClient validates the configuration and builds a client. A missing
// setting is a configuration error.
func NewClient(cfg config.Tanda, cache TokenCache, logger *zap.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigErr(err)
	}
	if cache == nil {
		return nil, errors.ConfigErr(errors.EmptyParamErr("token cache"))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		logger: logger.With(zap.String("component", "tanda-client")),
	}
	c.breaker = newBreaker(config.Breaker{}, c.logger)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Call sends payload to endpoint on the API base URL and decodes the JSON
// body into out. url.Values payloads are form encoded, anything else is sent
// as JSON. Pass a *json.RawMessage as out to keep the body untouched.
func (c *Client) Call(ctx context.Context, method, endpoint string, payload any, out any) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}

	err = c.send(ctx, c.cfg.APIBaseURL, method, endpoint, payload, token, out)
	if pe, ok := errors.AsProviderError(err); ok && pe.StatusCode == http.StatusUnauthorized {
		// next call fetches a fresh token
		if delErr := c.cache.Delete(ctx, tokenCacheKey); delErr != nil {
			c.logger.Warn("failed to drop rejected token", zap.Error(delErr))
		}
	}
	return err
}

func (c *Client) send(ctx context.Context, baseURL, method, endpoint string, payload any, token string, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, baseURL, method, endpoint, payload, token, out)
	})
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn("tanda request rejected by circuit breaker", zap.String("endpoint", endpoint))
		return errors.CircuitOpenErr(err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, baseURL, method, endpoint string, payload any, token string, out any) error {
	target := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")

	var (
		body        io.Reader
		contentType string
	)
	switch p := payload.(type) {
	case nil:
	case url.Values:
		body = strings.NewReader(p.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		encoded, err := json.Marshal(p)
		if err != nil {
			return errors.E(errors.Invalid, "cannot encode tanda payload", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return errors.E(errors.Invalid, "cannot build tanda request", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		code := errors.CodeTransport
		if isTimeout(err) {
			code = errors.CodeTimeout
		}
		c.logger.Error("tanda request failed", zap.String("method", method), zap.String("endpoint", endpoint),
			zap.String("code", code), zap.Error(err))
		return errors.TransportProviderErr(code, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.TransportProviderErr(errors.CodeTransport, err)
	}

	c.logger.Debug("tanda request completed", zap.String("method", method), zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	if resp.StatusCode >= http.StatusBadRequest {
		pe := providerErr(method, target, resp, raw)
		c.logger.Error("tanda api error", zap.Int("status", pe.StatusCode), zap.String("message", pe.Message))
		return pe
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.E(errors.Internal, "cannot decode tanda response", err)
	}
	return nil
}

// providerErr extracts the most useful message from an error body, falling
// back to a description of the exchange when the body is not JSON.
func providerErr(method, target string, resp *http.Response, raw []byte) *errors.ProviderError {
	var details map[string]any
	message := ""
	if err := json.Unmarshal(raw, &details); err == nil {
		for _, key := range []string{"message", "error_description", "error"} {
			if s, ok := details[key].(string); ok && s != "" {
				message = s
				break
			}
		}
	}
	if message == "" {
		message = fmt.Sprintf("%s %s resulted in a %s response", method, target, resp.Status)
	}
	return errors.HTTPProviderErr(resp.StatusCode, message, details)
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}

func newBreaker(conf config.Breaker, logger *zap.Logger) *gobreaker.CircuitBreaker {
	threshold := conf.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tanda",
		MaxRequests: conf.MaxRequests,
		Interval:    conf.Interval,
		Timeout:     conf.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 4xx answers mean the provider is up, only outages trip the breaker
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			pe, ok := errors.AsProviderError(err)
			return !ok || !pe.Retryable()
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", zap.String("breaker", name),
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
}
