package tanda

import (
	// Go Internal Packages
	"context"
	"net/http"
	"net/url"
	"time"

	// Local Packages
	errors "tanda-go/errors"
	models "tanda-go/models"

	// External Packages
	"go.uber.org/zap"
)

const (
	tokenCacheKey = "tanda_token"
	tokenEndpoint = "v1/oauth2/token"

	// used when the provider does not say how long the token lives
	defaultTokenTTL = 58 * time.Minute
)

// Token returns the cached bearer token or exchanges the client credentials
// for a new one. Concurrent refreshes share a single request.
func (c *Client) Token(ctx context.Context) (string, error) {
	if token, ok := c.cachedToken(ctx); ok {
		return token, nil
	}

	v, err, shared := c.group.Do(tokenCacheKey, func() (any, error) {
		if token, ok := c.cachedToken(ctx); ok {
			return token, nil
		}
		return c.refreshToken(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	if shared {
		c.logger.Debug("shared in-flight token refresh")
	}
	return v.(string), nil
}

func (c *Client) cachedToken(ctx context.Context) (string, bool) {
	token, ok, err := c.cache.Get(ctx, tokenCacheKey)
	if err != nil {
		c.logger.Warn("token cache read failed", zap.Error(err))
		return "", false
	}
	return token, ok && token != ""
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}

	var resp models.TokenResponse
	if err := c.send(ctx, c.cfg.AuthBaseURL, http.MethodPost, tokenEndpoint, form, "", &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.HTTPProviderErr(http.StatusBadGateway, "failed to retrieve access token", nil)
	}

	ttl := c.tokenTTL(resp.ExpiresIn)
	if err := c.cache.Set(ctx, tokenCacheKey, resp.AccessToken, ttl); err != nil {
		c.logger.Warn("token cache write failed", zap.Error(err))
	}
	c.logger.Info("tanda access token refreshed", zap.Duration("ttl", ttl))
	return resp.AccessToken, nil
}

// tokenTTL keeps the token slightly shorter than the provider does.
func (c *Client) tokenTTL(expiresIn int64) time.Duration {
	if expiresIn <= 0 {
		return defaultTokenTTL
	}
	lifetime := time.Duration(expiresIn) * time.Second
	ttl := lifetime - c.cfg.TokenTTLMargin
	if ttl <= 0 {
		return lifetime / 2
	}
	return ttl
}
