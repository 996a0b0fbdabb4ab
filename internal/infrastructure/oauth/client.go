package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskwave/backend/usecase/auth"
)

// Config identifies this application to the identity provider. TokenURL can
// override the tenant-derived endpoint, mainly for tests.
type Config struct {
	ClientID     string
	ClientSecret string
	TenantID     string
	RedirectURI  string
	Scopes       string
	TokenURL     string
	Timeout      time.Duration
}

// Client exchanges authorization codes at the provider token endpoint using
// the authorization_code grant.
type Client struct {
	cfg    Config
	http   *fasthttp.Client
	logger *zap.Logger
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
	ErrorDesc   string `json:"error_description"`
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Scopes == "" {
		cfg.Scopes = "openid profile email"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &fasthttp.Client{ReadTimeout: cfg.Timeout, WriteTimeout: cfg.Timeout},
		logger: logger,
	}
}

// Exchange trades the authorization code for provider tokens.
func (c *Client) Exchange(ctx context.Context, code string) (auth.ProviderTokens, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", c.cfg.RedirectURI)
	form.Set("scope", c.cfg.Scopes)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint())
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString(form.Encode())

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return auth.ProviderTokens{}, fmt.Errorf("token endpoint request: %w", err)
	}

	var parsed tokenResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return auth.ProviderTokens{}, fmt.Errorf("token endpoint response: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK || parsed.Error != "" {
		c.logger.Warn("token exchange rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("error", parsed.Error))
		return auth.ProviderTokens{}, fmt.Errorf("token endpoint rejected code: %s", parsed.Error)
	}

	return auth.ProviderTokens{
		AccessToken: parsed.AccessToken,
		IDToken:     parsed.IDToken,
		ExpiresIn:   parsed.ExpiresIn,
	}, nil
}

func (c *Client) endpoint() string {
	if c.cfg.TokenURL != "" {
		return c.cfg.TokenURL
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", c.cfg.TenantID)
}

var _ auth.TokenExchanger = (*Client)(nil)
