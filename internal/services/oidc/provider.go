package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config describes the identity provider. It comes from the environment;
// an empty Issuer disables authentication.
type Config struct {
	Issuer       string
	JWKSURL      string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Enabled reports whether an identity provider is configured
func (c Config) Enabled() bool {
	return c.Issuer != ""
}

// LoginConfig contains OIDC login configuration for frontend
type LoginConfig struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
	ClientID              string `json:"client_id"`
	RedirectURI           string `json:"redirect_uri"`
	Scope                 string `json:"scope"`
}

// Provider resolves the provider's endpoints from its discovery document
type Provider struct {
	config     Config
	httpClient *http.Client
}

// NewProvider creates a new OIDC provider manager
func NewProvider(config Config) *Provider {
	return &Provider{
		config:     config,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Config returns the static provider configuration
func (p *Provider) Config() Config {
	return p.config
}

// GetLoginConfig returns the configuration needed for frontend OIDC login.
// Endpoints come from the discovery document; when discovery fails they are
// derived from the issuer.
func (p *Provider) GetLoginConfig(ctx context.Context) (*LoginConfig, error) {
	if !p.config.Enabled() {
		return nil, fmt.Errorf("OIDC is not configured")
	}
	issuer := strings.TrimSuffix(p.config.Issuer, "/")

	login := &LoginConfig{
		ClientID:    p.config.ClientID,
		RedirectURI: p.config.RedirectURI,
		Scope:       "openid email profile",
		JWKSURI:     p.config.JWKSURL,
	}

	if doc, err := p.discover(ctx, issuer); err == nil {
		login.AuthorizationEndpoint = doc.AuthorizationEndpoint
		login.TokenEndpoint = doc.TokenEndpoint
		if login.JWKSURI == "" {
			login.JWKSURI = doc.JWKSURI
		}
	}

	if login.AuthorizationEndpoint == "" {
		login.AuthorizationEndpoint = issuer + "/oauth2/authorize"
	}
	if login.TokenEndpoint == "" {
		login.TokenEndpoint = issuer + "/oauth2/token"
	}
	if login.JWKSURI == "" {
		login.JWKSURI = issuer + "/.well-known/jwks.json"
	}
	return login, nil
}

type discoveryDocument struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
}

func (p *Provider) discover(ctx context.Context, issuer string) (*discoveryDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issuer+"/.well-known/openid-configuration", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discovery document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery endpoint returned status %d", resp.StatusCode)
	}
	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode discovery document: %w", err)
	}
	return &doc, nil
}
