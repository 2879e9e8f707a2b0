// Package auth implements the CLI's login flows: the loopback OAuth
// authorization-code flow, headless token login, and the GitHub device flow.
package auth

import (
	"fmt"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/szaher/saleor-cli/internal/config"
)

// Provider describes an OAuth authorization server the loopback flow can
// log in against.
type Provider struct {
	// Name is used in user-facing messages, e.g. "Saleor Cloud".
	Name string

	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	Scopes       []string

	// Port is the fixed loopback port registered as the redirect URI.
	Port int

	// AuthParams are extra query parameters for the authorization URL.
	AuthParams map[string]string

	// PKCE adds an S256 code challenge to the authorization request.
	PKCE bool
}

// RedirectURI returns the loopback redirect target.
func (p Provider) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/", p.Port)
}

func (p Provider) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.AuthURL,
			TokenURL:  p.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: p.RedirectURI(),
		Scopes:      p.Scopes,
	}
}

func (p Provider) validate() error {
	if p.ClientID == "" {
		return fmt.Errorf("%s login: client id is not configured", p.Name)
	}
	if _, err := url.ParseRequestURI(p.AuthURL); err != nil {
		return fmt.Errorf("%s login: invalid authorization URL: %w", p.Name, err)
	}
	if _, err := url.ParseRequestURI(p.TokenURL); err != nil {
		return fmt.Errorf("%s login: invalid token URL: %w", p.Name, err)
	}
	if p.Port <= 0 || p.Port > 65535 {
		return fmt.Errorf("%s login: invalid port %d", p.Name, p.Port)
	}
	return nil
}

// SaleorProvider is the Saleor Cloud identity provider (a Cognito user pool).
func SaleorProvider(s *config.Settings) Provider {
	return Provider{
		Name:     "Saleor Cloud",
		ClientID: s.ClientID,
		AuthURL:  s.AuthURL + "/oauth2/authorize",
		TokenURL: s.AuthURL + "/oauth2/token",
		Scopes:   []string{"openid", "email", "profile"},
		Port:     s.LoginPort,
		AuthParams: map[string]string{
			"identity_provider": "COGNITO",
		},
		PKCE: true,
	}
}

// VercelProvider is the Vercel integration used to deploy storefronts.
func VercelProvider(s *config.Settings) Provider {
	return Provider{
		Name:         "Vercel",
		ClientID:     s.VercelClientID,
		ClientSecret: s.VercelClientSecret,
		AuthURL:      fmt.Sprintf("https://vercel.com/integrations/%s/new", s.VercelIntegration),
		TokenURL:     "https://api.vercel.com/v2/oauth/access_token",
		Port:         s.LoginPort,
	}
}
