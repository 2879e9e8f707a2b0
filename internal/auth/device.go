package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
	githubendpoint "golang.org/x/oauth2/github"

	"github.com/szaher/saleor-cli/internal/browser"
	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/config"
)

// DeviceFlow logs in to GitHub with the OAuth device authorization grant.
// The user enters a short code in the browser while the CLI polls for the token.
type DeviceFlow struct {
	ClientID string
	Scopes   []string

	// Endpoint defaults to GitHub's.
	Endpoint oauth2.Endpoint

	// APIBaseURL overrides the GitHub REST base URL used to verify the token.
	APIBaseURL string

	Store      config.Store
	Browser    browser.Opener
	HTTPClient *http.Client
	Out        io.Writer
	Logger     *slog.Logger
}

// Run performs the device flow and stores the token under github_token.
// It returns the login of the verified user.
func (d *DeviceFlow) Run(ctx context.Context) (string, error) {
	if d.ClientID == "" {
		return "", clierr.Configuration("GitHub login: client id is not configured")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := d.Out
	if out == nil {
		out = io.Discard
	}
	endpoint := d.Endpoint
	if endpoint.DeviceAuthURL == "" {
		endpoint = githubendpoint.Endpoint
	}
	cfg := &oauth2.Config{
		ClientID: d.ClientID,
		Endpoint: endpoint,
		Scopes:   d.Scopes,
	}
	if d.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, d.HTTPClient)
	}

	da, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return "", exchangeError(err)
	}
	fmt.Fprintf(out, "First copy your one-time code: %s\n", da.UserCode)
	fmt.Fprintf(out, "Then open %s to authorize the CLI.\n", da.VerificationURI)
	if d.Browser != nil {
		if err := d.Browser.Open(ctx, da.VerificationURI); err != nil {
			logger.Debug("browser launch failed, continuing", "error", err)
		}
	}

	tok, err := cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		if ctx.Err() != nil {
			return "", clierr.Interrupted("GitHub login cancelled: %w", ctx.Err())
		}
		return "", exchangeError(err)
	}

	login, err := GitHubUser(ctx, tok.AccessToken, d.APIBaseURL)
	if err != nil {
		return "", err
	}
	if err := d.Store.Update(map[string]string{config.FieldGitHubToken: tok.AccessToken}); err != nil {
		return "", clierr.Configuration("saving credentials: %w", err)
	}
	logger.Info("github login completed", "user", login)
	return login, nil
}

// GitHubUser returns the login of the token's owner. baseURL may be empty
// to use api.github.com.
func GitHubUser(ctx context.Context, token, baseURL string) (string, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return "", clierr.Configuration("invalid GitHub API URL: %w", err)
		}
		client.BaseURL = u
	}

	user, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return "", clierr.Authentication("GitHub rejected the token: %w", err)
		}
		return "", clierr.Connectivity("verifying GitHub token: %w", err)
	}
	return user.GetLogin(), nil
}
