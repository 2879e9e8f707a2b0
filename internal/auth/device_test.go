package auth

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/config"
	"github.com/szaher/saleor-cli/internal/telemetry"
	"github.com/szaher/saleor-cli/internal/testutil"
)

func newGitHubServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login/device/code":
			testutil.WriteJSON(t, w, http.StatusOK, map[string]any{
				"device_code":      "dev-1",
				"user_code":        "ABCD-1234",
				"verification_uri": "https://github.com/login/device",
				"expires_in":       900,
				"interval":         1,
			})
		case "/login/oauth/access_token":
			_ = r.ParseForm()
			if r.Form.Get("device_code") != "dev-1" {
				testutil.WriteJSON(t, w, http.StatusBadRequest, map[string]string{"error": "bad_verification_code"})
				return
			}
			testutil.WriteJSON(t, w, http.StatusOK, map[string]string{
				"access_token": "gho_abc",
				"token_type":   "bearer",
			})
		case "/api/user":
			if r.Header.Get("Authorization") != "Bearer gho_abc" {
				testutil.WriteJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
				return
			}
			testutil.WriteJSON(t, w, http.StatusOK, map[string]any{"login": "octocat", "id": 1})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDeviceFlow_Run(t *testing.T) {
	srv := newGitHubServer(t)
	store := config.NewMemoryStore(nil)
	var out bytes.Buffer
	d := &DeviceFlow{
		ClientID: "Iv1.test",
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: srv.URL + "/login/device/code",
			TokenURL:      srv.URL + "/login/oauth/access_token",
		},
		APIBaseURL: srv.URL + "/api",
		Store:      store,
		Out:        &out,
		Logger:     telemetry.Discard(),
	}

	login, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if login != "octocat" {
		t.Errorf("login = %q, want octocat", login)
	}
	rec, _ := store.Get()
	if rec.ProviderToken("github") != "gho_abc" {
		t.Errorf("github_token = %q", rec.ProviderToken("github"))
	}
	if !strings.Contains(out.String(), "ABCD-1234") {
		t.Errorf("user code not printed:\n%s", out.String())
	}
}

func TestDeviceFlow_MissingClientID(t *testing.T) {
	_, err := (&DeviceFlow{}).Run(context.Background())
	if got := clierr.CategoryOf(err); got != clierr.CategoryConfiguration {
		t.Errorf("category = %q, want configuration", got)
	}
}

func TestGitHubUser_BadCredentials(t *testing.T) {
	srv := newGitHubServer(t)
	_, err := GitHubUser(context.Background(), "nope", srv.URL+"/api/")
	if got := clierr.CategoryOf(err); got != clierr.CategoryAuthentication {
		t.Errorf("category = %q (err %v), want authentication", got, err)
	}
}
