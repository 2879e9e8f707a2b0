package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"

	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/cloud"
	"github.com/szaher/saleor-cli/internal/config"
	"github.com/szaher/saleor-cli/internal/telemetry"
	"github.com/szaher/saleor-cli/internal/testutil"
)

// newSecretsServer serves /cli/secrets/ for validToken and 401 otherwise.
func newSecretsServer(t *testing.T, validToken string, secrets map[string]string) *cloud.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cli/secrets/":
			if r.Header.Get("Authorization") != "Token "+validToken {
				testutil.WriteJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
				return
			}
			testutil.WriteJSON(t, w, http.StatusOK, secrets)
		case "/auth/token/":
			testutil.WriteJSON(t, w, http.StatusOK, map[string]string{"token": validToken})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return cloud.NewClient(srv.URL, "", cloud.WithLogger(telemetry.Discard()))
}

func TestHeadless_PersistsTokenAndSecrets(t *testing.T) {
	client := newSecretsServer(t, "T", map[string]string{"sentry_dsn": "https://sentry.example/1"})
	store := config.NewMemoryStore(nil)

	if err := Headless(context.Background(), store, CloudVerifier{Client: client}, "  T \n"); err != nil {
		t.Fatalf("Headless() error: %v", err)
	}
	rec, _ := store.Get()
	if rec.Token() != "T" {
		t.Errorf("token = %q, want T", rec.Token())
	}
	if rec["sentry_dsn"] != "https://sentry.example/1" {
		t.Errorf("sentry_dsn = %q", rec["sentry_dsn"])
	}
	if store.Writes() != 1 {
		t.Errorf("writes = %d, want a single update", store.Writes())
	}
}

func TestHeadless_InvalidTokenWritesNothing(t *testing.T) {
	client := newSecretsServer(t, "T", map[string]string{})
	store := config.NewMemoryStore(map[string]string{"token": "old"})

	err := Headless(context.Background(), store, CloudVerifier{Client: client}, "wrong")
	if got := clierr.CategoryOf(err); got != clierr.CategoryAuthentication {
		t.Fatalf("category = %q (err %v), want authentication", got, err)
	}
	testutil.AssertErrorContains(t, err, "token rejected")
	if store.Writes() != 0 {
		t.Errorf("writes = %d, want 0", store.Writes())
	}
}

func TestHeadless_EmptyToken(t *testing.T) {
	err := Headless(context.Background(), config.NewMemoryStore(nil), CloudVerifier{}, "   ")
	if got := clierr.CategoryOf(err); got != clierr.CategoryValidation {
		t.Errorf("category = %q, want validation", got)
	}
}

func TestSaleorFinalizer(t *testing.T) {
	client := newSecretsServer(t, "cloud-tok", map[string]string{"sentry_dsn": "dsn"})
	tok := (&oauth2.Token{AccessToken: "access"}).WithExtra(map[string]any{"id_token": "id-456"})

	fields, err := SaleorFinalizer(client)(context.Background(), tok)
	if err != nil {
		t.Fatalf("finalizer error: %v", err)
	}
	if fields[config.FieldToken] != "cloud-tok" || fields["sentry_dsn"] != "dsn" {
		t.Errorf("fields = %v", fields)
	}
}

func TestSaleorFinalizer_MissingIDToken(t *testing.T) {
	client := newSecretsServer(t, "cloud-tok", nil)
	_, err := SaleorFinalizer(client)(context.Background(), &oauth2.Token{AccessToken: "access"})
	testutil.AssertErrorContains(t, err, "id_token")
}

func TestVercelFinalizer(t *testing.T) {
	tok := (&oauth2.Token{AccessToken: "vc"}).WithExtra(map[string]any{"team_id": "team_1"})
	fields, err := VercelFinalizer()(context.Background(), tok)
	if err != nil {
		t.Fatal(err)
	}
	if fields[config.FieldVercelToken] != "vc" || fields[config.FieldVercelTeamID] != "team_1" {
		t.Errorf("fields = %v", fields)
	}
}
