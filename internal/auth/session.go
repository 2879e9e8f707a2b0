package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
)

// session is the state of one login attempt. It lives only as long as the
// loopback listener.
type session struct {
	State       string
	Verifier    string
	RedirectURI string
}

// newState returns a nonce with 128 bits of entropy, URL-safe base64 encoded.
func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// authCodeURL builds the browser URL for the session.
func authCodeURL(p Provider, cfg *oauth2.Config, s *session) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(p.AuthParams)+1)
	if s.Verifier != "" {
		opts = append(opts, oauth2.S256ChallengeOption(s.Verifier))
	}
	for k, v := range p.AuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return cfg.AuthCodeURL(s.State, opts...)
}
