package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/oauth2"

	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/cloud"
	"github.com/szaher/saleor-cli/internal/config"
)

// TokenVerifier checks a Cloud API token and returns the extra credential
// fields bound to it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (map[string]string, error)
}

// CloudVerifier verifies tokens against the CLI secrets endpoint.
type CloudVerifier struct {
	Client *cloud.Client
}

// Verify implements TokenVerifier.
func (v CloudVerifier) Verify(ctx context.Context, token string) (map[string]string, error) {
	secrets, err := v.Client.WithToken(token).Secrets(ctx)
	if err != nil {
		if errors.Is(err, cloud.ErrUnauthorized) {
			return nil, clierr.Authentication("token rejected: %w", err).
				WithHint("create a new token in the Saleor Cloud dashboard")
		}
		return nil, err
	}
	return secrets, nil
}

// Headless logs in with a token pasted by the user. The token and every
// secret field are written in a single update; nothing is written if
// verification fails.
func Headless(ctx context.Context, store config.Store, verifier TokenVerifier, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return clierr.Validation("token must not be empty")
	}
	secrets, err := verifier.Verify(ctx, token)
	if err != nil {
		return err
	}
	fields := make(map[string]string, len(secrets)+1)
	for k, v := range secrets {
		fields[k] = v
	}
	fields[config.FieldToken] = token
	if err := store.Update(fields); err != nil {
		return clierr.Configuration("saving credentials: %w", err)
	}
	return nil
}

// SaleorFinalizer trades the identity provider's id token for a Cloud API
// token and collects the secrets bound to it.
func SaleorFinalizer(client *cloud.Client) Finalizer {
	return func(ctx context.Context, tok *oauth2.Token) (map[string]string, error) {
		idToken, _ := tok.Extra("id_token").(string)
		if idToken == "" {
			return nil, clierr.Authentication("token response has no id_token")
		}
		cloudToken, err := client.ExchangeIDToken(ctx, idToken)
		if err != nil {
			return nil, err
		}
		secrets, err := CloudVerifier{Client: client}.Verify(ctx, cloudToken)
		if err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(secrets)+1)
		for k, v := range secrets {
			fields[k] = v
		}
		fields[config.FieldToken] = cloudToken
		return fields, nil
	}
}

// VercelFinalizer stores the Vercel access token and the team it was
// installed for.
func VercelFinalizer() Finalizer {
	return func(_ context.Context, tok *oauth2.Token) (map[string]string, error) {
		if tok.AccessToken == "" {
			return nil, clierr.Authentication("Vercel returned no access token")
		}
		fields := map[string]string{config.FieldVercelToken: tok.AccessToken}
		if team, _ := tok.Extra("team_id").(string); team != "" {
			fields[config.FieldVercelTeamID] = team
		}
		return fields, nil
	}
}
