package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/szaher/saleor-cli/internal/browser"
	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/config"
)

// Sentinel errors for the interactive flow's environment failures.
var (
	ErrPortInUse     = errors.New("login port is already in use")
	ErrBrowserLaunch = errors.New("could not open a browser")
)

const headlessHint = "run `saleor login --headless` and paste a token instead"

// Finalizer turns the provider's token response into the credential fields
// to persist. It runs before anything is written; an error leaves the
// store untouched.
type Finalizer func(ctx context.Context, tok *oauth2.Token) (map[string]string, error)

// AccessTokenFinalizer stores the access token under field.
func AccessTokenFinalizer(field string) Finalizer {
	return func(_ context.Context, tok *oauth2.Token) (map[string]string, error) {
		if tok.AccessToken == "" {
			return nil, clierr.Authentication("token response has no access_token")
		}
		return map[string]string{field: tok.AccessToken}, nil
	}
}

// Flow runs the loopback authorization-code login:
//
//	Idle → AwaitingCallback → ExchangingToken → Completed | Failed
//
// The listener is bound before the browser opens and is always shut down
// before Run returns.
type Flow struct {
	Provider Provider
	Store    config.Store
	Browser  browser.Opener
	Finalize Finalizer

	// Timeout bounds the wait for the browser redirect; zero waits until ctx ends.
	Timeout time.Duration

	// GraceDelay keeps the listener up after the outcome so the browser
	// receives the result page.
	GraceDelay time.Duration

	// HTTPClient is used for the token exchange.
	HTTPClient *http.Client

	// Out receives user-facing instructions.
	Out    io.Writer
	Logger *slog.Logger

	// NewState overrides nonce generation.
	NewState func() (string, error)
}

// Run performs one login attempt.
func (f *Flow) Run(ctx context.Context) error {
	if err := f.Provider.validate(); err != nil {
		return clierr.Configuration("%w", err)
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("provider", f.Provider.Name)
	out := f.Out
	if out == nil {
		out = io.Discard
	}
	finalize := f.Finalize
	if finalize == nil {
		finalize = AccessTokenFinalizer(config.FieldToken)
	}
	grace := f.GraceDelay
	if grace <= 0 {
		grace = 500 * time.Millisecond
	}

	// Idle: build the session and the authorization URL.
	sess, err := f.newSession()
	if err != nil {
		return err
	}
	cfg := f.Provider.oauth2Config()
	authURL := authCodeURL(f.Provider, cfg, sess)

	// AwaitingCallback: bind the fixed port first. The redirect URI is
	// already fixed, so a busy port is fatal rather than retried elsewhere.
	listeners, err := listenLoopback(f.Provider.Port)
	if err != nil {
		return err
	}

	// Cancelled before the server drains so an abandoned exchange never persists.
	exchangeCtx, cancelExchange := context.WithCancel(ctx)
	handler := newCallbackHandler(sess.State, func(_ context.Context, code string) error {
		return f.complete(exchangeCtx, cfg, sess, code, finalize, logger)
	})
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g errgroup.Group
	for _, ln := range listeners {
		ln := ln
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	defer func() {
		cancelExchange()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
		}
		if err := g.Wait(); err != nil {
			logger.Debug("loopback server stopped with error", "error", err)
		}
		logger.Debug("loopback listener closed", "port", f.Provider.Port)
	}()

	var timeout <-chan time.Time
	if f.Timeout > 0 {
		timer := time.NewTimer(f.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	logger.Debug("awaiting callback", "redirect_uri", sess.RedirectURI)
	fmt.Fprintf(out, "Opening your browser to log in to %s.\n", f.Provider.Name)
	fmt.Fprintf(out, "If it does not open, visit:\n\n  %s\n\n", authURL)

	if f.Browser != nil {
		if err := f.Browser.Open(ctx, authURL); err != nil {
			logger.Debug("browser launch failed", "error", err)
			return clierr.Environment("%w: %v", ErrBrowserLaunch, err).WithHint(headlessHint)
		}
	}

	received := handler.Received()
	for {
		select {
		case <-received:
			// ExchangingToken: the timeout bounds only the wait for the redirect.
			logger.Debug("callback received")
			received, timeout = nil, nil

		case result := <-handler.Done():
			// Completed or Failed. Hold the socket briefly so the page reaches the browser.
			select {
			case <-time.After(grace):
			case <-ctx.Done():
			}
			if result != nil {
				logger.Debug("login failed", "error", result)
				return result
			}
			logger.Info("login completed")
			return nil

		case <-ctx.Done():
			if handler.callbackReceived() {
				// The exchange sees the same cancellation; report what it actually did.
				if result := <-handler.Done(); result == nil {
					logger.Info("login completed")
					return nil
				}
			}
			return clierr.Interrupted("login cancelled: %w", ctx.Err())

		case <-timeout:
			if handler.callbackReceived() {
				received, timeout = nil, nil
				continue
			}
			return clierr.Timeout("no login callback received within %s", f.Timeout).WithHint(headlessHint)
		}
	}
}

func (f *Flow) newSession() (*session, error) {
	gen := f.NewState
	if gen == nil {
		gen = newState
	}
	state, err := gen()
	if err != nil {
		return nil, err
	}
	s := &session{State: state, RedirectURI: f.Provider.RedirectURI()}
	if f.Provider.PKCE {
		s.Verifier = oauth2.GenerateVerifier()
	}
	return s, nil
}

// complete is the ExchangingToken state: trade the code, finalize, persist.
// Nothing is written unless every step succeeds.
func (f *Flow) complete(ctx context.Context, cfg *oauth2.Config, sess *session, code string, finalize Finalizer, logger *slog.Logger) error {
	if f.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.HTTPClient)
	}

	var opts []oauth2.AuthCodeOption
	if sess.Verifier != "" {
		opts = append(opts, oauth2.VerifierOption(sess.Verifier))
	}
	tok, err := cfg.Exchange(ctx, code, opts...)
	if err != nil {
		return exchangeError(err)
	}
	logger.Debug("authorization code exchanged", "token_type", tok.Type())

	fields, err := finalize(ctx, tok)
	if err != nil {
		if clierr.CategoryOf(err) == "" {
			return clierr.Authentication("completing login: %w", err)
		}
		return err
	}
	if len(fields) == 0 {
		return clierr.Authentication("login produced no credentials")
	}

	if f.Store == nil {
		return errors.New("login flow has no credential store")
	}
	if err := ctx.Err(); err != nil {
		return clierr.Interrupted("login cancelled: %w", err)
	}
	if err := f.Store.Update(fields); err != nil {
		return clierr.Configuration("saving credentials: %w", err)
	}
	return nil
}

func exchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		msg := re.ErrorCode
		if re.ErrorDescription != "" {
			msg += ": " + re.ErrorDescription
		}
		if msg == "" && re.Response != nil {
			msg = re.Response.Status
		}
		return clierr.Authentication("token endpoint rejected the authorization code: %s", msg)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return clierr.Connectivity("token endpoint unreachable: %w", err)
	}
	return clierr.Authentication("exchanging authorization code: %w", err)
}

// listenLoopback binds port on 127.0.0.1 and, where the host has IPv6, on
// [::1]. The redirect URI names localhost, which may resolve to either.
func listenLoopback(port int) ([]net.Listener, error) {
	p := strconv.Itoa(port)
	v4, err := net.Listen("tcp4", net.JoinHostPort("127.0.0.1", p))
	if err != nil {
		return nil, listenError(port, err)
	}
	v6, err := net.Listen("tcp6", net.JoinHostPort("::1", p))
	switch {
	case err == nil:
		return []net.Listener{v4, v6}, nil
	case errors.Is(err, syscall.EADDRINUSE):
		_ = v4.Close()
		return nil, listenError(port, err)
	default:
		// No IPv6 loopback on this host.
		return []net.Listener{v4}, nil
	}
}

func listenError(port int, err error) error {
	if errors.Is(err, syscall.EADDRINUSE) {
		return clierr.Environment("%w: port %d", ErrPortInUse, port).WithHint(headlessHint)
	}
	return clierr.Environment("listening on port %d: %w", port, err).WithHint(headlessHint)
}
