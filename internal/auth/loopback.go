package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"html/template"
	"net/http"
	"sync"

	"github.com/szaher/saleor-cli/internal/clierr"
)

// ErrStateMismatch is returned when the callback's state does not match the
// nonce sent with the authorization request.
var ErrStateMismatch = errors.New("state parameter mismatch")

// callbackHandler accepts exactly one OAuth redirect. The first request to
// "/" consumes the session whatever its outcome; later requests get 410.
type callbackHandler struct {
	state    string
	exchange func(ctx context.Context, code string) error

	once     sync.Once
	received chan struct{}
	done     chan error
}

func newCallbackHandler(state string, exchange func(ctx context.Context, code string) error) *callbackHandler {
	return &callbackHandler{
		state:    state,
		exchange: exchange,
		received: make(chan struct{}),
		done:     make(chan error, 1),
	}
}

// Done delivers the single outcome of the callback.
func (h *callbackHandler) Done() <-chan error { return h.done }

// Received is closed when the redirect arrives, before it is validated or exchanged.
func (h *callbackHandler) Received() <-chan struct{} { return h.received }

func (h *callbackHandler) callbackReceived() bool {
	select {
	case <-h.received:
		return true
	default:
		return false
	}
}

func (h *callbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Browsers also ask for /favicon.ico; only the redirect target counts.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	consumed := false
	h.once.Do(func() {
		consumed = true
		close(h.received)
		h.done <- h.handle(w, r)
	})
	if !consumed {
		http.Error(w, "This login attempt has already completed.", http.StatusGone)
	}
}

func (h *callbackHandler) handle(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	if subtle.ConstantTimeCompare([]byte(q.Get("state")), []byte(h.state)) != 1 {
		writePage(w, http.StatusBadRequest, false, "The login request could not be verified. Please try again.")
		return clierr.Authentication("%w: the callback did not come from this login attempt", ErrStateMismatch).
			WithHint("run `saleor login` again")
	}

	if e := q.Get("error"); e != "" {
		writePage(w, http.StatusBadRequest, false, "Authorization was denied.")
		msg := e
		if d := q.Get("error_description"); d != "" {
			msg += ": " + d
		}
		return clierr.Authentication("authorization denied: %s", msg)
	}

	code := q.Get("code")
	if code == "" {
		writePage(w, http.StatusBadRequest, false, "The callback did not include an authorization code.")
		return clierr.Authentication("callback did not include an authorization code")
	}

	if err := h.exchange(r.Context(), code); err != nil {
		writePage(w, http.StatusInternalServerError, false, "Login failed. Check your terminal for details.")
		return err
	}

	writePage(w, http.StatusOK, true, "You are logged in. You can close this tab and return to your terminal.")
	return nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title>
<style>body{font-family:system-ui,sans-serif;display:flex;align-items:center;justify-content:center;height:100vh;margin:0}main{text-align:center}</style>
</head>
<body><main><h1>{{.Title}}</h1><p>{{.Message}}</p></main></body>
</html>
`))

func writePage(w http.ResponseWriter, status int, ok bool, message string) {
	title := "Login successful"
	if !ok {
		title = "Login failed"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "close")
	w.WriteHeader(status)
	_ = pageTemplate.Execute(w, struct{ Title, Message string }{title, message})
}
