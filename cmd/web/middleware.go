package main

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/myrjola/interviewprep/internal/contexthelpers"
	"github.com/myrjola/interviewprep/internal/logging"
	"github.com/myrjola/interviewprep/internal/random"
	"log/slog"
	"net/http"
)

const (
	requestIDHeader = "X-Request-Id"
	cspNonceLength  = 24
)

// secureHeaders sets headers suitable for a JSON API. The log viewer page relaxes the policy with a nonce, see
// cspNonce.
func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-XSS-Protection", "0")

		next.ServeHTTP(w, r)
	})
}

// cspNonce allows the inline style and script of server rendered pages carrying the per-request nonce.
func (app *application) cspNonce(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := random.Letters(cspNonceLength)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		w.Header().Set("Content-Security-Policy", fmt.Sprintf(
			"default-src 'none'; style-src 'nonce-%[1]s'; script-src 'nonce-%[1]s'; connect-src 'self'; "+
				"frame-ancestors 'none'; base-uri 'none'", nonce))
		next.ServeHTTP(w, contexthelpers.SetCSPNonce(r, nonce))
	})
}

// cors lets the browser front end, which is served from another origin, call the API.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestID tags the request with an id that is echoed in the response and attached to every log record.
func (app *application) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 { //nolint:mnd // ids longer than that are not ours.
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		r = contexthelpers.SetRequestID(r, id)
		r = r.WithContext(logging.WithAttrs(r.Context(), slog.String("request_id", id)))

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			proto  = r.Proto
			method = r.Method
			uri    = r.URL.RequestURI()
		)

		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "received request",
			slog.String("proto", proto), slog.String("method", method), slog.String("uri", uri))

		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
