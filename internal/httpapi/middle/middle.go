// Package middle contains net/http middleware for the HTTP API.
//
// Grounded on server/middle/middle.go: an AuthHandler that extracts a
// bearer JWT, validates it against a user store, and stashes the result in
// the request context, plus a panic-recovery wrapper.
package middle

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/brannigan/finautomata/internal/httpapi/auth"
	"github.com/brannigan/finautomata/internal/httpapi/result"
	"github.com/brannigan/finautomata/internal/store"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(next http.Handler) http.Handler

// ctxKey is an unexported type so context keys set by this package can
// never collide with a key set elsewhere.
type ctxKey int

const (
	ctxLoggedIn ctxKey = iota
	ctxUser
)

// LoggedIn reports whether the request's AuthHandler found a valid token.
func LoggedIn(ctx context.Context) bool {
	v, _ := ctx.Value(ctxLoggedIn).(bool)
	return v
}

// User returns the authenticated user attached to the context, if any.
func User(ctx context.Context) (store.User, bool) {
	u, ok := ctx.Value(ctxUser).(store.User)
	return u, ok
}

type authHandler struct {
	users         store.UserRepository
	jwt           *auth.JWT
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *authHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool
	var user store.User

	tok, err := auth.BearerToken(req)
	if err == nil {
		user, err = ah.jwt.ValidateAndLookup(req.Context(), tok, ah.users)
		if err == nil {
			loggedIn = true
		}
	}

	if !loggedIn && ah.required {
		msg := "no token presented"
		if err != nil {
			msg = err.Error()
		}
		r := result.Unauthorized("", msg)
		time.Sleep(ah.unauthedDelay)
		r.WriteResponse(w, req)
		return
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, ctxLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, ctxUser, user)
	ah.next.ServeHTTP(w, req.WithContext(ctx))
}

// RequireAuth rejects any request without a valid bearer token before it
// reaches next.
func RequireAuth(users store.UserRepository, j *auth.JWT, unauthedDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &authHandler{users: users, jwt: j, required: true, unauthedDelay: unauthedDelay, next: next}
	}
}

// OptionalAuth attaches user info to the request context when a valid
// token is present, but never rejects the request for lacking one.
func OptionalAuth(users store.UserRepository, j *auth.JWT, unauthedDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &authHandler{users: users, jwt: j, required: false, unauthedDelay: unauthedDelay, next: next}
	}
}

// DontPanic recovers from a panic in next, converting it into a 500
// response instead of crashing the server.
func DontPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer panicTo500(w, req)
			next.ServeHTTP(w, req)
		})
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) {
	if panicErr := recover(); panicErr != nil {
		result.InternalServerError(fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack()))).
			WriteResponse(w, req)
	}
}
