// Package httpapi exposes the automaton engine over HTTP: account
// management, CRUD on saved machines, and one-shot step/run/test
// operations against a machine's structured form.
//
// Grounded on server/api/api.go's EndpointFunc + panic-recovering wrapper,
// server/server.go's route table comment, and server/api/login.go's
// handler shape (parse request, call the service layer, translate its
// error into a result.Result). Routing itself uses go-chi/chi/v5, matching
// the teacher's router choice.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/brannigan/finautomata/internal/httpapi/auth"
	"github.com/brannigan/finautomata/internal/httpapi/middle"
	"github.com/brannigan/finautomata/internal/httpapi/result"
	"github.com/brannigan/finautomata/internal/httpapi/serr"
	"github.com/brannigan/finautomata/internal/store"
)

// PathPrefix is the prefix every route in Router is mounted under.
const PathPrefix = "/api/v1"

// API holds the dependencies every endpoint needs.
type API struct {
	Store       store.Store
	JWT         *auth.JWT
	UnauthDelay time.Duration
}

// New creates an API with a one-second unauthorized-response delay, the
// same default server/api.go documents for UnauthDelay.
func New(st store.Store, secret []byte) *API {
	return &API{
		Store:       st,
		JWT:         auth.New(secret),
		UnauthDelay: time.Second,
	}
}

// Router builds the full chi.Router for the API, mounted at PathPrefix.
func (api *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middle.DontPanic())

	r.Route(PathPrefix, func(r chi.Router) {
		r.Post("/users", api.endpoint(api.epCreateUser))
		r.Post("/login", api.endpoint(api.epCreateLogin))

		r.Group(func(r chi.Router) {
			r.Use(middle.RequireAuth(api.Store.Users(), api.JWT, api.UnauthDelay))

			r.Delete("/login", api.endpoint(api.epDeleteLogin))

			r.Get("/machines", api.endpoint(api.epListMachines))
			r.Post("/machines", api.endpoint(api.epCreateMachine))
			r.Get("/machines/{id}", api.endpoint(api.epGetMachine))
			r.Put("/machines/{id}", api.endpoint(api.epUpdateMachine))
			r.Delete("/machines/{id}", api.endpoint(api.epDeleteMachine))

			r.Post("/machines/{id}/step", api.endpoint(api.epStepMachine))
			r.Post("/machines/{id}/run", api.endpoint(api.epRunMachine))
			r.Post("/machines/{id}/test", api.endpoint(api.epTestMachine))
			r.Post("/machines/{id}/batch-test", api.endpoint(api.epBatchTestMachine))
		})
	})

	return r
}

type endpointFunc func(req *http.Request) result.Result

// endpoint wraps an endpointFunc into an http.HandlerFunc, pausing before
// sending back 401/403/500 responses per UnauthDelay.
func (api *API) endpoint(ep endpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r := ep(req)
		if r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden || r.Status == http.StatusInternalServerError {
			time.Sleep(api.UnauthDelay)
		}
		r.WriteResponse(w, req)
	}
}

func parseJSON(req *http.Request, v interface{}) error {
	defer req.Body.Close()
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}
	return nil
}

func urlParamID(req *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(req, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, serr.New("id is not a valid identifier", serr.ErrBadArgument)
	}
	return id, nil
}

func errToResult(err error, notFoundMsg string) result.Result {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return result.NotFound(notFoundMsg)
	case errors.Is(err, store.ErrConstraintViolation):
		return result.Conflict("a resource with that identifying information already exists")
	default:
		return result.InternalServerError(err.Error())
	}
}

func hashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
