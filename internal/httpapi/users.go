package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/brannigan/finautomata/internal/httpapi/middle"
	"github.com/brannigan/finautomata/internal/httpapi/result"
	"github.com/brannigan/finautomata/internal/store"
)

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of a store.User -- it never includes
// PasswordHash.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func userResponse(u store.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Username: u.Username}
}

func (api *API) epCreateUser(req *http.Request) result.Result {
	var body CreateUserRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if body.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if body.Password == "" {
		return result.BadRequest("password: property is empty or missing from request", "empty password")
	}

	if _, err := api.Store.Users().GetByUsername(req.Context(), body.Username); err == nil {
		return result.Conflict("a user with that username already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return result.InternalServerError(err.Error())
	}

	hash, err := hashPassword(body.Password)
	if err != nil {
		return result.InternalServerError("could not hash password: " + err.Error())
	}

	created, err := api.Store.Users().Create(req.Context(), store.User{
		Username:       body.Username,
		PasswordHash:   hash,
		LastLogoutTime: time.Now(),
	})
	if err != nil {
		return errToResult(err, "")
	}

	return result.Created(userResponse(created), "user '%s' created", created.Username)
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body returned on successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (api *API) epCreateLogin(req *http.Request) result.Result {
	var body LoginRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	user, err := api.Store.Users().GetByUsername(req.Context(), body.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return result.Unauthorized("the supplied username/password combination is incorrect", "user %q not found", body.Username)
		}
		return result.InternalServerError(err.Error())
	}

	if !checkPassword(user.PasswordHash, body.Password) {
		return result.Unauthorized("the supplied username/password combination is incorrect", "user %q: bad password", body.Username)
	}

	tok, err := api.JWT.Generate(user)
	if err != nil {
		return result.InternalServerError("could not generate token: " + err.Error())
	}

	return result.Created(LoginResponse{Token: tok, UserID: user.ID.String()}, "user '%s' logged in", user.Username)
}

func (api *API) epDeleteLogin(req *http.Request) result.Result {
	user, ok := middle.User(req.Context())
	if !ok {
		return result.InternalServerError("no authenticated user in context")
	}

	user.LastLogoutTime = time.Now()
	if _, err := api.Store.Users().Update(req.Context(), user.ID, user); err != nil {
		return errToResult(err, "")
	}

	return result.NoContent("user '%s' logged out", user.Username)
}
