// Package result holds the values httpapi handlers return to describe an
// HTTP response, deferring JSON marshaling and logging to one shared place.
//
// Grounded on server/result/result.go: a status code plus a response body,
// built through constructors named for the HTTP status they produce.
package result

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// ErrorResponse is the JSON body written for any Result built by one of the
// error constructors (BadRequest, Unauthorized, Forbidden, NotFound,
// Conflict, InternalServerError).
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Result is the output of an endpoint handler: an HTTP status, a body ready
// for JSON marshaling, and a message for the request log that is never sent
// to the client.
type Result struct {
	Status      int
	IsErr       bool
	InternalMsg string

	resp          interface{}
	hdrs          [][2]string
	respJSONBytes []byte
}

// OK returns a 200 wrapping respObj.
func OK(respObj interface{}, internalMsg ...interface{}) Result {
	return response(http.StatusOK, respObj, "OK", internalMsg...)
}

// Created returns a 201 wrapping respObj.
func Created(respObj interface{}, internalMsg ...interface{}) Result {
	return response(http.StatusCreated, respObj, "created", internalMsg...)
}

// NoContent returns a 204 with no body.
func NoContent(internalMsg ...interface{}) Result {
	return response(http.StatusNoContent, nil, "no content", internalMsg...)
}

// BadRequest returns a 400 with userMsg as the client-visible error.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	return errResult(http.StatusBadRequest, userMsg, "bad request", internalMsg...)
}

// Unauthorized returns a 401. An empty userMsg is replaced with a generic
// message.
func Unauthorized(userMsg string, internalMsg ...interface{}) Result {
	if userMsg == "" {
		userMsg = "You are not authorized to do that"
	}
	r := errResult(http.StatusUnauthorized, userMsg, "unauthorized", internalMsg...)
	return r.WithHeader("WWW-Authenticate", `Bearer realm="finautomata server", charset="utf-8"`)
}

// Forbidden returns a 403.
func Forbidden(internalMsg ...interface{}) Result {
	return errResult(http.StatusForbidden, "You don't have permission to do that", "forbidden", internalMsg...)
}

// NotFound returns a 404.
func NotFound(internalMsg ...interface{}) Result {
	return errResult(http.StatusNotFound, "The requested resource was not found", "not found", internalMsg...)
}

// Conflict returns a 409 with userMsg as the client-visible error.
func Conflict(userMsg string, internalMsg ...interface{}) Result {
	return errResult(http.StatusConflict, userMsg, "conflict", internalMsg...)
}

// InternalServerError returns a 500. internalMsg is never sent to the
// client.
func InternalServerError(internalMsg ...interface{}) Result {
	return errResult(http.StatusInternalServerError, "An internal server error occurred", "internal server error", internalMsg...)
}

func response(status int, respObj interface{}, defaultMsg string, internalMsg ...interface{}) Result {
	return Result{
		Status:      status,
		InternalMsg: formatMsg(defaultMsg, internalMsg),
		resp:        respObj,
	}
}

func errResult(status int, userMsg, defaultMsg string, internalMsg ...interface{}) Result {
	return Result{
		Status:      status,
		IsErr:       true,
		InternalMsg: formatMsg(defaultMsg, internalMsg),
		resp:        ErrorResponse{Error: userMsg, Status: status},
	}
}

func formatMsg(defaultMsg string, args []interface{}) string {
	if len(args) == 0 {
		return defaultMsg
	}
	format, ok := args[0].(string)
	if !ok {
		return defaultMsg
	}
	return fmt.Sprintf(format, args[1:]...)
}

// WithHeader returns a copy of r with an extra response header set.
func (r Result) WithHeader(name, val string) Result {
	cp := r
	cp.hdrs = append(append([][2]string{}, r.hdrs...), [2]string{name, val})
	return cp
}

func (r *Result) prepare() error {
	if r.respJSONBytes != nil || r.Status == http.StatusNoContent {
		return nil
	}
	data, err := json.Marshal(r.resp)
	if err != nil {
		return err
	}
	r.respJSONBytes = data
	return nil
}

// WriteResponse marshals and writes r to w, then logs it against req.
func (r Result) WriteResponse(w http.ResponseWriter, req *http.Request) {
	if r.Status == 0 {
		panic("result not populated")
	}

	if err := r.prepare(); err != nil {
		fallback := errResult(http.StatusInternalServerError, "An internal server error occurred",
			"could not marshal JSON response: "+err.Error())
		fallback.writeRaw(w)
		fallback.log(req)
		return
	}

	r.writeRaw(w)
	r.log(req)
}

func (r Result) writeRaw(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	for _, h := range r.hdrs {
		w.Header().Set(h[0], h[1])
	}
	w.WriteHeader(r.Status)
	if r.Status != http.StatusNoContent {
		w.Write(r.respJSONBytes)
	}
}

func (r Result) log(req *http.Request) {
	level := "INFO "
	if r.IsErr {
		level = "ERROR"
	}
	remoteIP := strings.SplitN(req.RemoteAddr, ":", 2)[0]
	log.Printf("%s %s %s %s: HTTP-%d %s", level, remoteIP, req.Method, req.URL.Path, r.Status, r.InternalMsg)
}
