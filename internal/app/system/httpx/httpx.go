// Package httpx writes the JSON envelopes returned by every API route and
// decodes request bodies.
//
// Success bodies are {"success":true, ...}; failures are
// {"success":false,"message":"..."}.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// M is shorthand for an ad-hoc JSON object.
type M map[string]any

// ErrEmptyBody is returned by Decode when the request carried no body.
var ErrEmptyBody = errors.New("request body is empty")

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes {"success":true,"data":data}.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, M{"success": true, "data": data})
}

// Created writes 201 {"success":true,"message":msg,"data":data}. An empty
// message is omitted.
func Created(w http.ResponseWriter, msg string, data any) {
	body := M{"success": true, "data": data}
	if msg != "" {
		body["message"] = msg
	}
	JSON(w, http.StatusCreated, body)
}

// Success writes 200 with success:true merged into fields.
func Success(w http.ResponseWriter, fields M) {
	body := M{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	JSON(w, http.StatusOK, body)
}

// Fail writes {"success":false,"message":msg}.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, M{"success": false, "message": msg})
}

// ServerError logs err and writes a 500 with msg. The error text is not
// returned to the caller.
func ServerError(w http.ResponseWriter, log *zap.Logger, msg string, err error, fields ...zap.Field) {
	if log != nil {
		log.Error(msg, append(fields, zap.Error(err))...)
	}
	Fail(w, http.StatusInternalServerError, msg)
}

// Decode reads a JSON body into dst. Unknown fields are ignored.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	return err
}

// ObjectIDParam parses the named chi URL parameter as an ObjectID.
func ObjectIDParam(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
