package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"ms-records/internal/apperr"
	"ms-records/internal/logger"
)

// WriteJSON encodes data as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteOK sends an empty 200 response.
func WriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

// WriteError maps err onto its HTTP status and the public error body.
// Internal failures are logged with full detail; the client only sees a
// generic message.
func WriteError(w http.ResponseWriter, log *logger.Logger, err error) {
	classified := apperr.As(err)
	if classified.Kind.Internal() {
		log.Error("API", classified.Error())
	} else {
		log.Debug("API", classified.Error())
	}
	WriteJSON(w, classified.HTTPStatus(), classified.Public())
}

// DecodeJSON reads the request body into v. The body must hold exactly one
// JSON value; a missing, malformed or trailing body is a validation error.
func DecodeJSON(r *http.Request, op string, v interface{}) error {
	if r.Body == nil {
		return apperr.Validation(op, "request body is required")
	}
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(v)
	switch {
	case err == nil:
		if dec.Decode(&struct{}{}) != io.EOF {
			return apperr.Validation(op, "unexpected data after JSON body")
		}
		return nil
	case errors.Is(err, io.EOF):
		return apperr.Validation(op, "request body is required")
	default:
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Validation(op, fmt.Sprintf("%s must be %s", typeErr.Field, jsonKind(typeErr.Type)))
		}
		return apperr.Validation(op, "malformed JSON body: "+err.Error())
	}
}

// jsonKind names the JSON type a Go type decodes from.
func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Struct, reflect.Map:
		return "an object"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "a valid value"
	}
}
