// Package http provides HTTP server and handler implementations.
//
// This file implements request body decoding shared by all create handlers.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes int64 = 1 << 20

var (
	errNotObject    = errors.New("request body must be a JSON object")
	errTrailingData = errors.New("request body must contain a single JSON object")
	errBodyTooLarge = fmt.Errorf("request body exceeds %d bytes", MaxBodyBytes)
)

// RequestError is a body decoding failure with the status it maps to.
type RequestError struct {
	Status int
	Err    error
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

// DecodeJSONObject reads the request body as one JSON object. Numbers are
// kept as json.Number so validation sees them exactly as sent.
func DecodeJSONObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, classifyDecodeError(err)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &RequestError{Status: http.StatusBadRequest, Err: errNotObject}
	}

	if _, err := dec.Token(); err != io.EOF {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &RequestError{Status: http.StatusRequestEntityTooLarge, Err: errBodyTooLarge}
		}
		return nil, &RequestError{Status: http.StatusBadRequest, Err: errTrailingData}
	}
	return obj, nil
}

func classifyDecodeError(err error) error {
	var (
		maxErr    *http.MaxBytesError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.Is(err, io.EOF):
		return &RequestError{Status: http.StatusBadRequest, Err: errNotObject}
	case errors.As(err, &maxErr):
		return &RequestError{Status: http.StatusRequestEntityTooLarge, Err: errBodyTooLarge}
	case errors.As(err, &syntaxErr):
		return &RequestError{Status: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON at offset %d", syntaxErr.Offset)}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &RequestError{Status: http.StatusBadRequest, Err: errors.New("malformed JSON: unexpected end of body")}
	default:
		return &RequestError{Status: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON: %v", err)}
	}
}
