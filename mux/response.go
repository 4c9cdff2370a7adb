package mux

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// ResponseJSON encodes v as JSON and writes it to the response with the given
// status code. The Content-Type header is set to "application/json".
// If encoding fails, an HTTP 500 Internal Server Error is written instead.
func ResponseJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

// Response is a fully materialized HTTP response. It is returned by view
// wrappers after formatting and can be written to any ResponseWriter.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse creates a response with an empty header set. A zero status
// is replaced with 200 OK.
func NewResponse(status int, body []byte) *Response {
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{
		Status: status,
		Header: make(http.Header),
		Body:   body,
	}
}

// ServeHTTP writes the response headers, status and body.
func (resp *Response) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	dst := w.Header()
	for k, values := range resp.Header {
		dst[k] = append([]string(nil), values...)
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	// RFC 9110 Section 6.4.1: 1xx, 204 and 304 responses carry no content.
	if status == http.StatusNoContent || status == http.StatusNotModified || status < 200 {
		return
	}
	_, _ = w.Write(resp.Body)
}
