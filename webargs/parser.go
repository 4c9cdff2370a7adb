// Package webargs reads request arguments from a location and loads them
// through a schema.
package webargs

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/vitalvas/apispec/mux"
	"github.com/vitalvas/apispec/schema"
)

const defaultMaxMemory = 32 << 20

// Parser loads the arguments of one location through a schema.
type Parser interface {
	Parse(r *http.Request, s schema.Schema, loc Location) (any, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(r *http.Request, s schema.Schema, loc Location) (any, error)

func (f ParserFunc) Parse(r *http.Request, s schema.Schema, loc Location) (any, error) {
	return f(r, s, loc)
}

// DefaultParser reads query, path, header, cookie, form and JSON
// arguments.
type DefaultParser struct {
	// ErrorStatus is the status of returned errors. Zero means 422.
	ErrorStatus int
	// MaxMemory bounds multipart form parsing. Zero means 32 MiB.
	MaxMemory int64
	// DefaultLocation replaces an empty location. Empty means
	// the package DefaultLocation.
	DefaultLocation Location
}

// NewParser returns a parser with default settings.
func NewParser() *DefaultParser {
	return &DefaultParser{}
}

// Parse implements Parser. An empty location means the parser's
// DefaultLocation. Failures are returned as *Error.
func (p *DefaultParser) Parse(r *http.Request, s schema.Schema, loc Location) (any, error) {
	if loc == "" {
		loc = p.DefaultLocation
	}
	if loc == "" {
		loc = DefaultLocation
	}

	data, err := p.read(r, s, loc)
	if err != nil {
		if errors.Is(err, ErrUnknownLocation) {
			return nil, err
		}
		return nil, p.wrap(loc, http.StatusBadRequest, err)
	}

	out, err := s.Load(data)
	if err != nil {
		return nil, p.wrap(loc, p.status(), err)
	}
	return out, nil
}

func (p *DefaultParser) read(r *http.Request, s schema.Schema, loc Location) (any, error) {
	if loc == JSON {
		return readJSON(r)
	}

	maxMemory := p.MaxMemory
	if maxMemory == 0 {
		maxMemory = defaultMaxMemory
	}

	getter, err := Getter(r, loc, maxMemory)
	if err != nil {
		return nil, err
	}
	if getter == nil {
		return nil, ErrUnknownLocation
	}
	return Collect(getter, s), nil
}

func (p *DefaultParser) status() int {
	if p.ErrorStatus != 0 {
		return p.ErrorStatus
	}
	return DefaultErrorStatus
}

func (p *DefaultParser) wrap(loc Location, status int, err error) error {
	return &Error{Status: status, Location: loc, Err: err}
}

// Collect reads the values a schema asks for from a getter. Schemas that
// know their fields get a list for multi-valued fields and the first value
// otherwise; other schemas get the first value of every key.
func Collect(g ValueGetter, s schema.Schema) map[string]any {
	keyed, ok := s.(schema.Keyed)
	if !ok {
		out := make(map[string]any)
		for _, k := range g.Keys() {
			out[k] = g.Get(k)
		}
		return out
	}

	names := keyed.Names()
	out := make(map[string]any, len(names))
	for _, name := range names {
		if !g.Has(name) {
			continue
		}
		if keyed.Multiple(name) {
			out[name] = g.GetAll(name)
		} else {
			out[name] = g.Get(name)
		}
	}
	return out
}

// readJSON decodes the request body and restores it so later parses of
// the same request see the same data. An empty body or a non-JSON content
// type yields no arguments.
func readJSON(r *http.Request) (any, error) {
	if !isJSON(r) {
		return nil, nil
	}
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	var data any
	err = mux.BindJSON(&http.Request{Body: io.NopCloser(bytes.NewReader(body))}, &data, true)
	switch {
	case errors.Is(err, mux.ErrEmptyBody):
		return nil, nil
	case err != nil:
		return nil, errors.Join(ErrMalformedBody, err)
	}
	return data, nil
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}
