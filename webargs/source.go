package webargs

import (
	"net/http"
	"net/textproto"
	"net/url"
	"sort"

	"github.com/vitalvas/apispec/mux"
)

// Location names the part of a request arguments are read from.
type Location string

const (
	Query   Location = "query"
	Path    Location = "path"
	Headers Location = "headers"
	Cookies Location = "cookies"
	Form    Location = "form"
	JSON    Location = "json"
)

// DefaultLocation is used when an annotation names no location.
const DefaultLocation = JSON

// OptionLocation returns the location stored under kwargs["location"] in
// a use-kwargs annotation option, or "" when none is set.
func OptionLocation(opt map[string]any) Location {
	kwargs, _ := opt["kwargs"].(map[string]any)
	switch loc := kwargs["location"].(type) {
	case Location:
		return loc
	case string:
		return Location(loc)
	}
	return ""
}

// Valid reports whether l is a known location.
func (l Location) Valid() bool {
	switch l {
	case Query, Path, Headers, Cookies, Form, JSON:
		return true
	}
	return false
}

// OpenAPI returns the parameter "in" value for the location. Body
// locations return an empty string.
func (l Location) OpenAPI() string {
	switch l {
	case Query:
		return "query"
	case Path:
		return "path"
	case Headers:
		return "header"
	case Cookies:
		return "cookie"
	}
	return ""
}

// IsBody reports whether the location is documented as a request body.
func (l Location) IsBody() bool {
	return l == JSON || l == Form
}

// ValueGetter reads string values from a multi-valued request source.
type ValueGetter interface {
	// Get returns the first value for the key.
	Get(key string) string
	// GetAll returns every value for the key.
	GetAll(key string) []string
	// Has reports whether the key is present, even with an empty value.
	Has(key string) bool
	// Keys returns the present keys in sorted order.
	Keys() []string
}

type valuesGetter url.Values

func (v valuesGetter) Get(key string) string { return url.Values(v).Get(key) }

func (v valuesGetter) GetAll(key string) []string {
	if vals := v[key]; len(vals) > 0 {
		return vals
	}
	return v[key+"[]"]
}

func (v valuesGetter) Has(key string) bool {
	return url.Values(v).Has(key) || url.Values(v).Has(key+"[]")
}

func (v valuesGetter) Keys() []string {
	return sortedKeys(v)
}

type headerGetter http.Header

func (h headerGetter) Get(key string) string { return http.Header(h).Get(key) }

func (h headerGetter) GetAll(key string) []string { return http.Header(h).Values(key) }

func (h headerGetter) Has(key string) bool {
	_, ok := h[textproto.CanonicalMIMEHeaderKey(key)]
	return ok
}

func (h headerGetter) Keys() []string {
	return sortedKeys(h)
}

type pathGetter map[string]string

func (p pathGetter) Get(key string) string { return p[key] }

func (p pathGetter) GetAll(key string) []string {
	if v, ok := p[key]; ok {
		return []string{v}
	}
	return nil
}

func (p pathGetter) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p pathGetter) Keys() []string {
	return sortedKeys(p)
}

// cookieGetter indexes request cookies by name. Repeated names keep every
// value in order.
type cookieGetter map[string][]string

func newCookieGetter(cookies []*http.Cookie) cookieGetter {
	out := make(cookieGetter, len(cookies))
	for _, c := range cookies {
		out[c.Name] = append(out[c.Name], c.Value)
	}
	return out
}

func (c cookieGetter) Get(key string) string {
	if vals := c[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func (c cookieGetter) GetAll(key string) []string { return c[key] }

func (c cookieGetter) Has(key string) bool {
	_, ok := c[key]
	return ok
}

func (c cookieGetter) Keys() []string {
	return sortedKeys(c)
}

// Getter returns the value getter for a non-body location or for form
// data. It returns nil for JSON and unknown locations.
func Getter(r *http.Request, loc Location, maxMemory int64) (ValueGetter, error) {
	switch loc {
	case Query:
		return valuesGetter(r.URL.Query()), nil
	case Path:
		return pathGetter(mux.Vars(r)), nil
	case Headers:
		return headerGetter(r.Header), nil
	case Cookies:
		return newCookieGetter(r.Cookies()), nil
	case Form:
		if err := parseForm(r, maxMemory); err != nil {
			return nil, err
		}
		return valuesGetter(r.PostForm), nil
	}
	return nil, nil
}

func parseForm(r *http.Request, maxMemory int64) error {
	if r.PostForm != nil {
		return nil
	}
	if isMultipart(r) {
		return r.ParseMultipartForm(maxMemory)
	}
	return r.ParseForm()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
