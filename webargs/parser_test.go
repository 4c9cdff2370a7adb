package webargs

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/apispec/mux"
	"github.com/vitalvas/apispec/schema"
)

type listArgs struct {
	Page int      `json:"page"`
	Tags []string `json:"tags"`
}

func TestParserQuery(t *testing.T) {
	p := NewParser()

	t.Run("field schema", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pets?name=rex&limit=5&tag=a&tag=b", nil)
		s := schema.Fields{"name": schema.Str(), "limit": schema.Int(), "tag": schema.List(schema.Str())}

		out, err := p.Parse(req, s, Query)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex", "limit": 5, "tag": []any{"a", "b"}}, out)
	})

	t.Run("struct schema", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pets?page=2&tags=x&tags=y", nil)

		out, err := p.Parse(req, schema.Of[listArgs](), Query)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"page": 2, "tags": []string{"x", "y"}}, out)
	})

	t.Run("bracket list notation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pets?tag[]=a&tag[]=b", nil)
		s := schema.Fields{"tag": schema.List(schema.Str())}

		out, err := p.Parse(req, s, Query)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"tag": []any{"a", "b"}}, out)
	})

	t.Run("validation failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pets?limit=abc", nil)

		_, err := p.Parse(req, schema.Fields{"limit": schema.Int()}, Query)
		var aerr *Error
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, http.StatusUnprocessableEntity, aerr.Status)
		assert.Equal(t, Query, aerr.Location)
		assert.Equal(t, map[string]any{
			"query": map[string][]string{"limit": {"not a valid integer"}},
		}, aerr.Messages())
	})

	t.Run("configured default location", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pets?page=2", nil)
		qp := &DefaultParser{DefaultLocation: Query}

		out, err := qp.Parse(req, schema.Fields{"page": schema.Int()}, "")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"page": 2}, out)
	})

	t.Run("custom error status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pets", nil)
		cp := &DefaultParser{ErrorStatus: http.StatusBadRequest}

		_, err := cp.Parse(req, schema.Fields{"q": schema.Str().Required()}, Query)
		var aerr *Error
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, http.StatusBadRequest, aerr.Status)
	})
}

func TestParserPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/pets/3", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "3"})

	out, err := NewParser().Parse(req, schema.Fields{"id": schema.Int()}, Path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 3}, out)
}

func TestParserHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Api-Key", "secret")

	out, err := NewParser().Parse(req, schema.Fields{"X-API-Key": schema.Str().Required()}, Headers)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"X-API-Key": "secret"}, out)
}

func TestParserCookies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "abc"})

	out, err := NewParser().Parse(req, schema.Fields{"session": schema.Str()}, Cookies)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"session": "abc"}, out)
}

func TestParserForm(t *testing.T) {
	t.Run("urlencoded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=rex&age=3"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		out, err := NewParser().Parse(req, schema.Fields{"name": schema.Str(), "age": schema.Int()}, Form)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex", "age": 3}, out)
	})

	t.Run("multipart", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("name", "rex"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		out, err := NewParser().Parse(req, schema.Fields{"name": schema.Str()}, Form)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex"}, out)
	})
}

func TestParserJSON(t *testing.T) {
	s := schema.Fields{"name": schema.Str().Required(), "age": schema.Int()}

	t.Run("default location", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"rex","age":3,"x":1}`))
		req.Header.Set("Content-Type", "application/json")

		out, err := NewParser().Parse(req, s, "")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex", "age": 3}, out)
	})

	t.Run("body can be parsed twice", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"rex"}`))
		p := NewParser()

		_, err := p.Parse(req, s, JSON)
		require.NoError(t, err)
		out, err := p.Parse(req, schema.Fields{"name": schema.Str()}, JSON)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex"}, out)

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"rex"}`, string(body))
	})

	t.Run("empty body reports missing fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)

		_, err := NewParser().Parse(req, s, JSON)
		var aerr *Error
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, http.StatusUnprocessableEntity, aerr.Status)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))

		_, err := NewParser().Parse(req, s, JSON)
		var aerr *Error
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, http.StatusBadRequest, aerr.Status)
		assert.ErrorIs(t, err, ErrMalformedBody)
	})

	t.Run("non json content type is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`name=rex`))
		req.Header.Set("Content-Type", "text/plain")

		out, err := NewParser().Parse(req, schema.Fields{"name": schema.Str()}, JSON)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, out)
	})

	t.Run("vendor json type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"rex"}`))
		req.Header.Set("Content-Type", "application/vnd.api+json")

		out, err := NewParser().Parse(req, s, JSON)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex"}, out)
	})
}

func TestParserUnknownLocation(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := NewParser().Parse(req, schema.Fields{}, Location("body"))
	assert.ErrorIs(t, err, ErrUnknownLocation)
}

func TestParserFunc(t *testing.T) {
	var p Parser = ParserFunc(func(_ *http.Request, _ schema.Schema, loc Location) (any, error) {
		return map[string]any{"loc": string(loc)}, nil
	})

	out, err := p.Parse(nil, nil, Query)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"loc": "query"}, out)
}

func TestError(t *testing.T) {
	e := &Error{Status: http.StatusBadRequest, Location: JSON, Err: errors.New("boom")}
	assert.Equal(t, "webargs: invalid json arguments: boom", e.Error())
	assert.Equal(t, map[string]any{"json": map[string][]string{"_schema": {"boom"}}}, e.Messages())
}
