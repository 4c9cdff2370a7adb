package openapi

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpec(t *testing.T) {
	s := NewSpec(Info{Title: "Pets", Version: "1.0.0"})

	doc := s.Build()
	assert.Equal(t, Version31, doc.OpenAPI)
	assert.Equal(t, "Pets", doc.Info.Title)
	assert.Empty(t, doc.Paths)
	assert.Nil(t, doc.Components)
	assert.Empty(t, doc.Tags)
}

func TestSpecSetVersion(t *testing.T) {
	s := NewSpec(Info{Title: "Pets", Version: "1.0.0"})

	require.NoError(t, s.SetVersion(Version30))
	assert.Equal(t, Version30, s.Version())
	assert.Equal(t, "3.0.3", s.Build().OpenAPI)

	err := s.SetVersion("2.0")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Equal(t, Version30, s.Version())
}

func TestSpecAddPath(t *testing.T) {
	s := NewSpec(Info{Title: "Pets", Version: "1.0.0"})

	get := &Operation{OperationID: "get_pet", Tags: []string{"pets"}}
	put := &Operation{OperationID: "put_pet"}

	s.AddPath("/pets/{id}", map[string]*Operation{"get": get})
	s.AddPath("/pets/{id}", map[string]*Operation{http.MethodPut: put})

	doc := s.Build()
	require.Contains(t, doc.Paths, "/pets/{id}")
	item := doc.Paths["/pets/{id}"]
	assert.Same(t, get, item.Get)
	assert.Same(t, put, item.Put)
	assert.Equal(t, []Tag{{Name: "pets"}}, doc.Tags)

	t.Run("same method is replaced", func(t *testing.T) {
		other := &Operation{OperationID: "get_pet_v2"}
		s.AddPath("/pets/{id}", map[string]*Operation{http.MethodGet: other})
		assert.Same(t, other, s.Build().Paths["/pets/{id}"].Get)
	})

	t.Run("built document is detached from later additions", func(t *testing.T) {
		before := s.Build()
		s.AddPath("/pets/{id}", map[string]*Operation{http.MethodDelete: {}})
		assert.Nil(t, before.Paths["/pets/{id}"].Delete)
	})
}

func TestSpecRevision(t *testing.T) {
	s := NewSpec(Info{Title: "Pets", Version: "1.0.0"})
	r0 := s.Revision()

	s.AddPath("/pets", map[string]*Operation{http.MethodGet: {}})
	r1 := s.Revision()
	assert.Greater(t, r1, r0)

	s.AddTag(Tag{Name: "pets"})
	assert.Greater(t, s.Revision(), r1)
}

func TestSpecMetadata(t *testing.T) {
	s := NewSpec(Info{Title: "Pets", Version: "1.0.0"}).
		AddServer(Server{URL: "https://api.example.com"}).
		SetExternalDocs("https://docs.example.com", "Docs").
		AddTag(Tag{Name: "zoo", Description: "Zoo"}).
		AddTag(Tag{Name: "pets", Description: "Pets"})

	s.AddPath("/pets", map[string]*Operation{http.MethodGet: {Tags: []string{"pets", "animals"}}})

	doc := s.Build()
	assert.Equal(t, []Server{{URL: "https://api.example.com"}}, doc.Servers)
	assert.Equal(t, "https://docs.example.com", doc.ExternalDocs.URL)
	assert.Equal(t, []Tag{
		{Name: "animals"},
		{Name: "pets", Description: "Pets"},
		{Name: "zoo", Description: "Zoo"},
	}, doc.Tags)
	assert.Nil(t, doc.Components)
}

func TestSpecWithGenerator(t *testing.T) {
	s := NewSpec(Info{Title: "Pets", Version: "1.0.0"})

	var ref *Schema
	s.WithGenerator(func(g *SchemaGenerator) {
		ref = g.Generate(Owner{})
	})

	assert.Equal(t, "#/components/schemas/Owner", ref.Ref)
	doc := s.Build()
	require.NotNil(t, doc.Components)
	assert.Contains(t, doc.Components.Schemas, "Owner")
}

func TestSpecConcurrentAddPath(t *testing.T) {
	s := NewSpec(Info{Title: "Pets", Version: "1.0.0"})

	var wg sync.WaitGroup
	for _, path := range []string{"/a", "/b", "/c", "/d"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddPath(path, map[string]*Operation{http.MethodGet: {}})
			_ = s.Build()
		}()
	}
	wg.Wait()

	assert.Len(t, s.Build().Paths, 4)
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name   string
		tpl    string
		path   string
		typ    string
		format string
	}{
		{"int macro", "/bands/{band_id:int}/", "/bands/{band_id}/", "integer", "int32"},
		{"float macro", "/prices/{value:float}", "/prices/{value}", "number", "float"},
		{"uuid macro", "/users/{id:uuid}", "/users/{id}", "string", "uuid"},
		{"date macro", "/days/{day:date}", "/days/{day}", "string", "date"},
		{"domain macro", "/hosts/{host:domain}", "/hosts/{host}", "string", "hostname"},
		{"plain", "/pets/{name}", "/pets/{name}", "string", ""},
		{"raw pattern", "/codes/{code:[0-9]{3}}", "/codes/{code}", "string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, params := ParsePath(tt.tpl)
			assert.Equal(t, tt.path, path)
			require.Len(t, params, 1)
			assert.Equal(t, "path", params[0].In)
			assert.True(t, params[0].Required)
			assert.Equal(t, []string{tt.typ}, params[0].Schema.Type.Values())
			assert.Equal(t, tt.format, params[0].Schema.Format)
		})
	}

	t.Run("multiple variables keep order", func(t *testing.T) {
		path, params := ParsePath("/owners/{owner:int}/pets/{pet}")
		assert.Equal(t, "/owners/{owner}/pets/{pet}", path)
		require.Len(t, params, 2)
		assert.Equal(t, "owner", params[0].Name)
		assert.Equal(t, "pet", params[1].Name)
	})

	t.Run("static path", func(t *testing.T) {
		path, params := ParsePath("/pets")
		assert.Equal(t, "/pets", path)
		assert.Empty(t, params)
	})
}
