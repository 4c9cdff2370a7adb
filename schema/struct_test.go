package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/apispec/openapi"
)

type Pet struct {
	ID   int      `json:"id"`
	Name string   `json:"name" validate:"required"`
	Tags []string `json:"tags,omitempty"`
}

type Audit struct {
	Created time.Time `json:"created"`
}

type Record struct {
	Audit
	Title string `json:"title" validate:"max=5"`
}

func TestStructLoad(t *testing.T) {
	t.Run("weakly typed input", func(t *testing.T) {
		out, err := Of[Pet]().Load(map[string]any{"id": "3", "name": "rex"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": 3, "name": "rex"}, out)
	})

	t.Run("required tag", func(t *testing.T) {
		_, err := Of[Pet]().Load(map[string]any{"id": 1})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"missing data for required field"}, verr.Fields["name"])
	})

	t.Run("only validates selected fields", func(t *testing.T) {
		out, err := Of[Pet](Only("id")).Load(map[string]any{"id": 7, "name": "x"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": 7}, out)
	})

	t.Run("unknown keys are dropped", func(t *testing.T) {
		out, err := Of[Pet]().Load(map[string]any{"name": "rex", "color": "red"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex"}, out)
	})

	t.Run("decode error", func(t *testing.T) {
		_, err := Of[Pet]().Load(map[string]any{"id": "three", "name": "rex"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "_schema")
	})

	t.Run("embedded struct and time hook", func(t *testing.T) {
		out, err := Of[Record]().Load(map[string]any{
			"created": "2024-01-02T03:04:05Z",
			"title":   "memo",
		})
		require.NoError(t, err)

		m := out.(map[string]any)
		assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), m["created"])
		assert.Equal(t, "memo", m["title"])
	})

	t.Run("many", func(t *testing.T) {
		out, err := Of[Pet](Many()).Load([]any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
		})
		require.NoError(t, err)
		assert.Equal(t, []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
		}, out)
	})

	t.Run("many prefixes item errors", func(t *testing.T) {
		_, err := Of[Pet](Many()).Load([]any{
			map[string]any{"name": "a"},
			map[string]any{},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "1.name")
	})

	t.Run("many requires a list", func(t *testing.T) {
		_, err := Of[Pet](Many()).Load(map[string]any{})
		assert.Error(t, err)
	})
}

func TestStructDecode(t *testing.T) {
	pet, err := Of[Pet]().Decode(map[string]any{"id": 2, "name": "rex", "tags": []any{"a"}})
	require.NoError(t, err)
	assert.Equal(t, Pet{ID: 2, Name: "rex", Tags: []string{"a"}}, pet)

	_, err = Of[Record]().Decode(map[string]any{"title": "too long"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"must be at most 5"}, verr.Fields["title"])
}

func TestStructDump(t *testing.T) {
	t.Run("struct", func(t *testing.T) {
		out, err := Of[Pet](Only("id", "name")).Dump(Pet{ID: 1, Name: "rex", Tags: []string{"a"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": 1, "name": "rex"}, out)
	})

	t.Run("map is filtered", func(t *testing.T) {
		out, err := Of[Pet]().Dump(map[string]any{"name": "rex", "password": "x"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex"}, out)
	})

	t.Run("many", func(t *testing.T) {
		out, err := Of[Pet](Many(), Only("name")).Dump([]Pet{{Name: "a"}, {Name: "b"}})
		require.NoError(t, err)
		assert.Equal(t, []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
		}, out)
	})

	t.Run("many rejects a single value", func(t *testing.T) {
		_, err := Of[Pet](Many()).Dump(Pet{})
		assert.Error(t, err)
	})

	t.Run("nil", func(t *testing.T) {
		out, err := Of[Pet]().Dump(nil)
		require.NoError(t, err)
		assert.Nil(t, out)
	})
}

func TestStructKeyed(t *testing.T) {
	s := Of[Pet]()
	assert.Equal(t, []string{"id", "name", "tags"}, s.Names())
	assert.True(t, s.Multiple("tags"))
	assert.False(t, s.Multiple("name"))

	assert.Equal(t, []string{"created", "title"}, Of[Record]().Names())
}

func TestStructOpenAPISchema(t *testing.T) {
	t.Run("component reference", func(t *testing.T) {
		g := openapi.NewSchemaGenerator()
		s := Of[Pet]().OpenAPISchema(g)
		assert.Equal(t, "#/components/schemas/Pet", s.Ref)
		assert.Contains(t, g.Schemas(), "Pet")
	})

	t.Run("subset is inline", func(t *testing.T) {
		g := openapi.NewSchemaGenerator()
		s := Of[Pet](Only("name")).OpenAPISchema(g)
		assert.Empty(t, s.Ref)
		assert.Len(t, s.Properties, 1)
		assert.Contains(t, s.Properties, "name")
		assert.Equal(t, []string{"name"}, s.Required)
	})

	t.Run("many wraps in an array", func(t *testing.T) {
		g := openapi.NewSchemaGenerator()
		s := Of[Pet](Many()).OpenAPISchema(g)
		assert.Equal(t, []string{"array"}, s.Type.Values())
		assert.Equal(t, "#/components/schemas/Pet", s.Items.Ref)
	})
}

func TestBind(t *testing.T) {
	pet, err := Bind[Pet](map[string]any{"id": 4, "name": "rex"})
	require.NoError(t, err)
	assert.Equal(t, Pet{ID: 4, Name: "rex"}, pet)
}
