package openapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Owner struct {
	Name  string `json:"name" openapi:"description=Owner name,example=Ann"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type Pet struct {
	ID        int               `json:"id" openapi:"readOnly"`
	Name      string            `json:"name" validate:"required,min=1,max=64"`
	Status    string            `json:"status,omitempty" validate:"required,oneof=available pending sold"`
	Age       *int              `json:"age,omitempty" validate:"omitempty,min=0,max=40"`
	Tags      []string          `json:"tags,omitempty" validate:"max=5,dive,min=1"`
	Owner     *Owner            `json:"owner,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	Born      time.Time         `json:"born"`
	Weight    float64           `json:"weight,string"`
	Ignored   string            `json:"-"`
	unexposed string
}

type Timestamps struct {
	Created time.Time `json:"created"`
}

type Record struct {
	Timestamps
	*Meta
	Title string `json:"title"`
}

type Meta struct {
	Author string `json:"author"`
}

type labeled struct {
	Value string `json:"value"`
}

func (labeled) OpenAPIExample() any {
	return labeled{Value: "x"}
}

type provided struct{}

func (provided) OpenAPISchema(g *SchemaGenerator) *Schema {
	return g.Register("Provided", &Schema{Type: TypeString("object")})
}

func TestGeneratePrimitives(t *testing.T) {
	g := NewSchemaGenerator()

	tests := []struct {
		name   string
		value  any
		typ    string
		format string
	}{
		{"bool", true, "boolean", ""},
		{"int", 1, "integer", ""},
		{"uint8", uint8(1), "integer", ""},
		{"float", 1.5, "number", ""},
		{"string", "s", "string", ""},
		{"time", time.Time{}, "string", "date-time"},
		{"bytes", []byte("x"), "string", "byte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := g.Generate(tt.value)
			require.NotNil(t, s)
			assert.Equal(t, []string{tt.typ}, s.Type.Values())
			assert.Equal(t, tt.format, s.Format)
		})
	}

	assert.Nil(t, g.Generate(nil))
	assert.Empty(t, g.Schemas())
}

func TestGenerateStruct(t *testing.T) {
	g := NewSchemaGenerator()

	ref := g.Generate(Pet{})
	assert.Equal(t, "#/components/schemas/Pet", ref.Ref)

	s := g.Schemas()["Pet"]
	require.NotNil(t, s)
	assert.Equal(t, []string{"object"}, s.Type.Values())
	assert.ElementsMatch(t, []string{"id", "name", "status", "born", "weight"}, s.Required)
	assert.NotContains(t, s.Properties, "Ignored")
	assert.NotContains(t, s.Properties, "unexposed")

	t.Run("openapi tags", func(t *testing.T) {
		assert.True(t, s.Properties["id"].ReadOnly)
	})

	t.Run("validate tags", func(t *testing.T) {
		name := s.Properties["name"]
		require.NotNil(t, name.MinLength)
		require.NotNil(t, name.MaxLength)
		assert.Equal(t, 1, *name.MinLength)
		assert.Equal(t, 64, *name.MaxLength)

		assert.Equal(t, []any{"available", "pending", "sold"}, s.Properties["status"].Enum)

		tags := s.Properties["tags"]
		require.NotNil(t, tags.MaxItems)
		assert.Equal(t, 5, *tags.MaxItems)
		assert.Nil(t, tags.Items.MinLength)
	})

	t.Run("pointer fields are nullable", func(t *testing.T) {
		age := s.Properties["age"]
		assert.Equal(t, []string{"integer", "null"}, age.Type.Values())
		require.NotNil(t, age.Maximum)
		assert.InDelta(t, 40, *age.Maximum, 0)

		owner := s.Properties["owner"]
		require.Len(t, owner.AnyOf, 2)
		assert.Equal(t, "#/components/schemas/Owner", owner.AnyOf[0].Ref)
	})

	t.Run("nested types become components", func(t *testing.T) {
		owner := g.Schemas()["Owner"]
		require.NotNil(t, owner)
		assert.Equal(t, "Owner name", owner.Properties["name"].Description)
		assert.Equal(t, "Ann", owner.Properties["name"].Example)
		assert.Equal(t, "email", owner.Properties["email"].Format)
	})

	t.Run("maps and string encoding", func(t *testing.T) {
		assert.Equal(t, []string{"object"}, s.Properties["labels"].Type.Values())
		assert.Equal(t, []string{"string"}, s.Properties["labels"].AdditionalProperties.Type.Values())
		assert.Equal(t, []string{"string"}, s.Properties["weight"].Type.Values())
	})
}

func TestGenerateEmbedded(t *testing.T) {
	g := NewSchemaGenerator()
	g.Generate(Record{})

	s := g.Schemas()["Record"]
	require.NotNil(t, s)
	assert.Contains(t, s.Properties, "created")
	assert.Contains(t, s.Properties, "author")
	assert.Contains(t, s.Properties, "title")
	assert.ElementsMatch(t, []string{"created", "title"}, s.Required)
}

func TestGenerateExampler(t *testing.T) {
	g := NewSchemaGenerator()
	g.Generate(labeled{})

	s := g.Schemas()["labeled"]
	require.NotNil(t, s)
	assert.Equal(t, labeled{Value: "x"}, s.Example)
}

func TestSchemaNameCollision(t *testing.T) {
	type Client struct {
		ID string `json:"id"`
	}

	g := NewSchemaGenerator()
	assert.Equal(t, "#/components/schemas/Client", g.Generate(Client{}).Ref)
	assert.Equal(t, "#/components/schemas/HttpClient", g.Generate(http.Client{}).Ref)
	assert.Equal(t, "#/components/schemas/Client", g.Generate(Client{}).Ref)
}

func TestSchemaProvider(t *testing.T) {
	g := NewSchemaGenerator()

	s := g.Generate(provided{})
	assert.Equal(t, "#/components/schemas/Provided", s.Ref)
	assert.Equal(t, []string{"object"}, g.Deref(s).Type.Values())
}

func TestGenerateNullableKeyword(t *testing.T) {
	s := NewSpec(Info{Title: "Pets", Version: "1.0.0"})
	require.NoError(t, s.SetVersion(Version30))

	s.WithGenerator(func(g *SchemaGenerator) { g.Generate(Pet{}) })
	pet := s.Build().Components.Schemas["Pet"]
	require.NotNil(t, pet)

	age := pet.Properties["age"]
	assert.Equal(t, []string{"integer"}, age.Type.Values())
	assert.True(t, age.Nullable)

	owner := pet.Properties["owner"]
	assert.True(t, owner.Nullable)
	require.Len(t, owner.AllOf, 1)
	assert.Equal(t, "#/components/schemas/Owner", owner.AllOf[0].Ref)
	assert.Empty(t, owner.AnyOf)
}

func TestOpenAPITag(t *testing.T) {
	type Tagged struct {
		Count int      `json:"count" openapi:"minimum=1,maximum=9,default=3,example=4,multipleOf=x"`
		Kind  string   `json:"kind" openapi:"enum=a|b,title=Kind,pattern=^[ab]$"`
		Tags  []string `json:"tags" openapi:"minItems=1,uniqueItems,deprecated"`
	}

	g := NewSchemaGenerator()
	g.Generate(Tagged{})
	s := g.Schemas()["Tagged"]
	require.NotNil(t, s)

	count := s.Properties["count"]
	assert.InDelta(t, 1, *count.Minimum, 0)
	assert.InDelta(t, 9, *count.Maximum, 0)
	assert.Equal(t, int64(3), count.Default)
	assert.Equal(t, int64(4), count.Example)
	assert.Nil(t, count.MultipleOf)

	kind := s.Properties["kind"]
	assert.Equal(t, []any{"a", "b"}, kind.Enum)
	assert.Equal(t, "Kind", kind.Title)
	assert.Equal(t, "^[ab]$", kind.Pattern)

	tags := s.Properties["tags"]
	assert.Equal(t, 1, *tags.MinItems)
	assert.True(t, tags.UniqueItems)
	assert.True(t, tags.Deprecated)
}

func TestDeref(t *testing.T) {
	g := NewSchemaGenerator()
	ref := g.Generate(Owner{})

	assert.Same(t, g.Schemas()["Owner"], g.Deref(ref))

	external := &Schema{Ref: "https://example.com/schema.json"}
	assert.Same(t, external, g.Deref(external))

	missing := &Schema{Ref: "#/components/schemas/Missing"}
	assert.Same(t, missing, g.Deref(missing))

	assert.Nil(t, g.Deref(nil))
}

func TestApplyValidateTag(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		assert.True(t, ApplyValidateTag(&Schema{}, "required"))
		assert.False(t, ApplyValidateTag(&Schema{}, "omitempty,min=1"))
		assert.False(t, ApplyValidateTag(&Schema{}, ""))
		assert.False(t, ApplyValidateTag(nil, "required"))
	})

	t.Run("numeric bounds", func(t *testing.T) {
		s := &Schema{Type: TypeString("integer")}
		ApplyValidateTag(s, "gte=1,lte=10,oneof=1 2 3")
		require.NotNil(t, s.Minimum)
		require.NotNil(t, s.Maximum)
		assert.InDelta(t, 1, *s.Minimum, 0)
		assert.InDelta(t, 10, *s.Maximum, 0)
		assert.Equal(t, []any{int64(1), int64(2), int64(3)}, s.Enum)
	})

	t.Run("exact length", func(t *testing.T) {
		s := &Schema{Type: TypeString("string")}
		ApplyValidateTag(s, "len=2")
		assert.Equal(t, 2, *s.MinLength)
		assert.Equal(t, 2, *s.MaxLength)
	})

	t.Run("formats", func(t *testing.T) {
		for tag, format := range map[string]string{
			"uuid":     "uuid",
			"url":      "uri",
			"datetime": "date-time",
			"ipv4":     "ipv4",
		} {
			s := &Schema{Type: TypeString("string")}
			ApplyValidateTag(s, tag)
			assert.Equal(t, format, s.Format, tag)
		}
	})
}
