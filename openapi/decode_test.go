package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("operation fields", func(t *testing.T) {
		op, err := Decode(map[string]any{
			"summary":     "Get a pet",
			"tags":        []any{"pets"},
			"operationId": "get_pet",
			"deprecated":  true,
			"parameters": []any{
				map[string]any{
					"name":     "limit",
					"in":       "query",
					"required": false,
					"schema":   map[string]any{"type": "integer", "minimum": 1},
				},
			},
			"responses": map[string]any{
				"200": map[string]any{
					"description": "OK",
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{"type": []any{"string", "null"}},
						},
					},
				},
			},
			"x-internal": true,
		})
		require.NoError(t, err)

		assert.Equal(t, "Get a pet", op.Summary)
		assert.Equal(t, []string{"pets"}, op.Tags)
		assert.Equal(t, "get_pet", op.OperationID)
		assert.True(t, op.Deprecated)

		require.Len(t, op.Parameters, 1)
		p := op.Parameters[0]
		assert.Equal(t, "limit", p.Name)
		assert.Equal(t, "query", p.In)
		assert.Equal(t, []string{"integer"}, p.Schema.Type.Values())
		require.NotNil(t, p.Schema.Minimum)
		assert.InDelta(t, 1, *p.Schema.Minimum, 0)

		schema := op.Responses["200"].Content["application/json"].Schema
		assert.Equal(t, []string{"string", "null"}, schema.Type.Values())
	})

	t.Run("typed values are kept", func(t *testing.T) {
		ref := &Schema{Ref: "#/components/schemas/Pet"}
		op, err := Decode(map[string]any{
			"responses": map[string]any{
				"201": map[string]any{
					"description": "",
					"content": map[string]any{
						"application/json": map[string]any{"schema": ref},
					},
				},
			},
			"externalDocs": &ExternalDocs{URL: "https://example.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, ref, op.Responses["201"].Content["application/json"].Schema)
		assert.Equal(t, "https://example.com", op.ExternalDocs.URL)
	})

	t.Run("invalid schema type", func(t *testing.T) {
		_, err := Decode(map[string]any{
			"parameters": []any{
				map[string]any{"name": "a", "in": "query", "schema": map[string]any{"type": []any{1}}},
			},
		})
		assert.Error(t, err)
	})

	t.Run("wrong value type", func(t *testing.T) {
		_, err := Decode(map[string]any{"summary": []any{"x"}})
		assert.Error(t, err)
	})
}

func TestDecodeInto(t *testing.T) {
	var p Parameter
	require.NoError(t, DecodeInto(map[string]any{"name": "X-Trace", "in": "header", "description": "trace id"}, &p))
	assert.Equal(t, Parameter{Name: "X-Trace", In: "header", Description: "trace id"}, p)
}
