package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergePair(t *testing.T) {
	t.Run("disjoint keys union", func(t *testing.T) {
		got := MergePair(map[string]any{"a": 1}, map[string]any{"b": 2})
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, got)
	})

	t.Run("child wins on overlapping scalars", func(t *testing.T) {
		got := MergePair(map[string]any{"a": 1, "b": false}, map[string]any{"a": 2, "b": true})
		assert.Equal(t, map[string]any{"a": 1, "b": false}, got)
	})

	t.Run("nil child falls back to parent", func(t *testing.T) {
		got := MergePair(map[string]any{"a": nil}, map[string]any{"a": 2})
		assert.Equal(t, map[string]any{"a": 2}, got)
		assert.Equal(t, 3, MergePair(nil, 3))
	})

	t.Run("nested maps merge recursively", func(t *testing.T) {
		child := map[string]any{"200": map[string]any{"description": "ok"}}
		parent := map[string]any{"200": map[string]any{"description": "parent", "schema": "Pet"}, "404": map[string]any{"description": "missing"}}

		got := MergePair(child, parent)
		assert.Equal(t, map[string]any{
			"200": map[string]any{"description": "ok", "schema": "Pet"},
			"404": map[string]any{"description": "missing"},
		}, got)
	})

	t.Run("scalar child replaces parent map", func(t *testing.T) {
		assert.Equal(t, "x", MergePair("x", map[string]any{"a": 1}))
	})

	t.Run("map child replaces parent scalar", func(t *testing.T) {
		assert.Equal(t, map[string]any{"a": 1}, MergePair(map[string]any{"a": 1}, "x"))
	})

	t.Run("missing keys are not materialized", func(t *testing.T) {
		got := MergePair(map[string]any{"a": map[string]any{"x": 1}}, nil)
		assert.Equal(t, map[string]any{"a": map[string]any{"x": 1}}, got)
	})

	t.Run("result does not alias inputs", func(t *testing.T) {
		child := map[string]any{"a": map[string]any{"x": 1}}
		got := MergePair(child, nil).(map[string]any)
		got["a"].(map[string]any)["x"] = 2
		assert.Equal(t, 1, child["a"].(map[string]any)["x"])
	})
}

func TestMergeRecursive(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, map[string]any{}, MergeRecursive())
	})

	t.Run("earlier values win", func(t *testing.T) {
		got := MergeRecursive(
			map[string]any{"tags": []any{"child"}},
			map[string]any{"tags": []any{"parent"}, "description": "base"},
		)
		assert.Equal(t, map[string]any{"tags": []any{"child"}, "description": "base"}, got)
	})

	t.Run("non-map values are ignored at top level", func(t *testing.T) {
		assert.Equal(t, map[string]any{"a": 1}, MergeRecursive(map[string]any{"a": 1}, nil))
	})

	t.Run("MergeOptions", func(t *testing.T) {
		got := MergeOptions([]Option{
			{"201": map[string]any{"schema": "Name"}},
			{"200": map[string]any{"schema": "Full"}, "201": map[string]any{"schema": "Other", "description": "created"}},
		})
		assert.Equal(t, map[string]any{
			"200": map[string]any{"schema": "Full"},
			"201": map[string]any{"schema": "Name", "description": "created"},
		}, got)
	})
}
