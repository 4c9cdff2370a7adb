package view

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpack(t *testing.T) {
	t.Run("bare value", func(t *testing.T) {
		body, status, header, err := Unpack("queen")
		require.NoError(t, err)
		assert.Equal(t, "queen", body)
		assert.Zero(t, status)
		assert.Nil(t, header)
	})

	t.Run("body and status", func(t *testing.T) {
		body, status, header, err := Unpack(Reply("queen", http.StatusCreated))
		require.NoError(t, err)
		assert.Equal(t, "queen", body)
		assert.Equal(t, http.StatusCreated, status)
		assert.Nil(t, header)
	})

	t.Run("body and headers", func(t *testing.T) {
		body, status, header, err := Unpack(Reply("queen", map[string]string{"X-Id": "1"}))
		require.NoError(t, err)
		assert.Equal(t, "queen", body)
		assert.Zero(t, status)
		assert.Equal(t, http.Header{"X-Id": {"1"}}, header)
	})

	t.Run("body status and headers", func(t *testing.T) {
		h := http.Header{"Location": {"/bands/1"}}
		body, status, header, err := Unpack(Reply(nil, http.StatusCreated, h))
		require.NoError(t, err)
		assert.Nil(t, body)
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, h, header)
	})

	t.Run("nil elements", func(t *testing.T) {
		body, status, header, err := Unpack(Reply("queen", nil, nil))
		require.NoError(t, err)
		assert.Equal(t, "queen", body)
		assert.Zero(t, status)
		assert.Nil(t, header)
	})

	t.Run("multi valued headers", func(t *testing.T) {
		_, _, header, err := Unpack(Reply("queen", map[string][]string{"Vary": {"a", "b"}}))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, header.Values("Vary"))
	})

	t.Run("invalid elements", func(t *testing.T) {
		for name, res := range map[string]Result{
			"second":   Reply("queen", 1.5),
			"status":   Reply("queen", "201", nil),
			"headers":  Reply("queen", 201, 7),
			"too long": Reply("queen", 201, nil, nil),
		} {
			_, _, _, err := Unpack(res)
			assert.ErrorIs(t, err, ErrUsage, name)
		}
	})

	t.Run("empty result", func(t *testing.T) {
		body, status, _, err := Unpack(Result{})
		require.NoError(t, err)
		assert.Nil(t, body)
		assert.Zero(t, status)
	})
}
