package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgiffonirs/gomarketplace/internal/domain"
)

func TestEncodeItems_PersistedLayout(t *testing.T) {
	raw, err := encodeItems(domain.Items{
		{ID: "1", Title: "Shoe", ImageURL: "u", Price: 10, Quantity: 1},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","title":"Shoe","image_url":"u","price":10,"quantity":1}]`, raw)
}

func TestEncodeItems_EmptyIsArray(t *testing.T) {
	raw, err := encodeItems(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestDecodeItems_IgnoresUnknownFields(t *testing.T) {
	items, err := decodeItems(`[{"id":"1","title":"Shoe","extra":true,"quantity":3}]`)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestDecodeItems_RejectsWrongShape(t *testing.T) {
	for _, raw := range []string{``, `{}`, `"x"`, `[{"quantity":"two"}]`} {
		_, err := decodeItems(raw)
		assert.Error(t, err, "input %q", raw)
	}
}
