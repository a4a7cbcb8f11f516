package cart

import (
	"encoding/json"
	"fmt"

	"github.com/tgiffonirs/gomarketplace/internal/domain"
)

// encodeItems serializes the collection into the persisted layout, a JSON
// array of line items. An empty collection encodes as "[]", never "null".
func encodeItems(items domain.Items) (string, error) {
	if items == nil {
		items = domain.Items{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cart items: %w", err)
	}
	return string(b), nil
}

// decodeItems parses a persisted value. Unknown fields are ignored; a JSON
// null decodes to an empty collection.
func decodeItems(raw string) (domain.Items, error) {
	var items domain.Items
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	if items == nil {
		items = domain.Items{}
	}
	return items, nil
}
