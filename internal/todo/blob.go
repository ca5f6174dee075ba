package todo

import (
	"encoding/json"
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
)

// EncodeItems serializes the whole collection as one indented JSON array.
// An empty collection encodes as [] rather than null.
func EncodeItems(items []model.Item) ([]byte, error) {
	if items == nil {
		items = []model.Item{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// DecodeItems parses a blob written by EncodeItems. null decodes to an empty collection.
func DecodeItems(blob []byte) ([]model.Item, error) {
	var items []model.Item
	if err := json.Unmarshal(blob, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}
