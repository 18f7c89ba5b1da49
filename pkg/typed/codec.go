package typed

import (
	"encoding/json"
	"fmt"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// toDocument converts a typed item into the map form the store persists.
func toDocument[T core.Entity](item T) (core.Document, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	var metadata core.Metadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return core.Document{}, fmt.Errorf("failed to convert typed data to map: %w", err)
	}
	return core.Document{ID: item.Meta().ID, Metadata: metadata}, nil
}

// fromDocument decodes a stored document into T.
func fromDocument[T core.Entity](doc core.Document) (T, error) {
	var item T
	raw, err := json.Marshal(doc.Metadata)
	if err != nil {
		return item, fmt.Errorf("metadata marshal failed: %w", err)
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	return item, nil
}
