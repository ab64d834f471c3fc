package worldsync

import (
	"encoding/json"
	"fmt"

	"github.com/GreenHouse007/world-builder/internal/domain"
)

// DecodeChanges parses a wire batch of world changes, dropping entries whose
// type is not in the closed variant set. Defensive: a newer client (or a
// hostile one) must not be able to smuggle an unrecognized operation into the
// reducer.
func DecodeChanges(data []byte) ([]domain.WorldChange, error) {
	var raw []domain.WorldChange
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode changes: %w", err)
	}
	return FilterKnown(raw), nil
}

// FilterKnown keeps only changes with a recognized type, preserving order.
func FilterKnown(changes []domain.WorldChange) []domain.WorldChange {
	out := make([]domain.WorldChange, 0, len(changes))
	for _, c := range changes {
		if domain.KnownChangeType(c.Type) {
			out = append(out, c)
		}
	}
	return out
}

// EncodeChanges serializes a change batch for the wire.
func EncodeChanges(changes []domain.WorldChange) ([]byte, error) {
	data, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("encode changes: %w", err)
	}
	return data, nil
}
