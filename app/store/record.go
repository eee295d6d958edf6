package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// GetRecord reads and decodes a named JSON record. A decode failure falls
// back to parsing the stored value as plain JSON (legacy records written
// before the codec). If both attempts fail the record is treated as absent:
// callers revert to defaults, which is accepted policy for corrupted
// storage, not an error.
func GetRecord[T any](s Store, c Codec, key string) (*T, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %q: %w", key, err)
	}
	if !ok {
		return nil, nil
	}

	data, err := c.Decode(raw)
	if err != nil {
		data = []byte(raw)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		slog.Warn("Discarding unreadable record", "key", key, "error", err)
		return nil, nil
	}

	return &value, nil
}

// SetRecord serializes the value to JSON, encodes it, and overwrites the
// named record.
func SetRecord[T any](s Store, c Codec, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record %q: %w", key, err)
	}

	if err := s.Set(key, c.Encode(data)); err != nil {
		return fmt.Errorf("failed to write record %q: %w", key, err)
	}

	return nil
}
