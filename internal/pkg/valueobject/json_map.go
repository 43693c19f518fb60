// Package valueobject holds small value types shared by entities and storage.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"maps"
	"slices"
)

// ErrScanValueNotBytes indicates the database value is not a byte slice.
var ErrScanValueNotBytes = errors.New("valueobject: jsonmap scan value is not []byte")

// JSONMap stores arbitrary JSON object data, such as template variable values.
type JSONMap map[string]any

// Value implements driver.Valuer for JSONMap. A nil map is stored as {}.
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JSONMap.
func (j *JSONMap) Scan(value any) error {
	var raw []byte

	switch v := value.(type) {
	case nil:
		*j = JSONMap{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case map[string]any:
		*j = JSONMap(v)
		return nil
	default:
		return ErrScanValueNotBytes
	}

	var result JSONMap
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	if result == nil {
		result = JSONMap{}
	}

	*j = result
	return nil
}

// Clone returns a shallow copy; nil stays nil.
func (j JSONMap) Clone() JSONMap {
	return maps.Clone(j)
}

// Has checks if a key exists.
func (j JSONMap) Has(key string) bool {
	_, ok := j[key]
	return ok
}

// SetIfAbsent only sets the value if the key does not exist.
func (j JSONMap) SetIfAbsent(key string, value any) {
	if _, exists := j[key]; !exists {
		j[key] = value
	}
}

// GetString returns the value as a string, or "" when absent or not a string.
func (j JSONMap) GetString(key string) string {
	if v, ok := j[key].(string); ok {
		return v
	}
	return ""
}

// Keys returns the keys in sorted order.
func (j JSONMap) Keys() []string {
	return slices.Sorted(maps.Keys(j))
}
