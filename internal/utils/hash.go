package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// HashFields creates a deterministic hash from a map of fields. Key order and
// the order of elements inside string/int slices do not affect the result.
func HashFields(fields map[string]any) string {
	normalized := make(map[string]any, len(fields))
	for key, value := range fields {
		normalized[key] = normalizeValue(value)
	}

	// encoding/json sorts map keys, so the serialization is stable
	jsonBytes, err := json.Marshal(normalized)
	if err != nil {
		jsonBytes = []byte("{}")
	}

	hash := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(hash[:])
}

// HashString returns the hex SHA-256 of the given parts joined with ":".
func HashString(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(hash[:])
}

func normalizeValue(value any) any {
	if value == nil {
		return nil
	}

	v := reflect.ValueOf(value)

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		return normalizeValue(v.Elem().Interface())
	}

	if stringer, ok := value.(fmt.Stringer); ok {
		return stringer.String()
	}

	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Bool:
		return v.Bool()
	case reflect.Slice, reflect.Array:
		items := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			items = append(items, fmt.Sprint(normalizeValue(v.Index(i).Interface())))
		}
		sort.Strings(items)
		return items
	default:
		return value
	}
}
