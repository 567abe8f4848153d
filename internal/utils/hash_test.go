package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHashFields_Deterministic(t *testing.T) {
	a := HashFields(map[string]any{
		"workType":    "full_time",
		"monthlyRate": decimal.RequireFromString("25000.00"),
		"locationIds": []uint{3, 1, 2},
	})
	b := HashFields(map[string]any{
		"locationIds": []uint{1, 2, 3},
		"monthlyRate": decimal.RequireFromString("25000"),
		"workType":    "full_time",
	})

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestHashFields_DifferentValues(t *testing.T) {
	base := map[string]any{"workType": "full_time", "description": "cooking"}
	other := map[string]any{"workType": "part_time", "description": "cooking"}

	assert.NotEqual(t, HashFields(base), HashFields(other))
}

func TestHashFields_NilPointers(t *testing.T) {
	var rate *decimal.Decimal
	desc := "  night shifts "

	withNil := HashFields(map[string]any{"rate": rate, "description": &desc})
	withTrimmed := HashFields(map[string]any{"rate": nil, "description": "night shifts"})

	assert.Equal(t, withNil, withTrimmed)
}

func TestHashString(t *testing.T) {
	assert.Equal(t, HashString("a", "b"), HashString("a", "b"))
	assert.NotEqual(t, HashString("a", "b"), HashString("b", "a"))
	assert.Len(t, HashString("x"), 64)
}
