package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"03001234567", "+923001234567", true},
		{"+923001234567", "+923001234567", true},
		{"923001234567", "+923001234567", true},
		{"0300-1234567", "+923001234567", true},
		{" 0321 765 4321 ", "+923217654321", true},
		{"3001234567", "+923001234567", true},
		{"04235761234", "", false},
		{"0300123456", "", false},
		{"+14155550100", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizePhone(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "*********4567", MaskPhone("+923001234567"))
	assert.Equal(t, "123", MaskPhone("123"))
}
