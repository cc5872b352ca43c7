package weatherhistory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString2Pinyin(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"city with suffix", "深圳市", "shenzhen"},
		{"suffix only", "市", ""},
		{"no suffix", "北京", "beijing"},
		{"already romanized", "shanghai", "shanghai"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, String2Pinyin(tt.in))
		})
	}
}
