package sysmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"512", 512},
		{"1K", 1024},
		{"4M", 4 * 1024 * 1024},
		{"2G", 2 * 1024 * 1024 * 1024},
		{"1k", 1024},
	}
	for _, tt := range tests {
		got, err := ParseBytes(tt.in)
		require.NoError(t, err, "ParseBytes(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseBytes(%q)", tt.in)
	}
}

func TestParseBytesInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1T2"} {
		_, err := ParseBytes(in)
		assert.Error(t, err, "ParseBytes(%q): expected error", in)
	}
}
