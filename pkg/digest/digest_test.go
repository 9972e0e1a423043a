package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"empty", []byte{}, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", []byte("abc"), "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Sum(tt.data)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, Sum(tt.data))
			assert.True(t, Valid(got))
		})
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.False(t, Valid(""))
	assert.False(t, Valid("../../etc/passwd"))
	assert.False(t, Valid("BA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD"))
	assert.True(t, Valid("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"))
}

func TestRecordID(t *testing.T) {
	t.Parallel()

	a := RecordID("ab", "c")
	b := RecordID("a", "bc")

	require.Len(t, a, Size)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, RecordID("ab", "c"))
	assert.NotEqual(t, RecordID("x", ""), RecordID("x"))
}
