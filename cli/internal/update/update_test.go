package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigVersion(t *testing.T) {
	tests := []struct {
		version string
		ok      bool
	}{
		{"1.0.0", true},
		{"1.4", true},
		{"0.9.0", false},
		{"2.0.0", false},
		{"not-a-version", false},
	}
	for _, tc := range tests {
		t.Run(tc.version, func(t *testing.T) {
			err := CheckConfigVersion(tc.version)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNeedsUpgrade(t *testing.T) {
	old, err := NeedsUpgrade("0.9.0")
	require.NoError(t, err)
	assert.True(t, old)

	current, err := NeedsUpgrade(CurrentConfig)
	require.NoError(t, err)
	assert.False(t, current)

	_, err = NeedsUpgrade("x.y")
	assert.Error(t, err)
}
