package drivers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	ver := Lookup("VER")
	assert.Equal(t, "Max Verstappen", ver.Name)
	assert.Equal(t, "#1f77b4", ver.Color)

	unknown := Lookup("ALO")
	assert.Equal(t, "ALO", unknown.ShortName)
	assert.Equal(t, FallbackColor, unknown.Color)
}

func TestDefaultSelection(t *testing.T) {
	assert.Equal(t, []string{"VER", "HAM"}, DefaultSelection)
}
