package helper

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecondsToMinutes(t *testing.T) {
	assert.Equal(t, "1:45.123", SecondsToMinutes(105.123))
	assert.Equal(t, "0:59.999", SecondsToMinutes(59.9994))
	assert.Equal(t, "1:00.000", SecondsToMinutes(59.9996))
	assert.Equal(t, "-", SecondsToMinutes(0))
	assert.Equal(t, "-", SecondsToMinutes(math.NaN()))
}

func TestSecondsToGap(t *testing.T) {
	assert.Equal(t, "  +0.512s", SecondsToGap(0.512))
	assert.Equal(t, "  -0.120s", SecondsToGap(-0.12))
	assert.Equal(t, "  +0.000s", SecondsToGap(-0.0001))
	assert.Equal(t, " +12.300s", SecondsToGap(12.3))
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, "105.000", Seconds(105))
	assert.Equal(t, "-", Seconds(math.Inf(1)))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "year", Plural(1, "year", "years"))
	assert.Equal(t, "years", Plural(8, "year", "years"))
}
