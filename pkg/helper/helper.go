package helper

import (
	"fmt"
	"math"
	"strings"
)

// method to convert from seconds to minutes:seconds.milliseconds
func SecondsToMinutes(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "-"
	}
	ms := int64(math.Round(seconds * 1000))
	minutes := ms / 60000
	ms -= minutes * 60000
	return fmt.Sprintf("%d:%02d.%03d", minutes, ms/1000, ms%1000)
}

// SecondsToGap renders a signed gap, "+0.512s" slower or "-0.120s" faster,
// padded to a fixed width so table columns line up.
func SecondsToGap(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "-"
	}
	gap := fmt.Sprintf("%+.3fs", seconds)
	if gap == "-0.000s" {
		gap = "+0.000s"
	}
	if chars := len(gap); chars < 9 {
		// add spaces to the left
		gap = strings.Repeat(" ", 9-chars) + gap
	}
	return gap
}

// Seconds renders a plain value with three decimals, as used on chart axes.
func Seconds(t float64) string {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return "-"
	}
	return fmt.Sprintf("%.3f", t)
}

// Plural picks the word form for n.
func Plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
