package compose

import "unicode/utf8"

var fontSteps = []struct {
	maxLen int
	size   float64
}{
	{50, 72},
	{80, 62},
	{120, 54},
	{160, 46},
}

const minFontSize = 40

// FontSize picks the headline size from its length in characters. Longer
// headlines get smaller text so they stay inside the fixed-height band.
func FontSize(headline string) float64 {
	n := utf8.RuneCountInString(headline)
	for _, step := range fontSteps {
		if n <= step.maxLen {
			return step.size
		}
	}
	return minFontSize
}
