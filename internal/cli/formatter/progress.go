package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderShare renders part/total as a bar like "████░░░░  45%". A zero
// total renders an empty bar.
func RenderShare(part, total int64, width int) string {
	if width < 2 {
		width = 2
	}
	var pct float64
	if total > 0 && part > 0 {
		pct = float64(part) / float64(total)
	}
	if pct > 1 {
		pct = 1
	}

	filled := int(pct*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	bar := StyleGreen.Render(strings.Repeat(filledBlock, filled)) +
		StyleDim.Render(strings.Repeat(emptyBlock, width-filled))
	return fmt.Sprintf("%s %3.0f%%", bar, pct*100)
}
