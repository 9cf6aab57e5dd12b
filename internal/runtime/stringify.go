package runtime

import (
	"strconv"
	"strings"
)

// FormatNumber renders a number the way the language prints it: six decimal
// places, then trailing zeros and a trailing '.' trimmed. Integers print with
// no fractional part ("55"), everything else keeps only significant digits
// ("4.6", "3.333333").
func FormatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
