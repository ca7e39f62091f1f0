package profiler

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numberPrinter = message.NewPrinter(language.English)

// FormatTime renders a duration given in milliseconds using μs below 1 ms,
// ms below one second and s above.
func FormatTime(ms float64) string {
	switch {
	case ms < 1:
		return numberPrinter.Sprintf("%.2f μs", ms*1000)
	case ms < 1000:
		return numberPrinter.Sprintf("%.2f ms", ms)
	default:
		return numberPrinter.Sprintf("%.2f s", ms/1000)
	}
}

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatBytes renders a byte count with 1024-based units, rounded to two decimals.
func FormatBytes(n uint64) string {
	unit := 0
	div := uint64(1)
	for unit < len(byteUnits)-1 && n >= div*1024 {
		div *= 1024
		unit++
	}

	v := math.Round(float64(n)/float64(div)*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[unit]
}
