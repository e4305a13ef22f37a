package sizetree

import (
	"fmt"
	"math"
	"strconv"
)

// HumanSize renders a byte count with binary-prefixed units, e.g.
// "1.5 KiB". The unit field is padded to a fixed width so columns of sizes
// line up. Accepts a float so callers can format deltas too.
func HumanSize(n float64) string {
	for _, unit := range []string{"", "Ki", "Mi", "Gi", "Ti", "Pi", "Ei", "Zi"} {
		if math.Abs(n) < 1024.0 {
			return fmt.Sprintf("%3.1f %-3s", n, unit+"B")
		}
		n /= 1024.0
	}
	return fmt.Sprintf("%3.1f %-3s", n, "YiB")
}

// SizeString formats size either as a raw byte count or human readable.
func SizeString(size uint64, humanReadable bool) string {
	if humanReadable {
		return HumanSize(float64(size))
	}
	return strconv.FormatUint(size, 10)
}
