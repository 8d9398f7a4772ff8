package sim

import (
	"strconv"
	"strings"
)

func formatOccupancy(occ []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for k, v := range occ {
		if k > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(v, 'f', 3, 64))
	}
	b.WriteByte(']')
	return b.String()
}
