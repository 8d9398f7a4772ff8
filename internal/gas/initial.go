package gas

// Concentrated fills disks in index order, each up to capacity, so that for
// total <= capacity the first disk holds everything.
func Concentrated(disks, total, capacity int) []int {
	out := make([]int, disks)
	left := total
	for i := range out {
		out[i] = min(left, capacity)
		left -= out[i]
	}
	return out
}

// Even spreads total as evenly as possible, the remainder going to the
// lowest indices.
func Even(disks, total int) []int {
	out := make([]int, disks)
	if disks == 0 {
		return out
	}
	for i := range out {
		out[i] = total / disks
		if i < total%disks {
			out[i]++
		}
	}
	return out
}
