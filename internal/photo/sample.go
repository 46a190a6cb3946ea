package photo

// Sample picks at most limit representative indices out of n photos: the first
// quarter, the last quarter and evenly spaced indices from the middle. The
// result is sorted and has no duplicates.
func Sample(n, limit int) []int {
	if n <= 0 || limit <= 0 {
		return nil
	}
	if n <= limit {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}

	quarter := limit / 4
	middle := limit - 2*quarter
	span := n - 2*quarter

	out := make([]int, 0, limit)
	for i := range quarter {
		out = append(out, i)
	}
	for i := range middle {
		out = append(out, quarter+i*span/middle)
	}
	for i := n - quarter; i < n; i++ {
		out = append(out, i)
	}
	return out
}
