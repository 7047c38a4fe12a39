package roles

// Thresholds is an ascending list of counter values, one per tier.
// Unsorted lists are a configuration error (see Config.Validate); Met does not
// re-check ordering.
type Thresholds []int64

// Met returns how many thresholds the counter reaches. The scan stops at the
// first threshold above the counter, and a counter equal to a threshold meets it.
func (t Thresholds) Met(counter int64) int {
	n := 0
	for _, th := range t {
		if counter < th {
			break
		}
		n++
	}
	return n
}

// Sorted reports whether the thresholds are non-decreasing.
func (t Thresholds) Sorted() bool {
	for i := 1; i < len(t); i++ {
		if t[i] < t[i-1] {
			return false
		}
	}
	return true
}

// Next returns the next threshold the counter has not reached yet, if any.
func (t Thresholds) Next(counter int64) (int64, bool) {
	n := t.Met(counter)
	if n >= len(t) {
		return 0, false
	}
	return t[n], true
}
