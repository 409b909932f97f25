package series

import "time"

// Days returns n calendar days ending at end (truncated to midnight in
// end's location), most recent first.
func Days(end time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	y, m, d := end.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, end.Location())
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = day.AddDate(0, 0, -i)
	}
	return out
}

// Buckets returns n bucket starts beginning at start, step apart, in
// chronological order.
func Buckets(start time.Time, step time.Duration, n int) []time.Time {
	if n <= 0 || step <= 0 {
		return nil
	}
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = start.Add(time.Duration(i) * step)
	}
	return out
}

// Identity is the key function for ranges that already are keys.
func Identity(t time.Time) time.Time { return t }
