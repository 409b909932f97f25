package aggregate

import (
	"math"
	"time"

	"finboard/internal/series"
)

// Summary describes one numeric field over a series.
type Summary struct {
	Field     string
	Count     int
	Mean      float64
	Min       float64
	Max       float64
	First     float64
	Last      float64
	FirstAt   time.Time
	LastAt    time.Time
	Change    float64 // Last - First
	ChangePct float64 // relative to First, 0 when First is 0
}

// Summarize computes a Summary of field over s. Points that do not carry
// the field are ignored; an empty result has Count == 0.
func Summarize(s series.Series, field string) Summary {
	out := Summary{Field: field}
	sum := 0.0
	for _, p := range s.Points() {
		if !p.Has(field) {
			continue
		}
		v := p.Value(field)
		if out.Count == 0 {
			out.First, out.FirstAt = v, p.Key()
			out.Min, out.Max = v, v
		}
		out.Min = math.Min(out.Min, v)
		out.Max = math.Max(out.Max, v)
		out.Last, out.LastAt = v, p.Key()
		sum += v
		out.Count++
	}
	if out.Count == 0 {
		return out
	}
	out.Mean = sum / float64(out.Count)
	out.Change, out.ChangePct = Change(out.Last, out.First)
	return out
}

// Change returns last-prev and the percentage change relative to prev.
// The percentage is 0 when prev is 0.
func Change(last, prev float64) (diff, pct float64) {
	diff = last - prev
	if prev == 0 {
		return diff, 0
	}
	return diff, diff / prev * 100
}
