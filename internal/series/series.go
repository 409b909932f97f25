// Package series collects bounded time series by probing a remote
// source once per period and tolerating periods with no data.
package series

import (
	"slices"
	"time"
)

// Field is one named numeric value of a Point.
type Field struct {
	Name  string
	Value float64
}

// Point is one observation. It is immutable once built: the key and the
// field values can only be read.
type Point struct {
	key    time.Time
	fields []Field
}

// NewPoint copies fields into a new Point. Field order is kept; a
// repeated name keeps its first value.
func NewPoint(key time.Time, fields ...Field) Point {
	out := make([]Field, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		out = append(out, f)
	}
	return Point{key: key, fields: out}
}

func (p Point) Key() time.Time { return p.key }

// Value returns the named field, or 0 when the point does not carry it.
func (p Point) Value(name string) float64 {
	for _, f := range p.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return 0
}

// Has reports whether the point carries the named field.
func (p Point) Has(name string) bool {
	for _, f := range p.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Fields returns a copy of the point's fields in insertion order.
func (p Point) Fields() []Field { return slices.Clone(p.fields) }

// Series is a sequence of points strictly increasing by key. Gaps are
// simply missing keys.
type Series struct {
	points []Point
}

// New builds a Series, sorting once by key. When two points share a key
// the one supplied first wins.
func New(points []Point) Series {
	ps := slices.Clone(points)
	slices.SortStableFunc(ps, func(a, b Point) int { return a.key.Compare(b.key) })
	out := ps[:0]
	for i, p := range ps {
		if i > 0 && p.key.Equal(out[len(out)-1].key) {
			continue
		}
		out = append(out, p)
	}
	return Series{points: out}
}

func (s Series) Len() int { return len(s.points) }

func (s Series) Empty() bool { return len(s.points) == 0 }

// At returns the i-th point in key order.
func (s Series) At(i int) Point { return s.points[i] }

// Points returns a copy of the points in key order.
func (s Series) Points() []Point { return slices.Clone(s.points) }

// Keys returns the index keys in order.
func (s Series) Keys() []time.Time {
	keys := make([]time.Time, len(s.points))
	for i, p := range s.points {
		keys[i] = p.key
	}
	return keys
}

// Lookup finds the point stored under key.
func (s Series) Lookup(key time.Time) (Point, bool) {
	i, ok := slices.BinarySearchFunc(s.points, key, func(p Point, k time.Time) int { return p.key.Compare(k) })
	if !ok {
		return Point{}, false
	}
	return s.points[i], true
}

// Tail returns the last n points as a new Series.
func (s Series) Tail(n int) Series {
	if n >= len(s.points) {
		return s
	}
	if n <= 0 {
		return Series{}
	}
	return Series{points: slices.Clone(s.points[len(s.points)-n:])}
}
