package tcmb

import (
	"context"
	"fmt"
	"time"

	"finboard/internal/series"
	"finboard/internal/source"
)

// Field names of a rate point.
const (
	FieldBuying  = "Buying"
	FieldSelling = "Selling"
)

// Archive is the part of Client RateProbe needs.
type Archive interface {
	OnDate(ctx context.Context, day time.Time) (Bulletin, error)
}

// RateProbe fetches the archived forex rates of code for one day. The
// point is keyed by the requested day, not the bulletin date.
func RateProbe(c Archive, code string) series.ProbeFunc {
	return func(ctx context.Context, day time.Time) (series.Point, error) {
		b, err := c.OnDate(ctx, day)
		if err != nil {
			return series.Point{}, err
		}
		cur, ok := b.Find(code)
		if !ok {
			return series.Point{}, fmt.Errorf("%s on %s: %w", code, day.Format(time.DateOnly), source.ErrNotFound)
		}
		return series.NewPoint(day,
			series.Field{Name: FieldBuying, Value: cur.ForexBuying},
			series.Field{Name: FieldSelling, Value: cur.ForexSelling},
		), nil
	}
}
