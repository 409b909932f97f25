package dashboard

import (
	"errors"
	"sync"

	"finboard/internal/export"
)

// ErrNothingLoaded is returned when exporting a dataset no view has
// produced yet.
var ErrNothingLoaded = errors.New("no data loaded yet; open the rates, history or crypto view first")

// Session keeps the last table of each dataset. Every request takes a
// ticket; a result is stored only if no later request for the same
// dataset was started, so the most recent request wins.
type Session struct {
	mu     sync.Mutex
	next   uint64
	latest map[Dataset]uint64
	tables map[Dataset]export.Table
}

func NewSession() *Session {
	return &Session{latest: make(map[Dataset]uint64), tables: make(map[Dataset]export.Table)}
}

// Begin issues a ticket for a request feeding d.
func (s *Session) Begin(d Dataset) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.latest[d] = s.next
	return s.next
}

// Commit stores t if ticket is still the newest for d.
func (s *Session) Commit(d Dataset, ticket uint64, t export.Table) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[d] != ticket {
		return false
	}
	s.tables[d] = t
	return true
}

// Table returns the stored table of d.
func (s *Session) Table(d Dataset) (export.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[d]
	return t, ok && !t.Empty()
}

// Export encodes the stored table of d.
func (s *Session) Export(d Dataset, f export.Format, opts ...export.Option) (export.Payload, error) {
	t, ok := s.Table(d)
	if !ok {
		return export.Payload{}, ErrNothingLoaded
	}
	return export.Export(t, f, opts...)
}
