package alerts

import "sync"

// Store keeps the read and deleted state of one session's alerts across
// refreshes. State is keyed by alert id and only survives for ids that the
// latest synthesis still produces.
type Store struct {
	mu      sync.Mutex
	current []Alert
	read    map[string]struct{}
	deleted map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		read:    make(map[string]struct{}),
		deleted: make(map[string]struct{}),
	}
}

// Merge replaces the tracked alerts with latest, carrying over read flags,
// hiding deleted ids and forgetting state for ids no longer present.
// It returns the visible alerts in synthesis order.
func (s *Store) Merge(latest []Alert) []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	read := make(map[string]struct{})
	deleted := make(map[string]struct{})
	visible := make([]Alert, 0, len(latest))
	for _, a := range latest {
		if _, ok := s.deleted[a.ID]; ok {
			deleted[a.ID] = struct{}{}
			continue
		}
		_, wasRead := s.read[a.ID]
		if wasRead || a.Read {
			read[a.ID] = struct{}{}
			a.Read = true
		}
		visible = append(visible, a)
	}
	s.current, s.read, s.deleted = visible, read, deleted
	return append([]Alert(nil), visible...)
}

// MarkRead flags one visible alert as read. It reports whether id was found.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.current {
		if s.current[i].ID == id {
			s.current[i].Read = true
			s.read[id] = struct{}{}
			return true
		}
	}
	return false
}

// MarkAllRead flags every visible alert as read.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.current {
		s.current[i].Read = true
		s.read[s.current[i].ID] = struct{}{}
	}
}

// Delete hides an alert until its id stops being produced. It reports
// whether id was visible.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.current {
		if s.current[i].ID == id {
			s.current = append(s.current[:i], s.current[i+1:]...)
			delete(s.read, id)
			s.deleted[id] = struct{}{}
			return true
		}
	}
	return false
}

// UnreadCount returns the number of visible unread alerts.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, a := range s.current {
		if !a.Read {
			n++
		}
	}
	return n
}

// Alerts returns a copy of the visible alerts.
func (s *Store) Alerts() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Alert(nil), s.current...)
}

// Tracked returns how many ids currently carry read or deleted state.
func (s *Store) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.read) + len(s.deleted)
}
