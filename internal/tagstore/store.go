package tagstore

import "sync"

// TagResult reports the outcome of a tag toggle.
type TagResult int

const (
	Tagged TagResult = iota
	Untagged
)

func (r TagResult) String() string {
	if r == Tagged {
		return "tagged"
	}
	return "untagged"
}

// Store is the single owner of the tagged node set and the group
// visibility flag. Both live behind one lock: toggling visibility
// reads the set, so they form a single mutual-exclusion domain.
type Store struct {
	mu     sync.RWMutex
	tagged map[string]struct{}
	shown  bool
}

// New creates an empty store with the group visible.
func New() *Store {
	return &Store{
		tagged: make(map[string]struct{}),
		shown:  true,
	}
}

// ToggleTag inserts id if absent and removes it if present. Atomic:
// two racing toggles of the same id never both observe "absent".
func (s *Store) ToggleTag(id string) TagResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tagged[id]; ok {
		delete(s.tagged, id)
		return Untagged
	}
	s.tagged[id] = struct{}{}
	return Tagged
}

// IsTagged reports whether id is currently tagged.
func (s *Store) IsTagged(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.tagged[id]
	return ok
}

// AllTagged returns a snapshot copy of the tagged node ids.
func (s *Store) AllTagged() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.tagged))
	for id := range s.tagged {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of tagged nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.tagged)
}

// Shown returns the current visibility flag.
func (s *Store) Shown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shown
}

// ToggleVisibility flips the visibility flag and returns the new
// value.
func (s *Store) ToggleVisibility() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shown = !s.shown
	return s.shown
}

// SetShown overwrites the visibility flag. The server uses this to
// restore the flag when applying a toggle to the window manager
// failed wholesale.
func (s *Store) SetShown(shown bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shown = shown
}

// Remove deletes id from the set, reporting whether it was tagged.
// Used by the node_remove watcher when a window closes.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tagged[id]; !ok {
		return false
	}
	delete(s.tagged, id)
	return true
}

// DropMissing removes every tagged id not present in existing and
// returns the removed ids. The window manager is the ground truth
// for which nodes still exist.
func (s *Store) DropMissing(existing map[string]struct{}) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped []string
	for id := range s.tagged {
		if _, ok := existing[id]; !ok {
			delete(s.tagged, id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}
