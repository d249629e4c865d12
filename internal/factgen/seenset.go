package factgen

import "sync"

// DefaultSeenCap bounds SeenSet growth. When the set fills it is cleared
// wholesale: tolerating eventual repeats is preferred over unbounded memory
// or permanent generation retries.
const DefaultSeenCap = 100

// SeenSet tracks recently generated question signatures for one
// (user session, operation) pair. Safe for concurrent use: the same
// learner can request questions from two devices at once.
type SeenSet struct {
	mu   sync.Mutex
	sigs map[string]struct{}
	cap  int
}

// NewSeenSet creates a SeenSet with the given capacity. A non-positive
// capacity falls back to DefaultSeenCap.
func NewSeenSet(capacity int) *SeenSet {
	if capacity <= 0 {
		capacity = DefaultSeenCap
	}
	return &SeenSet{
		sigs: make(map[string]struct{}),
		cap:  capacity,
	}
}

// Contains reports whether a signature was recently generated.
func (s *SeenSet) Contains(sig string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sigs[sig]
	return ok
}

// Add records a signature, clearing the set first if it is at capacity.
func (s *SeenSet) Add(sig string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sigs) >= s.cap {
		s.sigs = make(map[string]struct{})
	}
	s.sigs[sig] = struct{}{}
}

// Len returns the number of tracked signatures.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sigs)
}

// Reset clears the set, e.g. on explicit session reset.
func (s *SeenSet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sigs = make(map[string]struct{})
}
