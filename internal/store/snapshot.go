package store

// Snapshot is the persisted record: the full store state serialized
// under a single namespaced key. The aggregates are written for
// convenience but never trusted on the way back in.
type Snapshot struct {
	CurrentUser *User      `json:"currentUser"`
	IsLoggedIn  bool       `json:"isLoggedIn"`
	Cart        []CartLine `json:"cart"`
	CartTotal   float64    `json:"cartTotal"`
	CartCount   int        `json:"cartCount"`
}

// Snapshot returns a copy of the current state for persistence.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		IsLoggedIn: s.isLoggedIn,
		Cart:       make([]CartLine, len(s.cart)),
		CartTotal:  s.cartTotal,
		CartCount:  s.cartCount,
	}
	copy(snap.Cart, s.cart)
	if s.currentUser != nil {
		user := *s.currentUser
		snap.CurrentUser = &user
	}
	return snap
}

// Restore replaces the store state with a persisted snapshot. Totals
// are recomputed from the restored lines rather than taken from the
// snapshot, so stale aggregates from an older schema cannot drift in.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = nil
	if snap.CurrentUser != nil {
		user := *snap.CurrentUser
		s.currentUser = &user
		if user.ID >= s.nextUserID {
			s.nextUserID = user.ID + 1
		}
	}
	s.isLoggedIn = snap.IsLoggedIn && snap.CurrentUser != nil
	s.cart = make([]CartLine, len(snap.Cart))
	copy(s.cart, snap.Cart)
	s.recalcTotals()
}
