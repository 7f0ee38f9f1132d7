package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoSession is returned by operations that need a logged-in user.
	ErrNoSession = errors.New("no active session")
)

// User is the session identity record. There is no credential field:
// sign-in trusts the caller and real authentication lives outside this
// module.
type User struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// CartLine is one entry in the cart: a product plus the quantity and
// selection state for it. Display fields are denormalized at add time.
type CartLine struct {
	ID                 string  `json:"id"`
	ProductID          int     `json:"productId"`
	ProductName        string  `json:"productName"`
	Quantity           int     `json:"quantity"`
	Price              float64 `json:"price"`
	OriginalPrice      float64 `json:"originalPrice,omitempty"`
	Thumbnail          string  `json:"thumbnail"`
	DiscountPercentage float64 `json:"discountPercentage,omitempty"`
	Category           string  `json:"category,omitempty"`
	IsSelected         bool    `json:"isSelected"`
}

// ProfilePatch carries the fields updateProfile may change. Nil fields
// are left untouched (shallow merge).
type ProfilePatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Store is the cart/session state container. It owns the current user,
// the cart lines and the whole-cart aggregates, and nothing else: it
// never performs I/O. Persistence is the caller's job via Snapshot and
// Restore.
type Store struct {
	mu          sync.RWMutex
	currentUser *User
	isLoggedIn  bool
	cart        []CartLine
	cartTotal   float64
	cartCount   int
	nextUserID  int

	// newID generates cart line ids. Injectable so tests can pin ids;
	// defaults to UUIDs (wall-clock ids collide under a coarse clock).
	newID func() string
	now   func() time.Time
}

func New() *Store {
	return &Store{
		nextUserID: 1,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Login sets the session identity. No validation, no credential check.
func (s *Store) Login(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := u
	s.currentUser = &user
	s.isLoggedIn = true
}

// Logout clears the session and the cart. Any in-progress checkout
// selection is lost.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = nil
	s.isLoggedIn = false
	s.cart = nil
	s.cartTotal = 0
	s.cartCount = 0
}

// Register assigns a fresh identity (running-counter id, createdAt now)
// and then behaves like Login. The assigned user is returned.
func (s *Store) Register(u User) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextUserID
	s.nextUserID++
	u.CreatedAt = s.now().UTC().Format(time.RFC3339)
	user := u
	s.currentUser = &user
	s.isLoggedIn = true
	return u
}

// UpdateProfile shallow-merges patch into the current user. Returns
// ErrNoSession when nobody is logged in; nothing is mutated in that
// case.
func (s *Store) UpdateProfile(patch ProfilePatch) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUser == nil {
		return User{}, ErrNoSession
	}
	if patch.Name != nil {
		s.currentUser.Name = *patch.Name
	}
	if patch.Email != nil {
		s.currentUser.Email = *patch.Email
	}
	if patch.Phone != nil {
		s.currentUser.Phone = *patch.Phone
	}
	if patch.Address != nil {
		s.currentUser.Address = *patch.Address
	}
	return *s.currentUser, nil
}

// CurrentUser returns a copy of the session identity, or nil.
func (s *Store) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil
	}
	user := *s.currentUser
	return &user
}

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoggedIn
}

// AddToCart merges the product into the cart. An existing line for the
// same product gets its quantity incremented and its display/price
// fields refreshed to the latest values (selection is left untouched);
// otherwise a new selected line is appended. Quantity below 1 means 1.
// No stock check happens here.
func (s *Store) AddToCart(p ProductInput, quantity int) CartLine {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	discounted := DiscountedPrice(p.Price, p.DiscountPercentage)
	for i := range s.cart {
		if s.cart[i].ProductID == p.ID {
			s.cart[i].Quantity += quantity
			s.cart[i].Price = discounted
			s.cart[i].OriginalPrice = p.Price
			s.cart[i].DiscountPercentage = p.DiscountPercentage
			s.cart[i].ProductName = p.Name
			s.cart[i].Thumbnail = p.Thumbnail
			s.cart[i].Category = p.Category
			s.recalcTotals()
			return s.cart[i]
		}
	}

	line := CartLine{
		ID:                 s.newID(),
		ProductID:          p.ID,
		ProductName:        p.Name,
		Quantity:           quantity,
		Price:              discounted,
		OriginalPrice:      p.Price,
		Thumbnail:          p.Thumbnail,
		DiscountPercentage: p.DiscountPercentage,
		Category:           p.Category,
		IsSelected:         true,
	}
	s.cart = append(s.cart, line)
	s.recalcTotals()
	return line
}

// RemoveFromCart deletes the line with the given id. Unknown ids are a
// no-op, so removal is idempotent.
func (s *Store) RemoveFromCart(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLine(lineID)
}

func (s *Store) removeLine(lineID string) {
	for i := range s.cart {
		if s.cart[i].ID == lineID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			s.recalcTotals()
			return
		}
	}
}

// UpdateCartItem sets the line's quantity to an absolute value. A value
// of zero or below removes the line entirely; zero-quantity lines never
// exist.
func (s *Store) UpdateCartItem(lineID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity <= 0 {
		s.removeLine(lineID)
		return
	}
	for i := range s.cart {
		if s.cart[i].ID == lineID {
			s.cart[i].Quantity = quantity
			s.recalcTotals()
			return
		}
	}
}

// ClearCart empties the cart and zeroes the aggregates.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
	s.cartTotal = 0
	s.cartCount = 0
}

// ToggleItemSelection flips isSelected on one line. Aggregates are
// whole-cart values and are deliberately not recomputed here.
func (s *Store) ToggleItemSelection(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].ID == lineID {
			s.cart[i].IsSelected = !s.cart[i].IsSelected
			return
		}
	}
}

// ToggleAllSelection sets isSelected uniformly across all lines.
func (s *Store) ToggleAllSelection(checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		s.cart[i].IsSelected = checked
	}
}

// Cart returns a copy of the cart lines in stable insertion order.
func (s *Store) Cart() []CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CartLine, len(s.cart))
	copy(out, s.cart)
	return out
}

func (s *Store) CartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartTotal
}

func (s *Store) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartCount
}

// SelectedSubtotal derives the partial-checkout total over selected
// lines. Computed on demand, never stored.
func (s *Store) SelectedSubtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum float64
	for _, line := range s.cart {
		if line.IsSelected {
			sum += line.Price * float64(line.Quantity)
		}
	}
	return sum
}

// ProductIDs lists the distinct product ids currently in the cart, in
// line order.
func (s *Store) ProductIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, 0, len(s.cart))
	for _, line := range s.cart {
		ids = append(ids, line.ProductID)
	}
	return ids
}

// DiscountedPrice applies a percentage discount to a unit price. Pure.
func DiscountedPrice(price, discountPercentage float64) float64 {
	if discountPercentage > 0 {
		return price - price*(discountPercentage/100)
	}
	return price
}

// recalcTotals recomputes cartTotal and cartCount over all lines,
// selected or not. Callers hold the write lock.
func (s *Store) recalcTotals() {
	var total float64
	count := 0
	for _, line := range s.cart {
		total += line.Price * float64(line.Quantity)
		count += line.Quantity
	}
	s.cartTotal = total
	s.cartCount = count
}
