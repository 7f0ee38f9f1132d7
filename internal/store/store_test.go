package store

import (
	"fmt"
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// newTestStore pins the id generator and clock so assertions are
// deterministic.
func newTestStore() *Store {
	s := New()
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	}
	s.now = func() time.Time {
		return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestAddToCart_DiscountAndTotals(t *testing.T) {
	s := newTestStore()

	line := s.AddToCart(ProductInput{ID: 10, Name: "Silk Scarf", Price: 100, DiscountPercentage: 20}, 2)
	if !almostEqual(line.Price, 80) {
		t.Fatalf("expected discounted price 80, got %v", line.Price)
	}
	if line.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", line.Quantity)
	}
	if !line.IsSelected {
		t.Fatalf("new line should default to selected")
	}
	if !almostEqual(line.Price, line.OriginalPrice*(1-line.DiscountPercentage/100)) {
		t.Fatalf("price invariant broken: %v vs %v", line.Price, line.OriginalPrice)
	}
	if !almostEqual(s.CartTotal(), 160) {
		t.Fatalf("expected cart total 160, got %v", s.CartTotal())
	}
	if s.CartCount() != 2 {
		t.Fatalf("expected cart count 2, got %d", s.CartCount())
	}

	// same product again merges into a single line
	s.AddToCart(ProductInput{ID: 10, Name: "Silk Scarf", Price: 100, DiscountPercentage: 20}, 1)
	cart := s.Cart()
	if len(cart) != 1 {
		t.Fatalf("expected one merged line, got %d", len(cart))
	}
	if cart[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", cart[0].Quantity)
	}
	if !almostEqual(s.CartTotal(), 240) {
		t.Fatalf("expected cart total 240, got %v", s.CartTotal())
	}

	// absolute quantity set
	s.UpdateCartItem(cart[0].ID, 5)
	if got := s.Cart()[0].Quantity; got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
	if !almostEqual(s.CartTotal(), 400) {
		t.Fatalf("expected cart total 400, got %v", s.CartTotal())
	}

	// selection never touches the whole-cart aggregates
	s.ToggleAllSelection(false)
	if !almostEqual(s.SelectedSubtotal(), 0) {
		t.Fatalf("expected selected subtotal 0, got %v", s.SelectedSubtotal())
	}
	if !almostEqual(s.CartTotal(), 400) || s.CartCount() != 5 {
		t.Fatalf("aggregates changed by selection toggle: total=%v count=%d", s.CartTotal(), s.CartCount())
	}
	s.ToggleAllSelection(true)
	if !almostEqual(s.SelectedSubtotal(), 400) {
		t.Fatalf("expected selected subtotal 400, got %v", s.SelectedSubtotal())
	}
}

func TestAddToCart_MergeRefreshesDisplayFields(t *testing.T) {
	s := newTestStore()
	s.AddToCart(ProductInput{ID: 7, Name: "Old Name", Price: 50, Thumbnail: "old.jpg", Category: "bags"}, 1)
	s.ToggleItemSelection(s.Cart()[0].ID)

	s.AddToCart(ProductInput{ID: 7, Name: "New Name", Price: 60, Thumbnail: "new.jpg", Category: "accessories", DiscountPercentage: 10}, 1)

	cart := s.Cart()
	if len(cart) != 1 {
		t.Fatalf("expected one line, got %d", len(cart))
	}
	line := cart[0]
	if line.ProductName != "New Name" || line.Thumbnail != "new.jpg" || line.Category != "accessories" {
		t.Fatalf("display fields not refreshed: %+v", line)
	}
	if !almostEqual(line.Price, 54) || !almostEqual(line.OriginalPrice, 60) {
		t.Fatalf("price fields not refreshed: %+v", line)
	}
	if line.IsSelected {
		t.Fatalf("merge must leave the selection flag untouched")
	}
}

func TestAddToCart_QuantityBelowOneDefaultsToOne(t *testing.T) {
	s := newTestStore()
	s.AddToCart(ProductInput{ID: 1, Price: 10}, 0)
	if s.CartCount() != 1 {
		t.Fatalf("expected quantity to default to 1, got count %d", s.CartCount())
	}
	s.AddToCart(ProductInput{ID: 2, Price: 10}, -3)
	if got := s.Cart()[1].Quantity; got != 1 {
		t.Fatalf("expected quantity 1 for negative request, got %d", got)
	}
}

func TestRemoveFromCart_Idempotent(t *testing.T) {
	s := newTestStore()
	line := s.AddToCart(ProductInput{ID: 1, Price: 25}, 2)
	s.AddToCart(ProductInput{ID: 2, Price: 10}, 1)

	s.RemoveFromCart(line.ID)
	if len(s.Cart()) != 1 {
		t.Fatalf("expected one line after removal, got %d", len(s.Cart()))
	}
	if !almostEqual(s.CartTotal(), 10) || s.CartCount() != 1 {
		t.Fatalf("totals not recomputed: total=%v count=%d", s.CartTotal(), s.CartCount())
	}

	// second removal and unknown ids are no-ops
	s.RemoveFromCart(line.ID)
	s.RemoveFromCart("nope")
	if len(s.Cart()) != 1 {
		t.Fatalf("removal is not idempotent: %d lines", len(s.Cart()))
	}
}

func TestUpdateCartItem_ZeroOrBelowRemovesLine(t *testing.T) {
	for _, qty := range []int{0, -1} {
		s := newTestStore()
		line := s.AddToCart(ProductInput{ID: 3, Price: 15}, 2)
		s.AddToCart(ProductInput{ID: 4, Price: 5}, 1)

		before := len(s.Cart())
		s.UpdateCartItem(line.ID, qty)
		if got := len(s.Cart()); got != before-1 {
			t.Fatalf("qty %d: expected %d lines, got %d", qty, before-1, got)
		}
		if !almostEqual(s.CartTotal(), 5) || s.CartCount() != 1 {
			t.Fatalf("qty %d: totals wrong after removal: total=%v count=%d", qty, s.CartTotal(), s.CartCount())
		}
	}
}

func TestUpdateCartItem_UnknownLineIsNoop(t *testing.T) {
	s := newTestStore()
	s.AddToCart(ProductInput{ID: 3, Price: 15}, 2)
	s.UpdateCartItem("missing", 9)
	if s.CartCount() != 2 || !almostEqual(s.CartTotal(), 30) {
		t.Fatalf("unknown line mutated state: total=%v count=%d", s.CartTotal(), s.CartCount())
	}
}

func TestToggleItemSelection(t *testing.T) {
	s := newTestStore()
	line := s.AddToCart(ProductInput{ID: 9, Price: 30}, 2)

	s.ToggleItemSelection(line.ID)
	if s.Cart()[0].IsSelected {
		t.Fatalf("expected line deselected after toggle")
	}
	if !almostEqual(s.CartTotal(), 60) || s.CartCount() != 2 {
		t.Fatalf("toggle changed aggregates: total=%v count=%d", s.CartTotal(), s.CartCount())
	}
	if !almostEqual(s.SelectedSubtotal(), 0) {
		t.Fatalf("expected empty selected subtotal, got %v", s.SelectedSubtotal())
	}

	s.ToggleItemSelection(line.ID)
	if !s.Cart()[0].IsSelected {
		t.Fatalf("expected line reselected after second toggle")
	}
	// unknown line id is a no-op
	s.ToggleItemSelection("missing")
}

func TestLogoutClearsCartAndSession(t *testing.T) {
	s := newTestStore()
	s.Login(User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	s.AddToCart(ProductInput{ID: 10, Price: 100, DiscountPercentage: 20}, 2)

	s.Logout()
	if s.IsLoggedIn() || s.CurrentUser() != nil {
		t.Fatalf("session survived logout")
	}
	if len(s.Cart()) != 0 || s.CartCount() != 0 || !almostEqual(s.CartTotal(), 0) {
		t.Fatalf("cart survived logout: %+v", s.Cart())
	}
}

func TestRegisterAssignsIdentity(t *testing.T) {
	s := newTestStore()
	first := s.Register(User{Name: "Ada", Email: "ada@example.com"})
	if first.ID != 1 {
		t.Fatalf("expected first id 1, got %d", first.ID)
	}
	if first.CreatedAt != "2026-08-01T12:00:00Z" {
		t.Fatalf("unexpected createdAt %q", first.CreatedAt)
	}
	if !s.IsLoggedIn() || s.CurrentUser() == nil || s.CurrentUser().ID != 1 {
		t.Fatalf("register should behave like login")
	}

	second := s.Register(User{Name: "Grace", Email: "grace@example.com"})
	if second.ID != 2 {
		t.Fatalf("expected running counter id 2, got %d", second.ID)
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newTestStore()

	if _, err := s.UpdateProfile(ProfilePatch{}); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession without a user, got %v", err)
	}

	s.Login(User{ID: 5, Name: "Ada", Email: "ada@example.com", Phone: "111"})
	phone := "222"
	address := "1 Crescent Row"
	updated, err := s.UpdateProfile(ProfilePatch{Phone: &phone, Address: &address})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Phone != "222" || updated.Address != "1 Crescent Row" {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Name != "Ada" || updated.Email != "ada@example.com" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestDiscountedPrice(t *testing.T) {
	if got := DiscountedPrice(100, 20); !almostEqual(got, 80) {
		t.Fatalf("expected 80, got %v", got)
	}
	if got := DiscountedPrice(59.99, 0); !almostEqual(got, 59.99) {
		t.Fatalf("zero discount must return the price, got %v", got)
	}
	if got := DiscountedPrice(100, -5); !almostEqual(got, 100) {
		t.Fatalf("negative discount must return the price, got %v", got)
	}
}

func TestProductIDsPreserveLineOrder(t *testing.T) {
	s := newTestStore()
	s.AddToCart(ProductInput{ID: 3, Price: 1}, 1)
	s.AddToCart(ProductInput{ID: 1, Price: 1}, 1)
	s.AddToCart(ProductInput{ID: 2, Price: 1}, 1)

	ids := s.ProductIDs()
	want := []int{3, 1, 2}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, ids)
		}
	}
}
