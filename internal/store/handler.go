package store

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/luxeshop/luxe-shop-backend/internal/catalog"
)

// SnapshotWriter persists the store snapshot under a namespace key.
// Implemented by the storage repositories.
type SnapshotWriter interface {
	Save(key string, snap Snapshot) error
}

// Handler exposes the store operations over HTTP. It owns the
// save-after-mutation policy: the store itself never touches storage.
type Handler struct {
	store       *Store
	snapshots   SnapshotWriter
	snapshotKey string
	jwtSecret   []byte
	catalog     catalog.Provider
}

func NewHandler(s *Store, snapshots SnapshotWriter, snapshotKey string, jwtSecret []byte, provider catalog.Provider) *Handler {
	return &Handler{
		store:       s,
		snapshots:   snapshots,
		snapshotKey: snapshotKey,
		jwtSecret:   jwtSecret,
		catalog:     provider,
	}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/sign-in", h.signIn)
	app.Post("/api/v1/sign-up", h.signUp)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/session", h.getSession)
	app.Post("/api/v1/sign-out", h.signOut)
	// PUT and PATCH both accept partial payloads
	app.Put("/api/v1/profile", h.updateProfile)
	app.Patch("/api/v1/profile", h.updateProfile)

	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart", h.addToCart)
	app.Put("/api/v1/cart/:lineId", h.updateCartItem)
	app.Delete("/api/v1/cart/:lineId", h.removeFromCart)
	app.Delete("/api/v1/cart", h.clearCart)
	app.Patch("/api/v1/cart/selection", h.toggleAllSelection)
	app.Patch("/api/v1/cart/:lineId/selection", h.toggleItemSelection)
	app.Get("/api/v1/cart/products", h.cartProducts)
}

// persist writes the snapshot after a mutation. Storage trouble is the
// host environment's problem: log it and keep serving from memory.
func (h *Handler) persist() {
	if h.snapshots == nil {
		return
	}
	if err := h.snapshots.Save(h.snapshotKey, h.store.Snapshot()); err != nil {
		log.Printf("warning: snapshot save failed: %v", err)
	}
}

type signInRequest struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (h *Handler) signIn(c *fiber.Ctx) error {
	payload := new(signInRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email is required"})
	}

	user := User{
		ID:      payload.ID,
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Address: payload.Address,
	}
	h.store.Login(user)
	h.persist()

	signed, err := h.issueToken(user.ID, user.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   signed,
	})
}

func (h *Handler) signUp(c *fiber.Ctx) error {
	payload := new(signInRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Name == "" || payload.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing required fields"})
	}

	created := h.store.Register(User{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Address: payload.Address,
	})
	h.persist()

	signed, err := h.issueToken(created.ID, created.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  created,
		"token": signed,
	})
}

func (h *Handler) issueToken(userID int, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

func (h *Handler) getSession(c *fiber.Ctx) error {
	if _, err := GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.JSON(fiber.Map{
		"currentUser": h.store.CurrentUser(),
		"isLoggedIn":  h.store.IsLoggedIn(),
	})
}

func (h *Handler) signOut(c *fiber.Ctx) error {
	if _, err := GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	h.store.Logout()
	h.persist()
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	if _, err := GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	patch := new(ProfilePatch)
	if err := c.BodyParser(patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.store.UpdateProfile(*patch)
	if err == ErrNoSession {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "no active session"})
	}
	h.persist()
	return c.JSON(updated)
}

type addToCartRequest struct {
	Product  RawProduct `json:"product"`
	Quantity int        `json:"quantity,omitempty"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	if _, err := GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.JSON(fiber.Map{
		"cart":             h.store.Cart(),
		"cartTotal":        h.store.CartTotal(),
		"cartCount":        h.store.CartCount(),
		"selectedSubtotal": h.store.SelectedSubtotal(),
	})
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	if _, err := GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(addToCartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Product.ID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	line := h.store.AddToCart(payload.Product.Normalize(), payload.Quantity)
	h.persist()
	return c.JSON(fiber.Map{
		"line":      line,
		"cartTotal": h.store.CartTotal(),
		"cartCount": h.store.CartCount(),
	})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(c *fiber.Ctx) error {
	if _, err := GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(updateCartItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	h.store.UpdateCartItem(c.Params("lineId"), payload.Quantity)
	h.persist()
	return c.JSON(fiber.Map{
		"cart":      h.store.Cart(),
		"cartTotal": h.store.CartTotal(),
		"cartCount": h.store.CartCount(),
	})
}

func (h *Handler) removeFromCart(c *fiber.Ctx) error {
	if _, err := GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	h.store.RemoveFromCart(c.Params("lineId"))
	h.persist()
	return c.JSON(fiber.Map{
		"cart":      h.store.Cart(),
		"cartTotal": h.store.CartTotal(),
		"cartCount": h.store.CartCount(),
	})
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	if _, err := GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	h.store.ClearCart()
	h.persist()
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) toggleItemSelection(c *fiber.Ctx) error {
	if _, err := GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	h.store.ToggleItemSelection(c.Params("lineId"))
	h.persist()
	return c.JSON(fiber.Map{
		"cart":             h.store.Cart(),
		"selectedSubtotal": h.store.SelectedSubtotal(),
	})
}

type toggleAllRequest struct {
	Checked bool `json:"checked"`
}

func (h *Handler) toggleAllSelection(c *fiber.Ctx) error {
	if _, err := GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(toggleAllRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	h.store.ToggleAllSelection(payload.Checked)
	h.persist()
	return c.JSON(fiber.Map{
		"cart":             h.store.Cart(),
		"selectedSubtotal": h.store.SelectedSubtotal(),
	})
}

// cartProducts returns the live catalog records for the products
// currently in the cart so the presentation layer can refresh display
// fields or run stock checks before mutating quantities.
func (h *Handler) cartProducts(c *fiber.Ctx) error {
	if _, err := GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if h.catalog == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "catalog unavailable"})
	}
	products, err := h.catalog.GetByIDs(h.store.ProductIDs())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(products)
}

// GetUserIDFromCtx extracts the user id claim placed in the request
// context by the JWT middleware.
func GetUserIDFromCtx(c *fiber.Ctx) (int, error) {
	u := c.Locals("user")
	if u == nil {
		return 0, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	if raw, ok := claims["user_id"]; ok {
		switch v := raw.(type) {
		case float64:
			return int(v), nil
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case string:
			id, err := strconv.Atoi(v)
			if err != nil {
				return 0, fiber.ErrUnauthorized
			}
			return id, nil
		}
	}
	return 0, fiber.ErrUnauthorized
}
