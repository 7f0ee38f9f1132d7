package catalog

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes catalog browsing. All routes are public: product
// discovery needs no session.
type Handler struct {
	provider Provider
}

func NewHandler(provider Provider) *Handler {
	return &Handler{provider: provider}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/categories", h.getCategories)
	app.Get("/api/v1/products/category/:category", h.getByCategory)
	app.Get("/api/v1/products/search", h.search)
	app.Get("/api/v1/product/:id", h.getProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 30)
	skip := c.QueryInt("skip", 0)
	page, err := h.provider.List(limit, skip)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(page)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	p, err := h.provider.GetByID(id)
	if err == ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(p)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	categories, err := h.provider.Categories()
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(categories)
}

func (h *Handler) getByCategory(c *fiber.Ctx) error {
	page, err := h.provider.ListByCategory(c.Params("category"))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(page)
}

func (h *Handler) search(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing query"})
	}
	page, err := h.provider.Search(q)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(page)
}
