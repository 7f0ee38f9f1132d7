package catalog

import "errors"

var ErrNotFound = errors.New("product not found")

// Product is a catalog record as served by the product API.
type Product struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage,omitempty"`
	Rating             float64  `json:"rating,omitempty"`
	Stock              int      `json:"stock,omitempty"`
	Brand              string   `json:"brand,omitempty"`
	Category           string   `json:"category,omitempty"`
	Thumbnail          string   `json:"thumbnail,omitempty"`
	Images             []string `json:"images,omitempty"`
}

// Page is one page of catalog results.
type Page struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// Provider abstracts where catalog data comes from: the public product
// API over HTTP or a locally mirrored product table.
type Provider interface {
	List(limit, skip int) (Page, error)
	GetByID(id int) (Product, error)
	GetByIDs(ids []int) ([]Product, error)
	Categories() ([]string, error)
	ListByCategory(category string) (Page, error)
	Search(query string) (Page, error)
}
