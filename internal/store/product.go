package store

// ProductInput is the canonical product record AddToCart accepts.
// External DTOs are normalized into this shape first; the mutation
// logic never branches on payload shape.
type ProductInput struct {
	ID                 int
	Name               string
	Price              float64
	Thumbnail          string
	DiscountPercentage float64
	Category           string
}

// RawProduct mirrors the loose product payloads the catalog API and the
// presentation layer send: title or name, thumbnail or image or the
// first of images, optional discount and category. Missing numeric
// fields stay 0 and missing display fields stay empty.
type RawProduct struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title,omitempty"`
	Name               string   `json:"name,omitempty"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage,omitempty"`
	Thumbnail          string   `json:"thumbnail,omitempty"`
	Image              string   `json:"image,omitempty"`
	Images             []string `json:"images,omitempty"`
	Category           string   `json:"category,omitempty"`
	Stock              int      `json:"stock,omitempty"`
}

// Normalize maps the loose shape onto ProductInput.
func (r RawProduct) Normalize() ProductInput {
	name := r.Title
	if name == "" {
		name = r.Name
	}
	thumb := r.Thumbnail
	if thumb == "" {
		thumb = r.Image
	}
	if thumb == "" && len(r.Images) > 0 {
		thumb = r.Images[0]
	}
	return ProductInput{
		ID:                 r.ID,
		Name:               name,
		Price:              r.Price,
		Thumbnail:          thumb,
		DiscountPercentage: r.DiscountPercentage,
		Category:           r.Category,
	}
}
