package catalog

import (
	"database/sql"

	"github.com/lib/pq"
)

// PostgresRepository serves catalog data from a locally mirrored
// products table instead of the remote API.
type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `"productID", "title", "description", "price", "discountPercentage", "rating", "stock", "brand", "category", "thumbnail"`

	listProductsQuery = `
        SELECT ` + productColumns + `, COUNT(*) OVER () AS total
        FROM products
        ORDER BY "productID"
        LIMIT $1 OFFSET $2
    `
	getProductByIDQuery = `
        SELECT ` + productColumns + `
        FROM products
        WHERE "productID" = $1
    `
	getProductsByIDsQuery = `
        SELECT ` + productColumns + `
        FROM products
        WHERE "productID" = ANY($1::int[])
        ORDER BY array_position($1::int[], "productID")
    `
	listCategoriesQuery = `SELECT DISTINCT category FROM products WHERE category IS NOT NULL ORDER BY category`

	listByCategoryQuery = `
        SELECT ` + productColumns + `, COUNT(*) OVER () AS total
        FROM products
        WHERE category = $1
        ORDER BY "productID"
    `
	searchProductsQuery = `
        SELECT ` + productColumns + `, COUNT(*) OVER () AS total
        FROM products
        WHERE title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
        ORDER BY "productID"
    `
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate ensures the mirrored products table exists.
func (r *PostgresRepository) Migrate() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS products (
        "productID" INT PRIMARY KEY,
        "title" TEXT NOT NULL,
        "description" TEXT,
        "price" numeric NOT NULL DEFAULT 0,
        "discountPercentage" numeric NOT NULL DEFAULT 0,
        "rating" numeric NOT NULL DEFAULT 0,
        "stock" INT NOT NULL DEFAULT 0,
        "brand" TEXT,
        "category" TEXT,
        "thumbnail" TEXT
    )`)
	return err
}

func scanProduct(rows interface{ Scan(...any) error }) (Product, error) {
	var p Product
	var description, brand, category, thumbnail sql.NullString
	err := rows.Scan(&p.ID, &p.Title, &description, &p.Price, &p.DiscountPercentage, &p.Rating, &p.Stock, &brand, &category, &thumbnail)
	if err != nil {
		return Product{}, err
	}
	p.Description = description.String
	p.Brand = brand.String
	p.Category = category.String
	p.Thumbnail = thumbnail.String
	return p, nil
}

func (r *PostgresRepository) List(limit, skip int) (Page, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.Query(listProductsQuery, limit, skip)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	page := Page{Products: make([]Product, 0), Skip: skip, Limit: limit}
	for rows.Next() {
		var p Product
		var description, brand, category, thumbnail sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &description, &p.Price, &p.DiscountPercentage, &p.Rating, &p.Stock, &brand, &category, &thumbnail, &page.Total); err != nil {
			return Page{}, err
		}
		p.Description = description.String
		p.Brand = brand.String
		p.Category = category.String
		p.Thumbnail = thumbnail.String
		page.Products = append(page.Products, p)
	}
	return page, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	row := r.db.QueryRow(getProductByIDQuery, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	return p, err
}

// GetByIDs fetches a batch of products preserving the requested order.
// Unknown ids are simply absent from the result.
func (r *PostgresRepository) GetByIDs(ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.db.Query(getProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Categories() ([]string, error) {
	rows, err := r.db.Query(listCategoriesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListByCategory(category string) (Page, error) {
	return r.pageQuery(listByCategoryQuery, category)
}

func (r *PostgresRepository) Search(query string) (Page, error) {
	return r.pageQuery(searchProductsQuery, query)
}

func (r *PostgresRepository) pageQuery(q string, arg any) (Page, error) {
	rows, err := r.db.Query(q, arg)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	page := Page{Products: make([]Product, 0)}
	for rows.Next() {
		var p Product
		var description, brand, category, thumbnail sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &description, &p.Price, &p.DiscountPercentage, &p.Rating, &p.Stock, &brand, &category, &thumbnail, &page.Total); err != nil {
			return Page{}, err
		}
		p.Description = description.String
		p.Brand = brand.String
		p.Category = category.String
		p.Thumbnail = thumbnail.String
		page.Products = append(page.Products, p)
	}
	page.Limit = len(page.Products)
	return page, rows.Err()
}
