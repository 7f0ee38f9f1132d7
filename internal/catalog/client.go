package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client fetches catalog data from the public product API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(path string, out any) error {
	res, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog api: unexpected status %d for %s", res.StatusCode, path)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) List(limit, skip int) (Page, error) {
	var page Page
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	path := "/products"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	err := c.get(path, &page)
	return page, err
}

func (c *Client) GetByID(id int) (Product, error) {
	var p Product
	err := c.get("/products/"+strconv.Itoa(id), &p)
	return p, err
}

// GetByIDs resolves products one by one; the public API has no bulk
// endpoint. Unknown ids are skipped rather than failing the batch.
func (c *Client) GetByIDs(ids []int) ([]Product, error) {
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		p, err := c.GetByID(id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) Categories() ([]string, error) {
	var categories []string
	err := c.get("/products/category-list", &categories)
	return categories, err
}

func (c *Client) ListByCategory(category string) (Page, error) {
	var page Page
	err := c.get("/products/category/"+url.PathEscape(category), &page)
	return page, err
}

func (c *Client) Search(query string) (Page, error) {
	var page Page
	err := c.get("/products/search?q="+url.QueryEscape(query), &page)
	return page, err
}
