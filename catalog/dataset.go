// Package catalog holds the ordered, URL-unique collection of scraped books.
package catalog

import (
	"strings"

	"github.com/aluiziolira/go-books-report/models"
)

// Dataset keeps books in discovery order with no two sharing a ProductURL.
// The zero value is not usable; call New.
type Dataset struct {
	books []models.Book
	seen  map[string]int
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{seen: make(map[string]int)}
}

// FromBooks builds a dataset from books, keeping the first occurrence of
// each ProductURL.
func FromBooks(books []models.Book) *Dataset {
	d := New()
	for _, b := range books {
		d.Add(b)
	}
	return d
}

// Add appends b unless its ProductURL is already present. It reports
// whether b was added.
func (d *Dataset) Add(b models.Book) bool {
	if b.ProductURL == "" {
		return false
	}
	if _, ok := d.seen[b.ProductURL]; ok {
		return false
	}
	d.seen[b.ProductURL] = len(d.books)
	d.books = append(d.books, b)
	return true
}

// Has reports whether a book with productURL is present.
func (d *Dataset) Has(productURL string) bool {
	_, ok := d.seen[productURL]
	return ok
}

// Get returns the book stored under productURL.
func (d *Dataset) Get(productURL string) (models.Book, bool) {
	i, ok := d.seen[productURL]
	if !ok {
		return models.Book{}, false
	}
	return d.books[i], true
}

// Len returns the number of books.
func (d *Dataset) Len() int {
	return len(d.books)
}

// Books returns a copy of the books in discovery order.
func (d *Dataset) Books() []models.Book {
	out := make([]models.Book, len(d.books))
	copy(out, d.books)
	return out
}

// Prices returns every price in dataset order.
func (d *Dataset) Prices() []float64 {
	out := make([]float64, len(d.books))
	for i, b := range d.books {
		out[i] = b.Price
	}
	return out
}

// Select returns the books whose ProductURL is in urls, in dataset order.
// URLs not present in d are ignored.
func (d *Dataset) Select(urls []string) *Dataset {
	wanted := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		wanted[u] = struct{}{}
	}
	return d.Filter(func(b models.Book) bool {
		_, ok := wanted[b.ProductURL]
		return ok
	})
}

// Filter returns the books matching keep, in dataset order.
func (d *Dataset) Filter(keep func(models.Book) bool) *Dataset {
	out := New()
	for _, b := range d.books {
		if keep(b) {
			out.Add(b)
		}
	}
	return out
}

// Criteria narrows a dataset the way the dashboard's sidebar does.
// Zero-valued fields do not constrain.
type Criteria struct {
	Title    string
	MinPrice float64
	MaxPrice float64
	Ratings  []int
}

// Match reports whether b satisfies c.
func (c Criteria) Match(b models.Book) bool {
	if c.Title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(c.Title)) {
		return false
	}
	if c.MinPrice > 0 && b.Price < c.MinPrice {
		return false
	}
	if c.MaxPrice > 0 && b.Price > c.MaxPrice {
		return false
	}
	if len(c.Ratings) > 0 {
		found := false
		for _, r := range c.Ratings {
			if r == b.Rating {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
