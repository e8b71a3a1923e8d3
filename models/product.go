package models

import "strings"

// Field names a column of the canonical catalog.
type Field string

const (
	FieldLink        Field = "link"
	FieldImageURL    Field = "image_url"
	FieldBrand       Field = "brand"
	FieldTitle       Field = "title"
	FieldPrice       Field = "price"
	FieldCategory    Field = "category"
	FieldSubcategory Field = "subcategory"
	FieldMarketplace Field = "marketplace"
	FieldQuantity    Field = "quantity"
	FieldRating      Field = "rating"
)

// Uncategorized is the label shown for products without a category.
const Uncategorized = "Uncategorized"

const displayTitleMax = 60

// Product is one row of the canonical catalog.
type Product struct {
	Link     string  `json:"link"`
	ImageURL string  `json:"image_url"`
	Brand    string  `json:"brand"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	// Category is nil until the source or a backfill provides one.
	Category    *string `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Marketplace string  `json:"marketplace,omitempty"`
	Quantity    int     `json:"quantity"`
	Rating      float64 `json:"rating"`
}

// CategoryLabel returns the category, or Uncategorized when it is unset.
func (p Product) CategoryLabel() string {
	if p.Category == nil {
		return Uncategorized
	}
	return *p.Category
}

// HasImage reports whether the product carries a usable image URL.
func (p Product) HasImage() bool {
	u := strings.TrimSpace(p.ImageURL)
	return u != "" && !strings.EqualFold(u, "nan")
}

// DisplayTitle truncates the title for cards. The stored title is untouched.
func (p Product) DisplayTitle() string {
	runes := []rune(p.Title)
	if len(runes) <= displayTitleMax {
		return p.Title
	}
	return string(runes[:displayTitleMax]) + "..."
}

// CategoryResult is what the categorization service proposes for one title.
type CategoryResult struct {
	Main string `json:"main_category"`
	Sub  string `json:"subcategory"`
}

// IsUncategorized reports whether the service gave up on the title.
func (c CategoryResult) IsUncategorized() bool {
	main := strings.TrimSpace(c.Main)
	return main == "" || strings.EqualFold(main, Uncategorized)
}
