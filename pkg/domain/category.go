package domain

import (
	dErrors "storefront/pkg/domain-errors"
)

// Category is the closed product category enumeration.
type Category string

// Supported product categories.
const (
	CategoryElectronics Category = "electronics"
	CategoryFashion     Category = "fashion"
	CategoryBooks       Category = "books"
	CategoryHome        Category = "home"
	CategorySports      Category = "sports"
	CategoryFood        Category = "food"
)

// categoryLabels is the single source of truth for valid categories and
// their display labels.
var categoryLabels = map[Category]string{
	CategoryElectronics: "Electronics",
	CategoryFashion:     "Fashion",
	CategoryBooks:       "Books",
	CategoryHome:        "Home & Living",
	CategorySports:      "Sports & Outdoors",
	CategoryFood:        "Food & Beverage",
}

// ParseCategory constructs a Category from external input.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "category cannot be empty")
	}
	c := Category(s)
	if !c.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown category: %s", s)
	}
	return c, nil
}

// IsValid checks membership in the closed enumeration.
func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display label for the category.
func (c Category) Label() string {
	return categoryLabels[c]
}

func (c Category) String() string {
	return string(c)
}

// Categories returns all supported categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryElectronics,
		CategoryFashion,
		CategoryBooks,
		CategoryHome,
		CategorySports,
		CategoryFood,
	}
}
