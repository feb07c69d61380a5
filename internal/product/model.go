package product

// Product is a catalog entry. A simple product carries its own price and
// stock; a configurable product delegates both to its variants.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status"`
	ImageURL    *string `json:"imageurl,omitempty"`

	// Simple products only. Configurable products keep these at zero and
	// track price/stock per variant.
	Price int `json:"price"`
	Stock int `json:"stock"`

	HasVariants bool       `json:"has_variants"`
	Variants    []*Variant `json:"variants,omitempty"`
}

// Variant is one color/size combination of a configurable product.
type Variant struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     int     `json:"price"`
	Stock     int     `json:"stock"`
	ImageURL  *string `json:"imageurl,omitempty"`
}

const (
	StatusActive  = "active"
	StatusDisable = "disable"
)

type GetProductOptions struct {
	ProductID  string
	OnlyActive bool
}

type GetVariantOptions struct {
	VariantID  string
	OnlyActive bool
}
