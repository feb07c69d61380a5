package cart

import "time"

// CartItem is one line in a user's cart. Exactly one of ProductID or
// VariantID is set: simple products are added by product ID, configurable
// products by variant ID.
type CartItem struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	ProductID *string   `json:"product_id,omitempty"`
	VariantID *string   `json:"variant_id,omitempty"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated on reads from the joined product/variant row.
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Price    int     `json:"price"`
	Stock    int     `json:"stock"`
	ImageURL *string `json:"imageurl,omitempty"`
}

// Target identifies what a cart operation acts on.
type Target struct {
	ProductID *string
	VariantID *string
}

// Valid reports whether exactly one of ProductID/VariantID is set.
func (t Target) Valid() bool {
	return (t.ProductID != nil) != (t.VariantID != nil)
}

// Key returns a stable identifier for the target, used for request
// coalescing and map keys.
func (t Target) Key() string {
	if t.VariantID != nil {
		return "variant:" + *t.VariantID
	}
	if t.ProductID != nil {
		return "product:" + *t.ProductID
	}
	return ""
}

type AddToCartParams struct {
	UserID   uint
	Target   Target
	Quantity int
}

type UpdateQuantityParams struct {
	UserID   uint
	Target   Target
	Quantity int
}

type CartFilter struct {
	InStock *bool
	Search  *string
}

type CartSort struct {
	Field     string
	Direction string
}

type CreateCartItemParams struct {
	UserID   uint
	Target   Target
	Quantity int
}
