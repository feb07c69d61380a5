package checkout

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionTTL is how long a checkout session stays valid after creation.
const SessionTTL = 30 * time.Minute

// CheckoutSession is a server-side snapshot of everything a checkout
// needs: the cart lines with their prices frozen at session creation,
// the computed totals, and the delivery details collected so far.
// Order creation copies these values verbatim.
type CheckoutSession struct {
	ID     string `json:"id"`
	UserID uint   `json:"user_id"`

	Items []SessionItem `json:"items"`

	// Candidate delivery addresses captured at creation.
	Addresses []SessionAddress `json:"addresses,omitempty"`

	// Pricing (server-calculated only)
	Subtotal    int    `json:"subtotal"`
	Tax         int    `json:"tax"`
	ShippingFee int    `json:"shipping_fee"`
	Discount    int    `json:"discount"`
	Total       int    `json:"total"`
	Currency    string `json:"currency"`

	ShippingAddressID *string `json:"shipping_address_id,omitempty"`
	BillingAddressID  *string `json:"billing_address_id,omitempty"`
	PaymentMethod     *string `json:"payment_method,omitempty"`
	Notes             *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionItem freezes one cart line. Exactly one of ProductID or
// VariantID is set, mirroring the cart.
type SessionItem struct {
	ProductID *string `json:"product_id,omitempty"`
	VariantID *string `json:"variant_id,omitempty"`

	Name     string  `json:"name"`
	ImageURL *string `json:"imageurl,omitempty"`

	Quantity int `json:"quantity"`
	Price    int `json:"price"`
	Subtotal int `json:"subtotal"`
}

// SessionAddress is a candidate delivery address frozen into the
// session so the checkout UI does not re-query mid-flow.
type SessionAddress struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ReceiverName string  `json:"receiver_name"`
	Phone        string  `json:"phone"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	Province     string  `json:"province"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
	IsDefault    bool    `json:"is_default"`
}

// Expired reports whether the session is past its deadline.
func (s *CheckoutSession) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// NewSessionID builds a session ID with the owner embedded, so ownership
// can be checked without loading the session.
func NewSessionID(userID uint) string {
	return fmt.Sprintf("%d-%s", userID, uuid.NewString())
}

// SessionOwner extracts the user ID embedded in a session ID.
func SessionOwner(sessionID string) (uint, bool) {
	prefix, _, found := strings.Cut(sessionID, "-")
	if !found {
		return 0, false
	}
	owner, err := strconv.ParseUint(prefix, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(owner), true
}
