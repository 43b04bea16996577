package domain

import "time"

// CartItem is one line of a cart. Quantity is always > 0; a line that would
// drop to zero is removed instead.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the per-user aggregate. TotalPrice is a cached value derived from
// the catalog at the last recomputation, not a source of truth.
type Cart struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"total_price"`
	Version    int64      `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart for userID.
func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem merges quantity into the line for productID, appending a new line
// when none exists.
func (c *Cart) AddItem(productID string, quantity int) error {
	if productID == "" {
		return ErrInvalidProductID
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity += quantity
		return nil
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity})
	return nil
}

// RemoveItem drops the line for productID and reports whether one existed.
func (c *Cart) RemoveItem(productID string) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// SetQuantity overwrites the quantity of an existing line. A non-positive
// quantity removes the line. It never creates a line and reports whether a
// line was touched.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = quantity
	return true
}

// Clear empties the cart and zeroes the total.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.TotalPrice = 0
}

// Item returns the line for productID, if any.
func (c *Cart) Item(productID string) (CartItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i], true
	}
	return CartItem{}, false
}

// Clone returns a deep copy whose Items can be changed without touching c.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}

func (c *Cart) indexOf(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
