package domain

import "time"

type Cart struct {
	ID        string     `json:"-" bson:"_id,omitempty"`
	UserID    string     `json:"user_id" bson:"user_id"`
	Items     []CartItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

type CartItem struct {
	ProductID string    `json:"product_id" bson:"product_id"`
	Name      string    `json:"name" bson:"name"`
	UnitPrice float64   `json:"unit_price" bson:"unit_price"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	ImageRef  string    `json:"image_ref" bson:"image_ref"`
	AddedAt   time.Time `json:"added_at" bson:"added_at"`
}

// Total is derived from the items on every call, never stored.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// ItemCount is the sum of quantities across all items.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Add merges the item into the cart: an existing entry for the same product
// has its quantity incremented, otherwise the item is appended.
func (c *Cart) Add(item CartItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			c.Items[i].AddedAt = item.AddedAt
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity overwrites the quantity for the given product. A quantity of
// zero or less removes the entry entirely. Returns false when quantity > 0
// and the product is not in the cart.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	if quantity <= 0 {
		c.Remove(productID)
		return true
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Remove deletes the entry for the given product. Removing an absent product
// is a no-op, not an error.
func (c *Cart) Remove(productID string) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart. Idempotent.
func (c *Cart) Clear() {
	c.Items = nil
}

// Clone returns a deep copy so callers can hand carts across goroutines
// without sharing the items slice.
func (c *Cart) Clone() *Cart {
	clone := *c
	if c.Items != nil {
		clone.Items = make([]CartItem, len(c.Items))
		copy(clone.Items, c.Items)
	}
	return &clone
}
