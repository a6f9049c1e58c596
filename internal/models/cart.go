package models

// CartItem represents one distinct product inside a cart. Category and
// Price are snapshots taken when the product is first added, so historical
// totals stay stable when the catalog changes later.
type CartItem struct {
	ID       uint    `json:"-" gorm:"primaryKey"`
	CartID   uint    `json:"-" gorm:"index;uniqueIndex:idx_cart_model"`
	Model    string  `json:"model" gorm:"type:varchar(100);uniqueIndex:idx_cart_model"`
	Quantity int     `json:"quantity" validate:"gte=1"`
	Category string  `json:"category" gorm:"type:varchar(20)"`
	Price    float64 `json:"price"`
}

// Cart represents a customer's cart. At most one unpaid cart exists per
// customer at any time; checkout marks it paid, which is terminal, and the
// next add-to-cart creates a fresh one.
//
// PaymentDate is empty while the cart is unpaid and YYYY-MM-DD once paid.
// Total is derived from the line items at read time, never stored.
type Cart struct {
	ID          uint       `json:"-" gorm:"primaryKey"`
	Customer    string     `json:"customer" gorm:"type:varchar(100);index"`
	Paid        bool       `json:"paid"`
	PaymentDate string     `json:"paymentDate" gorm:"type:varchar(10)"`
	Total       float64    `json:"total" gorm:"-"`
	Items       []CartItem `json:"products" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// ComputeTotal recalculates the derived total from the line items.
func (c *Cart) ComputeTotal() {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	c.Total = total
}

// NewEmptyCart returns the synthetic empty, unpaid cart served to customers
// who have never added anything.
func NewEmptyCart(customer string) *Cart {
	return &Cart{
		Customer:    customer,
		Paid:        false,
		PaymentDate: "",
		Total:       0,
		Items:       []CartItem{},
	}
}
