package models

import "time"

// Product categories accepted by the catalog.
const (
	CategorySmartphone = "Smartphone"
	CategoryLaptop     = "Laptop"
	CategoryAppliance  = "Appliance"
)

// Product represents a catalog entry. The model string is the natural key;
// quantity is the stock currently available for sale.
type Product struct {
	Model        string  `json:"model" gorm:"primaryKey;type:varchar(100)" validate:"required,min=1,max=100"`
	Category     string  `json:"category" gorm:"type:varchar(20)" validate:"required,oneof=Smartphone Laptop Appliance"`
	SellingPrice float64 `json:"sellingPrice" validate:"required,gt=0"`
	Quantity     int     `json:"quantity" validate:"gte=0"`
	ArrivalDate  string  `json:"arrivalDate" gorm:"type:varchar(10)" validate:"omitempty,datetime=2006-01-02"`
	Details      string  `json:"details" validate:"omitempty,max=500"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
