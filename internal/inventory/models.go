package inventory

import "time"

type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	SKU               string    `json:"sku"`
	Quantity          int       `json:"quantity"`
	MinimumStockLevel int       `json:"minimumStockLevel"`
	IsLowStock        bool      `json:"isLowStock"` // derived, see stock.go
	LastUpdated       time.Time `json:"lastUpdated"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type OrderItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

type Order struct {
	ID         string      `json:"id"`
	Items      []OrderItem `json:"items"`
	Status     Status      `json:"status"`
	TotalItems int         `json:"totalItems"` // snapshot at creation
	CreatedBy  string      `json:"createdBy"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// LowStockAlert describes a product that just crossed into low stock.
type LowStockAlert struct {
	ProductID         string    `json:"productId"`
	Name              string    `json:"name"`
	SKU               string    `json:"sku"`
	Quantity          int       `json:"quantity"`
	MinimumStockLevel int       `json:"minimumStockLevel"`
	Needed            int       `json:"neededQuantity"`
	DetectedAt        time.Time `json:"detectedAt"`
}

func NewLowStockAlert(p Product, at time.Time) LowStockAlert {
	return LowStockAlert{
		ProductID:         p.ID,
		Name:              p.Name,
		SKU:               p.SKU,
		Quantity:          p.Quantity,
		MinimumStockLevel: p.MinimumStockLevel,
		Needed:            p.MinimumStockLevel - p.Quantity,
		DetectedAt:        at,
	}
}
