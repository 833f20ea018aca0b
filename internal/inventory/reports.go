package inventory

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
)

type Summary struct {
	TotalProducts    int            `json:"totalProducts"`
	LowStockProducts int            `json:"lowStockProducts"`
	TotalOrders      int            `json:"totalOrders"`
	OrdersByStatus   map[Status]int `json:"ordersByStatus"`
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	ps, err := s.Products.ListProducts(ctx)
	if err != nil {
		return Summary{}, err
	}
	orders, err := s.Orders.ListOrders(ctx)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{
		TotalProducts:  len(ps),
		TotalOrders:    len(orders),
		OrdersByStatus: make(map[Status]int, len(validStatus)),
	}
	for _, st := range validStatus {
		out.OrdersByStatus[st] = 0
	}
	for _, p := range ps {
		if p.IsLowStock {
			out.LowStockProducts++
		}
	}
	for _, o := range orders {
		out.OrdersByStatus[o.Status]++
	}
	return out, nil
}

func WriteProductsCSV(w io.Writer, ps []Product) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Name", "SKU", "Quantity", "Minimum Stock Level", "Low Stock"})
	for _, p := range ps {
		_ = cw.Write([]string{
			p.Name,
			p.SKU,
			strconv.Itoa(p.Quantity),
			strconv.Itoa(p.MinimumStockLevel),
			strconv.FormatBool(p.IsLowStock),
		})
	}
	cw.Flush()
	return cw.Error()
}

func WriteOrdersCSV(w io.Writer, orders []Order) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Order ID", "Status", "Total Items", "Created By", "Date"})
	for _, o := range orders {
		_ = cw.Write([]string{
			o.ID,
			string(o.Status),
			strconv.Itoa(o.TotalItems),
			o.CreatedBy,
			o.CreatedAt.Format("2006-01-02"),
		})
	}
	cw.Flush()
	return cw.Error()
}
