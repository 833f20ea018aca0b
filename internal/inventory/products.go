package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ProductInput struct {
	Name              string `json:"name" validate:"required"`
	SKU               string `json:"sku" validate:"required"`
	Quantity          *int   `json:"quantity" validate:"required,min=0"`
	MinimumStockLevel *int   `json:"minimumStockLevel" validate:"omitempty,min=0"`
}

// ProductPatch changes only the fields that are set. IsLowStock is never
// accepted from callers.
type ProductPatch struct {
	Name              *string `json:"name"`
	SKU               *string `json:"sku"`
	Quantity          *int    `json:"quantity" validate:"omitempty,min=0"`
	MinimumStockLevel *int    `json:"minimumStockLevel" validate:"omitempty,min=0"`
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	if err := validateStruct(in); err != nil {
		return Product{}, err
	}
	minimum := DefaultMinimumStockLevel
	if in.MinimumStockLevel != nil {
		minimum = *in.MinimumStockLevel
	}

	now := s.now()
	p := Product{
		ID:                uuid.NewString(),
		Name:              in.Name,
		SKU:               in.SKU,
		Quantity:          *in.Quantity,
		MinimumStockLevel: minimum,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	// new products start from an implicit "not low" state
	tr := Recompute(&p, now)
	if err := s.Products.InsertProduct(ctx, p); err != nil {
		return Product{}, err
	}
	s.afterCommit(p, tr)
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	if err := validateStruct(patch); err != nil {
		return Product{}, err
	}
	if patch.Name != nil {
		v := strings.TrimSpace(*patch.Name)
		if v == "" {
			return Product{}, validationf("name is required")
		}
		patch.Name = &v
	}
	if patch.SKU != nil {
		v := strings.TrimSpace(*patch.SKU)
		if v == "" {
			return Product{}, validationf("sku is required")
		}
		patch.SKU = &v
	}

	unlock := s.locks.lock(id)
	defer unlock()

	p, err := s.primary().GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.SKU != nil {
		p.SKU = *patch.SKU
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.MinimumStockLevel != nil {
		p.MinimumStockLevel = *patch.MinimumStockLevel
	}

	now := s.now()
	tr := Recompute(&p, now)
	p.UpdatedAt = now
	if err := s.Products.UpdateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	s.afterCommit(p, tr)
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()
	if err := s.Products.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}
