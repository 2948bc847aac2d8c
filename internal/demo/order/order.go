// Package order holds the order sample services. OrderService stores items
// through a Repository, which may be a proxy of OrderRepository.
package order

import (
	"context"
	"errors"
)

// ErrIllegalState is returned when an item cannot be stored
var ErrIllegalState = errors.New("illegal state: exception occurred")

// FailingItem is the item id OrderRepository refuses
const FailingItem = "ex"

// Repository stores order items
type Repository interface {
	Save(ctx context.Context, itemID string) (string, error)
}

// Service places orders
type Service interface {
	OrderItem(ctx context.Context, itemID string) error
}

type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) Save(ctx context.Context, itemID string) (string, error) {
	if itemID == FailingItem {
		return "", ErrIllegalState
	}
	return "ok", nil
}

type OrderService struct {
	repository Repository
}

func NewOrderService(repository Repository) *OrderService {
	return &OrderService{repository: repository}
}

func (s *OrderService) OrderItem(ctx context.Context, itemID string) error {
	_, err := s.repository.Save(ctx, itemID)
	return err
}
