package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Rakhulsr/go-catalog/app/models"
	"github.com/Rakhulsr/go-catalog/app/repositories"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type OrderService struct {
	db       *gorm.DB
	canceler OrderCanceler
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, canceler OrderCanceler) *OrderService {
	if canceler == nil {
		canceler = DefaultOrderCanceler{}
	}
	return &OrderService{db: db, canceler: canceler, now: time.Now}
}

func (s *OrderService) Cancel(ctx context.Context, code string) (*models.Order, error) {
	var orderID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repositories.NewOrderRepository(tx)
		order, err := orders.FindByCode(ctx, code)
		if err != nil {
			return storageErr("load order", err)
		}
		if order == nil {
			return fmt.Errorf("%w: order %q", ErrNotFound, code)
		}
		now := s.now().UTC()
		if err := s.canceler.CanCancel(order, now); err != nil {
			return err
		}
		orderID = order.ID
		return storageErr("cancel order", orders.MarkCancelled(ctx, order.ID, now))
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("order", code).Msg("order cancelled")
	order, err := repositories.NewOrderRepository(s.db).GetByID(ctx, orderID)
	if err != nil {
		return nil, storageErr("load order", err)
	}
	return order, nil
}
