package services

import (
	"fmt"
	"time"

	"github.com/Rakhulsr/go-catalog/app/models"
)

// OrderCanceler decides whether an order may be cancelled at now. Business
// rules wrap a default canceler and call it for the cases they do not decide.
type OrderCanceler interface {
	CanCancel(order *models.Order, now time.Time) error
}

// DefaultOrderCanceler allows cancelling anything that has not shipped.
type DefaultOrderCanceler struct{}

func (DefaultOrderCanceler) CanCancel(order *models.Order, now time.Time) error {
	switch order.Status {
	case models.OrderStatusPending, models.OrderStatusProcessing:
		return nil
	case models.OrderStatusCancelled:
		return fmt.Errorf("%w: order %s is already cancelled", ErrInvalidState, order.Code)
	default:
		return fmt.Errorf("%w: order %s can no longer be cancelled", ErrInvalidState, order.Code)
	}
}

// CancellationWindow refuses cancellation once Window has passed since the
// order was placed and defers to Next otherwise.
type CancellationWindow struct {
	Window time.Duration
	Next   OrderCanceler
}

func (c CancellationWindow) CanCancel(order *models.Order, now time.Time) error {
	if now.Sub(order.PlacedAt) > c.Window {
		return fmt.Errorf("%w: order %s was placed more than %s ago", ErrInvalidState, order.Code, c.Window)
	}
	return c.Next.CanCancel(order, now)
}

// CancelerOverride wraps a canceler with a business rule.
type CancelerOverride func(next OrderCanceler) OrderCanceler

func WithCancellationWindow(window time.Duration) CancelerOverride {
	return func(next OrderCanceler) OrderCanceler {
		return CancellationWindow{Window: window, Next: next}
	}
}

// ChainCancelers applies overrides in order, so the last one is consulted
// first.
func ChainCancelers(base OrderCanceler, overrides ...CancelerOverride) OrderCanceler {
	c := base
	for _, override := range overrides {
		if override != nil {
			c = override(c)
		}
	}
	return c
}
