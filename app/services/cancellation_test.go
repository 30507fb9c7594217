package services

import (
	"context"
	"testing"
	"time"

	"github.com/Rakhulsr/go-catalog/app/db/dbtest"
	"github.com/Rakhulsr/go-catalog/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCanceler struct {
	calls int
	err   error
}

func (r *recordingCanceler) CanCancel(order *models.Order, now time.Time) error {
	r.calls++
	return r.err
}

func TestDefaultOrderCanceler(t *testing.T) {
	now := time.Now()
	cases := []struct {
		status int
		ok     bool
	}{
		{models.OrderStatusPending, true},
		{models.OrderStatusProcessing, true},
		{models.OrderStatusShipped, false},
		{models.OrderStatusCompleted, false},
		{models.OrderStatusCancelled, false},
	}
	for _, tc := range cases {
		err := DefaultOrderCanceler{}.CanCancel(&models.Order{Code: "R-1", Status: tc.status}, now)
		if tc.ok {
			assert.NoError(t, err, "status %d", tc.status)
		} else {
			assert.ErrorIs(t, err, ErrInvalidState, "status %d", tc.status)
		}
	}
}

func TestCancellationWindowDelegatesInsideWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	next := &recordingCanceler{}
	c := ChainCancelers(next, WithCancellationWindow(time.Hour))

	err := c.CanCancel(&models.Order{Code: "R-1", PlacedAt: now.Add(-30 * time.Minute)}, now)
	assert.NoError(t, err)
	assert.Equal(t, 1, next.calls)

	err = c.CanCancel(&models.Order{Code: "R-2", PlacedAt: now.Add(-2 * time.Hour)}, now)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, next.calls, "late orders never reach the wrapped canceler")
}

func TestChainCancelersOrder(t *testing.T) {
	now := time.Now()
	var trail []string
	mark := func(name string) CancelerOverride {
		return func(next OrderCanceler) OrderCanceler {
			return cancelFunc(func(o *models.Order, at time.Time) error {
				trail = append(trail, name)
				return next.CanCancel(o, at)
			})
		}
	}

	c := ChainCancelers(DefaultOrderCanceler{}, mark("inner"), nil, mark("outer"))
	require.NoError(t, c.CanCancel(&models.Order{Status: models.OrderStatusPending}, now))
	assert.Equal(t, []string{"outer", "inner"}, trail)
}

type cancelFunc func(*models.Order, time.Time) error

func (f cancelFunc) CanCancel(o *models.Order, now time.Time) error { return f(o, now) }

func TestOrderServiceCancel(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	catalog := NewCatalogService(db, nil)
	f := newArmourFixture(t, catalog)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	placeOrder(t, db, "R-100", now.Add(-10*time.Minute), *f.product.Master())
	placeOrder(t, db, "R-200", now.Add(-48*time.Hour), *f.product.Master())

	svc := NewOrderService(db, ChainCancelers(DefaultOrderCanceler{}, WithCancellationWindow(24*time.Hour)))
	svc.now = func() time.Time { return now }

	order, err := svc.Cancel(ctx, "R-100")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	require.NotNil(t, order.CancelledAt)

	_, err = svc.Cancel(ctx, "R-100")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Cancel(ctx, "R-200")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Cancel(ctx, "R-404")
	assert.ErrorIs(t, err, ErrNotFound)
}
