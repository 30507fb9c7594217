package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusPending    = 1
	OrderStatusProcessing = 2
	OrderStatusShipped    = 3
	OrderStatusCompleted  = 4
	OrderStatusCancelled  = 5
	OrderStatusRefunded   = 6
	OrderStatusFailed     = 7
)

// Order is the slice of an order the catalog needs: which variants it
// references and whether it may still be cancelled.
type Order struct {
	ID          string    `gorm:"size:36;not null;uniqueIndex;primary_key"`
	Code        string    `gorm:"type:varchar(255);unique;not null" json:"code"`
	PlacedAt    time.Time `gorm:"not null" json:"placed_at"`
	Status      int       `gorm:"default:1"`
	CancelledAt *time.Time
	OrderItems  []OrderItem
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}
