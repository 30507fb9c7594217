package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OptionType is one axis a product varies along, e.g. size or colour.
type OptionType struct {
	ID           string        `gorm:"size:36;not null;uniqueIndex;primary_key"`
	Name         string        `gorm:"size:100;not null;uniqueIndex"`
	Presentation string        `gorm:"size:100;not null"`
	Position     int           `gorm:"not null;default:0"`
	OptionValues []OptionValue `gorm:"foreignKey:OptionTypeID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (o *OptionType) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}

// OptionValue is a single choice on an OptionType. Position and Name are
// both unique within the owning type.
type OptionValue struct {
	ID           string      `gorm:"size:36;not null;uniqueIndex;primary_key"`
	OptionTypeID string      `gorm:"size:36;not null;uniqueIndex:idx_option_values_type_position;uniqueIndex:idx_option_values_type_name"`
	OptionType   *OptionType `gorm:"foreignKey:OptionTypeID"`
	Name         string      `gorm:"size:100;not null;uniqueIndex:idx_option_values_type_name"`
	Presentation string      `gorm:"size:100;not null"`
	Position     int         `gorm:"not null;uniqueIndex:idx_option_values_type_position"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (v *OptionValue) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}
