package types

import (
  "time"
  "gorm.io/datatypes"
)

// Product ids are sequential and stable. A product is never deleted; only its
// fields mutate, and stock moves down through purchases and up through seller
// updates.
type Product struct {
  ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
  Name          string          `gorm:"column:name;not null" json:"name"`
  Price         int64           `gorm:"column:price;not null" json:"price"`
  Stock         int64           `gorm:"column:stock;not null" json:"stock"`
  Attributes    datatypes.JSON  `gorm:"column:attributes" json:"attributes,omitempty"`
  CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
  UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string {
  return "product"
}
