package types

import (
  "time"
  "github.com/google/uuid"
)

// OrderStatus moves along exactly two paths:
// created -> completed, and created -> pending_approval -> returned.
// completed and returned are absorbing.
type OrderStatus string

const (
  StatusCreated          OrderStatus = "created"
  StatusCompleted        OrderStatus = "completed"
  StatusPendingApproval  OrderStatus = "pending_approval"
  StatusReturned         OrderStatus = "returned"
)

type Order struct {
  ID            uint          `gorm:"primaryKey;autoIncrement" json:"id"`
  BuyerAddress  uuid.UUID     `gorm:"type:uuid;index;not null;column:buyer_address" json:"buyer_address"`
  ProductID     uint          `gorm:"index;not null;column:product_id" json:"product_id"`
  Product       *Product      `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
  Quantity      int64         `gorm:"column:quantity;not null" json:"quantity"`
  Amount        int64         `gorm:"column:amount;not null" json:"amount"`
  Status        OrderStatus   `gorm:"column:status;not null;index" json:"status"`
  CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
  UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
}

func (Order) TableName() string {
  return "order"
}

// Open reports whether the escrowed amount of the order is still held by the
// ledger.
func (o *Order) Open() bool {
  return o.Status == StatusCreated || o.Status == StatusPendingApproval
}
