package types

import (
  "time"
  "github.com/google/uuid"
)

// Account is the spendable balance of a user. Escrowed funds live on the
// market state, not here; they return to an account only when an order
// reaches a terminal status.
type Account struct {
  Address     uuid.UUID   `gorm:"type:uuid;primaryKey;column:address" json:"address"`
  Balance     int64       `gorm:"column:balance;not null;default:0" json:"balance"`
  CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
  UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`
}

func (Account) TableName() string {
  return "account"
}
