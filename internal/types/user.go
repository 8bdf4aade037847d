package types

import (
  "time"
  "github.com/google/uuid"
)

// Role is the marketplace role of a user. A role is assigned exactly once at
// registration and never changes afterwards.
type Role string

const (
  RoleUnset   Role = ""
  RoleBuyer   Role = "buyer"
  RoleSeller  Role = "seller"
)

type User struct {
  Address       uuid.UUID   `gorm:"type:uuid;primaryKey;column:address" json:"address"`
  Email         string      `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password      string      `gorm:"not null;column:password" json:"-"`
  Name          string      `gorm:"column:name" json:"name"`
  ShippingAddr  string      `gorm:"column:shipping_addr" json:"shipping_addr"`
  Role          Role        `gorm:"column:role;not null;default:''" json:"role"`
  Registered    bool        `gorm:"column:registered;not null;default:false" json:"registered"`
  CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
  UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
  return "user"
}
