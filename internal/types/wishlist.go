package types

import (
  "time"
  "github.com/google/uuid"
)

type WishlistEntry struct {
  ID            uint        `gorm:"primaryKey;autoIncrement" json:"id"`
  BuyerAddress  uuid.UUID   `gorm:"type:uuid;not null;column:buyer_address;uniqueIndex:idx_wishlist_buyer_product" json:"buyer_address"`
  ProductID     uint        `gorm:"not null;column:product_id;uniqueIndex:idx_wishlist_buyer_product" json:"product_id"`
  CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
}

func (WishlistEntry) TableName() string {
  return "wishlist_entry"
}
