package types

import (
  "time"
  "github.com/google/uuid"
)

// MarketStateID is the primary key of the single market_state row.
const MarketStateID uint = 1

// MarketState is the singleton ledger row of the marketplace. SellerAddress is
// set at most once for the lifetime of the market. EscrowBalance equals the
// sum of the amounts of all open orders at every commit point.
type MarketState struct {
  ID              uint        `gorm:"primaryKey" json:"id"`
  SellerAddress   *uuid.UUID  `gorm:"type:uuid;uniqueIndex;column:seller_address" json:"seller_address,omitempty"`
  ListingFee      int64       `gorm:"column:listing_fee;not null" json:"listing_fee"`
  EscrowBalance   int64       `gorm:"column:escrow_balance;not null;default:0" json:"escrow_balance"`
  FeesCollected   int64       `gorm:"column:fees_collected;not null;default:0" json:"fees_collected"`
  CreatedAt       time.Time   `gorm:"not null" json:"created_at"`
  UpdatedAt       time.Time   `gorm:"not null" json:"updated_at"`
}

func (MarketState) TableName() string {
  return "market_state"
}

// HasSeller reports whether the singleton seller slot is taken.
func (ms *MarketState) HasSeller() bool {
  return ms != nil && ms.SellerAddress != nil
}

// IsSeller reports whether addr holds the seller slot.
func (ms *MarketState) IsSeller(addr uuid.UUID) bool {
  return ms.HasSeller() && *ms.SellerAddress == addr
}
