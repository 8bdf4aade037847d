package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/types"
)

type WishlistRepo interface {
  // Add inserts the (buyer, product) pair; adding an already-present pair is
  // a no-op.
  Add(ctx context.Context, tx *gorm.DB, buyer uuid.UUID, productID uint) error
  // Remove deletes the pair; removing an absent pair is a no-op.
  Remove(ctx context.Context, tx *gorm.DB, buyer uuid.UUID, productID uint) error
  ListByBuyer(ctx context.Context, tx *gorm.DB, buyer uuid.UUID) ([]*types.WishlistEntry, error)
}

type wishlistRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewWishlistRepo(db *gorm.DB, baseLog *logger.Logger) WishlistRepo {
  repoLog := baseLog.With("repo", "WishlistRepo")
  return &wishlistRepo{db: db, log: repoLog}
}

func (wr *wishlistRepo) Add(ctx context.Context, tx *gorm.DB, buyer uuid.UUID, productID uint) error {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  entry := &types.WishlistEntry{BuyerAddress: buyer, ProductID: productID}
  return transaction.WithContext(ctx).
    Clauses(clause.OnConflict{DoNothing: true}).
    Create(entry).Error
}

func (wr *wishlistRepo) Remove(ctx context.Context, tx *gorm.DB, buyer uuid.UUID, productID uint) error {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  return transaction.WithContext(ctx).
    Where("buyer_address = ? AND product_id = ?", buyer, productID).
    Delete(&types.WishlistEntry{}).Error
}

func (wr *wishlistRepo) ListByBuyer(ctx context.Context, tx *gorm.DB, buyer uuid.UUID) ([]*types.WishlistEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  var results []*types.WishlistEntry
  if err := transaction.WithContext(ctx).
    Where("buyer_address = ?", buyer).
    Order("id ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
