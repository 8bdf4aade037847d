package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/types"
)

type MarketRepo interface {
  // Ensure creates the singleton market_state row when missing. The listing
  // fee is only applied on first creation; an existing row keeps its fee.
  Ensure(ctx context.Context, tx *gorm.DB, listingFee int64) (*types.MarketState, error)
  Get(ctx context.Context, tx *gorm.DB) (*types.MarketState, error)
  // ClaimSellerSlot sets the seller address, guarded on the slot still being
  // empty. Returns false when a seller already exists.
  ClaimSellerSlot(ctx context.Context, tx *gorm.DB, seller uuid.UUID) (bool, error)
  CreditEscrow(ctx context.Context, tx *gorm.DB, amount int64) error
  // DebitEscrow subtracts from the held escrow balance, guarded non-negative.
  DebitEscrow(ctx context.Context, tx *gorm.DB, amount int64) (bool, error)
  CreditFees(ctx context.Context, tx *gorm.DB, amount int64) error
}

type marketRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMarketRepo(db *gorm.DB, baseLog *logger.Logger) MarketRepo {
  repoLog := baseLog.With("repo", "MarketRepo")
  return &marketRepo{db: db, log: repoLog}
}

func (mr *marketRepo) Ensure(ctx context.Context, tx *gorm.DB, listingFee int64) (*types.MarketState, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  existing, err := mr.Get(ctx, transaction)
  if err != nil {
    return nil, err
  }
  if existing != nil {
    return existing, nil
  }
  state := &types.MarketState{ID: types.MarketStateID, ListingFee: listingFee}
  if err := transaction.WithContext(ctx).Create(state).Error; err != nil {
    return nil, err
  }
  return state, nil
}

func (mr *marketRepo) Get(ctx context.Context, tx *gorm.DB) (*types.MarketState, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var result types.MarketState
  if err := transaction.WithContext(ctx).
    Where("id = ?", types.MarketStateID).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (mr *marketRepo) ClaimSellerSlot(ctx context.Context, tx *gorm.DB, seller uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  result := transaction.WithContext(ctx).
    Model(&types.MarketState{}).
    Where("id = ? AND seller_address IS NULL", types.MarketStateID).
    Update("seller_address", seller)
  if result.Error != nil {
    return false, result.Error
  }
  return result.RowsAffected == 1, nil
}

func (mr *marketRepo) CreditEscrow(ctx context.Context, tx *gorm.DB, amount int64) error {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  result := transaction.WithContext(ctx).
    Model(&types.MarketState{}).
    Where("id = ?", types.MarketStateID).
    Update("escrow_balance", gorm.Expr("escrow_balance + ?", amount))
  if result.Error != nil {
    return result.Error
  }
  if result.RowsAffected != 1 {
    return gorm.ErrRecordNotFound
  }
  return nil
}

func (mr *marketRepo) DebitEscrow(ctx context.Context, tx *gorm.DB, amount int64) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  result := transaction.WithContext(ctx).
    Model(&types.MarketState{}).
    Where("id = ? AND escrow_balance >= ?", types.MarketStateID, amount).
    Update("escrow_balance", gorm.Expr("escrow_balance - ?", amount))
  if result.Error != nil {
    return false, result.Error
  }
  return result.RowsAffected == 1, nil
}

func (mr *marketRepo) CreditFees(ctx context.Context, tx *gorm.DB, amount int64) error {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  result := transaction.WithContext(ctx).
    Model(&types.MarketState{}).
    Where("id = ?", types.MarketStateID).
    Update("fees_collected", gorm.Expr("fees_collected + ?", amount))
  if result.Error != nil {
    return result.Error
  }
  if result.RowsAffected != 1 {
    return gorm.ErrRecordNotFound
  }
  return nil
}
