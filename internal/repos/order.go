package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/types"
)

type OrderRepo interface {
  Create(ctx context.Context, tx *gorm.DB, order *types.Order) (*types.Order, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Order, error)
  ListByBuyer(ctx context.Context, tx *gorm.DB, buyer uuid.UUID) ([]*types.Order, error)
  ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Order, error)
  ListByStatus(ctx context.Context, tx *gorm.DB, status types.OrderStatus) ([]*types.Order, error)
  // Transition flips the order status from exactly `from` to `to`. Returns
  // false when the order was not in `from`, which callers treat as an invalid
  // state transition. The guard is what makes a double fund release
  // impossible: funds only move when the flip reports one affected row.
  Transition(ctx context.Context, tx *gorm.DB, id uint, from, to types.OrderStatus) (bool, error)
}

type orderRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
  repoLog := baseLog.With("repo", "OrderRepo")
  return &orderRepo{db: db, log: repoLog}
}

func (or *orderRepo) Create(ctx context.Context, tx *gorm.DB, order *types.Order) (*types.Order, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }
  if err := transaction.WithContext(ctx).Create(order).Error; err != nil {
    return nil, err
  }
  return order, nil
}

func (or *orderRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Order, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }
  var result types.Order
  if err := transaction.WithContext(ctx).
    Where("id = ?", id).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (or *orderRepo) ListByBuyer(ctx context.Context, tx *gorm.DB, buyer uuid.UUID) ([]*types.Order, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }
  var results []*types.Order
  if err := transaction.WithContext(ctx).
    Where("buyer_address = ?", buyer).
    Order("id ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (or *orderRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Order, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }
  var results []*types.Order
  if err := transaction.WithContext(ctx).
    Order("id ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (or *orderRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status types.OrderStatus) ([]*types.Order, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }
  var results []*types.Order
  if err := transaction.WithContext(ctx).
    Where("status = ?", status).
    Order("id ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (or *orderRepo) Transition(ctx context.Context, tx *gorm.DB, id uint, from, to types.OrderStatus) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }
  result := transaction.WithContext(ctx).
    Model(&types.Order{}).
    Where("id = ? AND status = ?", id, from).
    Update("status", to)
  if result.Error != nil {
    return false, result.Error
  }
  return result.RowsAffected == 1, nil
}
