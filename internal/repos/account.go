package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/types"
)

type AccountRepo interface {
  Create(ctx context.Context, tx *gorm.DB, account *types.Account) (*types.Account, error)
  GetByAddress(ctx context.Context, tx *gorm.DB, address uuid.UUID) (*types.Account, error)
  Credit(ctx context.Context, tx *gorm.DB, address uuid.UUID, amount int64) error
  // Debit subtracts amount, guarded so the balance can never go negative.
  // Returns false when the account held less than amount.
  Debit(ctx context.Context, tx *gorm.DB, address uuid.UUID, amount int64) (bool, error)
}

type accountRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
  repoLog := baseLog.With("repo", "AccountRepo")
  return &accountRepo{db: db, log: repoLog}
}

func (ar *accountRepo) Create(ctx context.Context, tx *gorm.DB, account *types.Account) (*types.Account, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }
  if err := transaction.WithContext(ctx).Create(account).Error; err != nil {
    return nil, err
  }
  return account, nil
}

func (ar *accountRepo) GetByAddress(ctx context.Context, tx *gorm.DB, address uuid.UUID) (*types.Account, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }
  var result types.Account
  if err := transaction.WithContext(ctx).
    Where("address = ?", address).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (ar *accountRepo) Credit(ctx context.Context, tx *gorm.DB, address uuid.UUID, amount int64) error {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }
  result := transaction.WithContext(ctx).
    Model(&types.Account{}).
    Where("address = ?", address).
    Update("balance", gorm.Expr("balance + ?", amount))
  if result.Error != nil {
    return result.Error
  }
  if result.RowsAffected != 1 {
    return gorm.ErrRecordNotFound
  }
  return nil
}

func (ar *accountRepo) Debit(ctx context.Context, tx *gorm.DB, address uuid.UUID, amount int64) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }
  result := transaction.WithContext(ctx).
    Model(&types.Account{}).
    Where("address = ? AND balance >= ?", address, amount).
    Update("balance", gorm.Expr("balance - ?", amount))
  if result.Error != nil {
    return false, result.Error
  }
  return result.RowsAffected == 1, nil
}
