package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/types"
)

type UserTokenRepo interface {
  Create(ctx context.Context, tx *gorm.DB, token *types.UserToken) (*types.UserToken, error)
  GetByAccessToken(ctx context.Context, tx *gorm.DB, accessToken string) (*types.UserToken, error)
  GetByRefreshToken(ctx context.Context, tx *gorm.DB, refreshToken string) (*types.UserToken, error)
  DeleteByUserAddress(ctx context.Context, tx *gorm.DB, address uuid.UUID) error
}

type userTokenRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
  repoLog := baseLog.With("repo", "UserTokenRepo")
  return &userTokenRepo{db: db, log: repoLog}
}

func (tr *userTokenRepo) Create(ctx context.Context, tx *gorm.DB, token *types.UserToken) (*types.UserToken, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  if err := transaction.WithContext(ctx).Create(token).Error; err != nil {
    return nil, err
  }
  return token, nil
}

func (tr *userTokenRepo) GetByAccessToken(ctx context.Context, tx *gorm.DB, accessToken string) (*types.UserToken, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var result types.UserToken
  if err := transaction.WithContext(ctx).
    Where("access_token = ?", accessToken).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (tr *userTokenRepo) GetByRefreshToken(ctx context.Context, tx *gorm.DB, refreshToken string) (*types.UserToken, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var result types.UserToken
  if err := transaction.WithContext(ctx).
    Where("refresh_token = ?", refreshToken).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (tr *userTokenRepo) DeleteByUserAddress(ctx context.Context, tx *gorm.DB, address uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  return transaction.WithContext(ctx).
    Where("user_address = ?", address).
    Delete(&types.UserToken{}).Error
}
