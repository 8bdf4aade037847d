package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/types"
)

type UserRepo interface {
  Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error)
  GetByAddress(ctx context.Context, tx *gorm.DB, address uuid.UUID) (*types.User, error)
  GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error)
  EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
  // AssignRole sets role/registered and the profile fields in one shot, but
  // only while the user's role is still unset. Returns false when the guard
  // did not match, i.e. a role was already assigned.
  AssignRole(ctx context.Context, tx *gorm.DB, address uuid.UUID, role types.Role, name, email, shippingAddr string) (bool, error)
  UpdateProfile(ctx context.Context, tx *gorm.DB, address uuid.UUID, name, email, shippingAddr string) error
}

type userRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
  repoLog := baseLog.With("repo", "UserRepo")
  return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }
  if err := transaction.WithContext(ctx).Create(user).Error; err != nil {
    return nil, err
  }
  return user, nil
}

func (ur *userRepo) GetByAddress(ctx context.Context, tx *gorm.DB, address uuid.UUID) (*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }
  var result types.User
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

func (ur *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }
  var result types.User
  if err := transaction.WithContext(ctx).
    Where("email = ?", email).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.User{}).
    Where("email = ?", email).
    Count(&count).Error; err != nil {
    return false, err
  }
  exists := count > 0
  return exists, nil
}

func (ur *userRepo) AssignRole(ctx context.Context, tx *gorm.DB, address uuid.UUID, role types.Role, name, email, shippingAddr string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }
  result := transaction.WithContext(ctx).
    Model(&types.User{}).
    Where("address = ? AND role = ?", address, types.RoleUnset).
    Updates(map[string]interface{}{
      "role":          role,
      "registered":    true,
      "name":          name,
      "email":         email,
      "shipping_addr": shippingAddr,
    })
  if result.Error != nil {
    return false, result.Error
  }
  return result.RowsAffected == 1, nil
}

func (ur *userRepo) UpdateProfile(ctx context.Context, tx *gorm.DB, address uuid.UUID, name, email, shippingAddr string) error {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }
  return transaction.WithContext(ctx).
    Model(&types.User{}).
    Where("address = ?", address).
    Updates(map[string]interface{}{
      "name":          name,
      "email":         email,
      "shipping_addr": shippingAddr,
    }).Error
}
