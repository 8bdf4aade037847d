package repos

import (
  "context"
  "errors"
  "gorm.io/gorm"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/types"
)

type ProductRepo interface {
  Create(ctx context.Context, tx *gorm.DB, product *types.Product) (*types.Product, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Product, error)
  ListAvailable(ctx context.Context, tx *gorm.DB) ([]*types.Product, error)
  Update(ctx context.Context, tx *gorm.DB, id uint, name string, price, stock int64) (bool, error)
  // DebitStock decrements stock by quantity, guarded so stock can never go
  // negative. Returns false when the product had less stock than quantity.
  DebitStock(ctx context.Context, tx *gorm.DB, id uint, quantity int64) (bool, error)
}

type productRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
  repoLog := baseLog.With("repo", "ProductRepo")
  return &productRepo{db: db, log: repoLog}
}

func (pr *productRepo) Create(ctx context.Context, tx *gorm.DB, product *types.Product) (*types.Product, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  if err := transaction.WithContext(ctx).Create(product).Error; err != nil {
    return nil, err
  }
  return product, nil
}

func (pr *productRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Product, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var result types.Product
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

func (pr *productRepo) ListAvailable(ctx context.Context, tx *gorm.DB) ([]*types.Product, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.Product
  if err := transaction.WithContext(ctx).
    Where("stock > 0").
    Order("id ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *productRepo) Update(ctx context.Context, tx *gorm.DB, id uint, name string, price, stock int64) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  result := transaction.WithContext(ctx).
    Model(&types.Product{}).
    Where("id = ?", id).
    Updates(map[string]interface{}{
      "name":  name,
      "price": price,
      "stock": stock,
    })
  if result.Error != nil {
    return false, result.Error
  }
  return result.RowsAffected == 1, nil
}

func (pr *productRepo) DebitStock(ctx context.Context, tx *gorm.DB, id uint, quantity int64) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  result := transaction.WithContext(ctx).
    Model(&types.Product{}).
    Where("id = ? AND stock >= ?", id, quantity).
    Update("stock", gorm.Expr("stock - ?", quantity))
  if result.Error != nil {
    return false, result.Error
  }
  return result.RowsAffected == 1, nil
}
