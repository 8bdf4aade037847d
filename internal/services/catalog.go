package services

import (
  "context"
  "encoding/json"
  "fmt"
  "strings"
  "time"
  "gorm.io/gorm"
  "gorm.io/datatypes"
  "golang.org/x/sync/singleflight"
  "github.com/google/uuid"
  "github.com/dkoval/shopledger-backend/internal/apierr"
  "github.com/dkoval/shopledger-backend/internal/clients/redis"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/repos"
  "github.com/dkoval/shopledger-backend/internal/types"
)

const (
  availableCacheKey = "catalog:available"
  availableCacheTTL = 30 * time.Second
)

// CatalogService is the seller-owned inventory. Only the registered seller
// mutates it; reads are open to any caller.
type CatalogService interface {
  AddProduct(ctx context.Context, caller uuid.UUID, name string, price, stock int64, attributes datatypes.JSON) (*types.Product, error)
  UpdateProduct(ctx context.Context, caller uuid.UUID, id uint, name string, price, stock int64) (*types.Product, error)
  ListAvailable(ctx context.Context) ([]*types.Product, error)
  GetByID(ctx context.Context, id uint) (*types.Product, error)
}

type catalogService struct {
  db           *gorm.DB
  log          *logger.Logger
  productRepo  repos.ProductRepo
  userRepo     repos.UserRepo
  cache        redis.Cache
  group        singleflight.Group
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, productRepo repos.ProductRepo, userRepo repos.UserRepo, cache redis.Cache) CatalogService {
  serviceLog := log.With("service", "CatalogService")
  return &catalogService{
    db:          db,
    log:         serviceLog,
    productRepo: productRepo,
    userRepo:    userRepo,
    cache:       cache,
  }
}

func (cs *catalogService) AddProduct(ctx context.Context, caller uuid.UUID, name string, price, stock int64, attributes datatypes.JSON) (*types.Product, error) {
  if err := validateProductInput(name, price, stock); err != nil {
    return nil, err
  }
  product := &types.Product{
    Name:       strings.TrimSpace(name),
    Price:      price,
    Stock:      stock,
    Attributes: attributes,
  }
  if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := cs.requireSeller(ctx, tx, caller); err != nil {
      return err
    }
    _, err := cs.productRepo.Create(ctx, tx, product)
    return err
  }); err != nil {
    return nil, err
  }
  invalidateAvailable(ctx, cs.log, cs.cache)
  cs.log.Info("Product added", "id", product.ID, "name", product.Name)
  return product, nil
}

func (cs *catalogService) UpdateProduct(ctx context.Context, caller uuid.UUID, id uint, name string, price, stock int64) (*types.Product, error) {
  if err := validateProductInput(name, price, stock); err != nil {
    return nil, err
  }
  var out *types.Product
  if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := cs.requireSeller(ctx, tx, caller); err != nil {
      return err
    }
    ok, err := cs.productRepo.Update(ctx, tx, id, strings.TrimSpace(name), price, stock)
    if err != nil {
      return fmt.Errorf("Failed to update product: %w", err)
    }
    if !ok {
      return apierr.NotFound("no product with id %d", id)
    }
    out, err = cs.productRepo.GetByID(ctx, tx, id)
    return err
  }); err != nil {
    return nil, err
  }
  invalidateAvailable(ctx, cs.log, cs.cache)
  return out, nil
}

func (cs *catalogService) ListAvailable(ctx context.Context) ([]*types.Product, error) {
  if cs.cache == nil {
    return cs.productRepo.ListAvailable(ctx, nil)
  }
  if raw, hit, err := cs.cache.Get(ctx, availableCacheKey); err != nil {
    cs.log.Warn("Cache read failed, falling back to DB", "error", err)
  } else if hit {
    var cached []*types.Product
    if err := json.Unmarshal(raw, &cached); err == nil {
      return cached, nil
    }
    cs.log.Warn("Cache payload unreadable, falling back to DB")
  }

  result, err, _ := cs.group.Do(availableCacheKey, func() (interface{}, error) {
    products, err := cs.productRepo.ListAvailable(ctx, nil)
    if err != nil {
      return nil, err
    }
    if raw, mErr := json.Marshal(products); mErr == nil {
      if sErr := cs.cache.Set(ctx, availableCacheKey, raw, availableCacheTTL); sErr != nil {
        cs.log.Warn("Cache write failed", "error", sErr)
      }
    }
    return products, nil
  })
  if err != nil {
    return nil, err
  }
  return result.([]*types.Product), nil
}

func (cs *catalogService) GetByID(ctx context.Context, id uint) (*types.Product, error) {
  product, err := cs.productRepo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, fmt.Errorf("Failed to load product: %w", err)
  }
  if product == nil {
    return nil, apierr.NotFound("no product with id %d", id)
  }
  return product, nil
}

func (cs *catalogService) requireSeller(ctx context.Context, tx *gorm.DB, caller uuid.UUID) error {
  user, err := cs.userRepo.GetByAddress(ctx, tx, caller)
  if err != nil {
    return fmt.Errorf("Failed to load caller: %w", err)
  }
  if user == nil || user.Role != types.RoleSeller {
    return apierr.Unauthorized("only the registered seller may modify the catalog")
  }
  return nil
}

// invalidateAvailable drops the cached availability listing. Every write that
// can change which products have stock must call this after commit, including
// the ledger's stock debit on purchase.
func invalidateAvailable(ctx context.Context, log *logger.Logger, cache redis.Cache) {
  if cache == nil {
    return
  }
  if err := cache.Del(ctx, availableCacheKey); err != nil {
    log.Warn("Cache invalidation failed", "error", err)
  }
}

func validateProductInput(name string, price, stock int64) error {
  if strings.TrimSpace(name) == "" {
    return apierr.InvalidArgument("a product name is required")
  }
  if price < 0 {
    return apierr.InvalidArgument("price must be non-negative, got %d", price)
  }
  if stock < 0 {
    return apierr.InvalidArgument("stock must be non-negative, got %d", stock)
  }
  return nil
}
