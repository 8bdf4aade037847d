package services

import (
  "context"
  "fmt"
  "gorm.io/gorm"
  "github.com/google/uuid"
  "github.com/dkoval/shopledger-backend/internal/apierr"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/repos"
  "github.com/dkoval/shopledger-backend/internal/types"
)

// WishlistService is a per-buyer bookmark set over catalog entries. Only a
// registered buyer may write their own list; it never touches funds or stock.
type WishlistService interface {
  Add(ctx context.Context, caller uuid.UUID, productID uint) error
  Remove(ctx context.Context, caller uuid.UUID, productID uint) error
  List(ctx context.Context, caller uuid.UUID) ([]uint, error)
}

type wishlistService struct {
  db            *gorm.DB
  log           *logger.Logger
  wishlistRepo  repos.WishlistRepo
  productRepo   repos.ProductRepo
  userRepo      repos.UserRepo
}

func NewWishlistService(db *gorm.DB, log *logger.Logger, wishlistRepo repos.WishlistRepo, productRepo repos.ProductRepo, userRepo repos.UserRepo) WishlistService {
  serviceLog := log.With("service", "WishlistService")
  return &wishlistService{
    db:           db,
    log:          serviceLog,
    wishlistRepo: wishlistRepo,
    productRepo:  productRepo,
    userRepo:     userRepo,
  }
}

func (ws *wishlistService) Add(ctx context.Context, caller uuid.UUID, productID uint) error {
  if err := ws.requireBuyer(ctx, caller); err != nil {
    return err
  }
  product, err := ws.productRepo.GetByID(ctx, nil, productID)
  if err != nil {
    return fmt.Errorf("Failed to load product: %w", err)
  }
  if product == nil {
    return apierr.NotFound("no product with id %d", productID)
  }
  return ws.wishlistRepo.Add(ctx, nil, caller, productID)
}

func (ws *wishlistService) Remove(ctx context.Context, caller uuid.UUID, productID uint) error {
  if err := ws.requireBuyer(ctx, caller); err != nil {
    return err
  }
  return ws.wishlistRepo.Remove(ctx, nil, caller, productID)
}

func (ws *wishlistService) List(ctx context.Context, caller uuid.UUID) ([]uint, error) {
  entries, err := ws.wishlistRepo.ListByBuyer(ctx, nil, caller)
  if err != nil {
    return nil, err
  }
  ids := make([]uint, 0, len(entries))
  for _, entry := range entries {
    ids = append(ids, entry.ProductID)
  }
  return ids, nil
}

func (ws *wishlistService) requireBuyer(ctx context.Context, caller uuid.UUID) error {
  user, err := ws.userRepo.GetByAddress(ctx, nil, caller)
  if err != nil {
    return fmt.Errorf("Failed to load caller: %w", err)
  }
  if user == nil || user.Role != types.RoleBuyer {
    return apierr.Unauthorized("only a registered buyer may edit a wishlist")
  }
  return nil
}
