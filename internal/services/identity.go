package services

import (
  "context"
  "fmt"
  "strings"
  "gorm.io/gorm"
  "github.com/google/uuid"
  "github.com/dkoval/shopledger-backend/internal/apierr"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/repos"
  "github.com/dkoval/shopledger-backend/internal/types"
)

// IdentityService assigns and guards marketplace roles. A role is set exactly
// once per address, and the seller slot is claimed at most once for the
// lifetime of the market.
type IdentityService interface {
  RegisterBuyer(ctx context.Context, caller uuid.UUID, name, email, shippingAddr string) (*types.User, error)
  RegisterSeller(ctx context.Context, caller uuid.UUID, name, email, shippingAddr string, deposit int64) (*types.User, error)
  UpdateBuyer(ctx context.Context, caller uuid.UUID, name, email, shippingAddr string) (*types.User, error)
  UpdateSeller(ctx context.Context, caller uuid.UUID, name, email, shippingAddr string) (*types.User, error)
  // GetUser returns the profile at address. Absence is not an error: the
  // result is a zero-value profile with Registered=false.
  GetUser(ctx context.Context, address uuid.UUID) (*types.User, error)
}

type identityService struct {
  db           *gorm.DB
  log          *logger.Logger
  userRepo     repos.UserRepo
  accountRepo  repos.AccountRepo
  marketRepo   repos.MarketRepo
}

func NewIdentityService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, accountRepo repos.AccountRepo, marketRepo repos.MarketRepo) IdentityService {
  serviceLog := log.With("service", "IdentityService")
  return &identityService{
    db:          db,
    log:         serviceLog,
    userRepo:    userRepo,
    accountRepo: accountRepo,
    marketRepo:  marketRepo,
  }
}

func validateProfileInput(name, email string) error {
  if strings.TrimSpace(name) == "" {
    return apierr.InvalidArgument("a name is required")
  }
  if strings.TrimSpace(email) == "" {
    return apierr.InvalidArgument("an email is required")
  }
  return nil
}

func (is *identityService) RegisterBuyer(ctx context.Context, caller uuid.UUID, name, email, shippingAddr string) (*types.User, error) {
  if err := validateProfileInput(name, email); err != nil {
    return nil, err
  }
  var out *types.User
  if err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user, err := is.loadCaller(ctx, tx, caller)
    if err != nil {
      return err
    }
    if user.Role != types.RoleUnset {
      return apierr.AlreadyRegistered("address %s already registered as %s", caller, user.Role)
    }
    if err := is.checkEmailFree(ctx, tx, user, email); err != nil {
      return err
    }
    ok, err := is.userRepo.AssignRole(ctx, tx, caller, types.RoleBuyer, name, email, shippingAddr)
    if err != nil {
      return fmt.Errorf("Failed to assign buyer role: %w", err)
    }
    if !ok {
      return apierr.AlreadyRegistered("address %s already registered", caller)
    }
    out, err = is.userRepo.GetByAddress(ctx, tx, caller)
    return err
  }); err != nil {
    return nil, err
  }
  is.log.Info("Buyer registered", "address", caller)
  return out, nil
}

func (is *identityService) RegisterSeller(ctx context.Context, caller uuid.UUID, name, email, shippingAddr string, deposit int64) (*types.User, error) {
  if err := validateProfileInput(name, email); err != nil {
    return nil, err
  }
  var out *types.User
  if err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user, err := is.loadCaller(ctx, tx, caller)
    if err != nil {
      return err
    }
    if user.Role != types.RoleUnset {
      return apierr.AlreadyRegistered("address %s already registered as %s", caller, user.Role)
    }
    market, err := is.marketRepo.Get(ctx, tx)
    if err != nil {
      return fmt.Errorf("Failed to load market state: %w", err)
    }
    if market == nil {
      return fmt.Errorf("market state row missing")
    }
    if market.HasSeller() {
      return apierr.SellerExists("the seller slot is already claimed")
    }
    if deposit != market.ListingFee {
      return apierr.InsufficientDeposit("seller deposit must equal the listing fee of %d, got %d", market.ListingFee, deposit)
    }
    if err := is.checkEmailFree(ctx, tx, user, email); err != nil {
      return err
    }
    paid, err := is.accountRepo.Debit(ctx, tx, caller, deposit)
    if err != nil {
      return fmt.Errorf("Failed to debit seller deposit: %w", err)
    }
    if !paid {
      return apierr.InsufficientFunds("account balance below the listing fee of %d", deposit)
    }
    if err := is.marketRepo.CreditFees(ctx, tx, deposit); err != nil {
      return fmt.Errorf("Failed to collect listing fee: %w", err)
    }
    claimed, err := is.marketRepo.ClaimSellerSlot(ctx, tx, caller)
    if err != nil {
      return fmt.Errorf("Failed to claim seller slot: %w", err)
    }
    if !claimed {
      return apierr.SellerExists("the seller slot is already claimed")
    }
    ok, err := is.userRepo.AssignRole(ctx, tx, caller, types.RoleSeller, name, email, shippingAddr)
    if err != nil {
      return fmt.Errorf("Failed to assign seller role: %w", err)
    }
    if !ok {
      return apierr.AlreadyRegistered("address %s already registered", caller)
    }
    out, err = is.userRepo.GetByAddress(ctx, tx, caller)
    return err
  }); err != nil {
    return nil, err
  }
  is.log.Info("Seller registered", "address", caller)
  return out, nil
}

func (is *identityService) UpdateBuyer(ctx context.Context, caller uuid.UUID, name, email, shippingAddr string) (*types.User, error) {
  return is.updateProfile(ctx, caller, types.RoleBuyer, name, email, shippingAddr)
}

func (is *identityService) UpdateSeller(ctx context.Context, caller uuid.UUID, name, email, shippingAddr string) (*types.User, error) {
  return is.updateProfile(ctx, caller, types.RoleSeller, name, email, shippingAddr)
}

func (is *identityService) updateProfile(ctx context.Context, caller uuid.UUID, want types.Role, name, email, shippingAddr string) (*types.User, error) {
  if err := validateProfileInput(name, email); err != nil {
    return nil, err
  }
  var out *types.User
  if err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user, err := is.loadCaller(ctx, tx, caller)
    if err != nil {
      return err
    }
    if user.Role == types.RoleUnset {
      return apierr.NotRegistered("address %s has no marketplace role", caller)
    }
    if user.Role != want {
      return apierr.Unauthorized("address %s is registered as %s", caller, user.Role)
    }
    if err := is.checkEmailFree(ctx, tx, user, email); err != nil {
      return err
    }
    if err := is.userRepo.UpdateProfile(ctx, tx, caller, name, email, shippingAddr); err != nil {
      return fmt.Errorf("Failed to update profile: %w", err)
    }
    out, err = is.userRepo.GetByAddress(ctx, tx, caller)
    return err
  }); err != nil {
    return nil, err
  }
  return out, nil
}

func (is *identityService) GetUser(ctx context.Context, address uuid.UUID) (*types.User, error) {
  user, err := is.userRepo.GetByAddress(ctx, nil, address)
  if err != nil {
    return nil, fmt.Errorf("Failed to load user: %w", err)
  }
  if user == nil {
    return &types.User{Address: address}, nil
  }
  return user, nil
}

func (is *identityService) loadCaller(ctx context.Context, tx *gorm.DB, caller uuid.UUID) (*types.User, error) {
  user, err := is.userRepo.GetByAddress(ctx, tx, caller)
  if err != nil {
    return nil, fmt.Errorf("Failed to load caller: %w", err)
  }
  if user == nil {
    return nil, apierr.NotRegistered("no account for address %s", caller)
  }
  return user, nil
}

func (is *identityService) checkEmailFree(ctx context.Context, tx *gorm.DB, user *types.User, email string) error {
  if strings.EqualFold(email, user.Email) {
    return nil
  }
  exists, err := is.userRepo.EmailExists(ctx, tx, email)
  if err != nil {
    return fmt.Errorf("Failed to check user email: %w", err)
  }
  if exists {
    return apierr.InvalidArgument("email is already in use")
  }
  return nil
}
