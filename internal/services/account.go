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

// AccountService exposes the spendable balance. Deposit is the off-chain
// stand-in for funding a wallet; everything else moves through the ledger.
type AccountService interface {
  Deposit(ctx context.Context, caller uuid.UUID, amount int64) (*types.Account, error)
  Get(ctx context.Context, caller uuid.UUID) (*types.Account, error)
}

type accountService struct {
  db           *gorm.DB
  log          *logger.Logger
  accountRepo  repos.AccountRepo
}

func NewAccountService(db *gorm.DB, log *logger.Logger, accountRepo repos.AccountRepo) AccountService {
  serviceLog := log.With("service", "AccountService")
  return &accountService{db: db, log: serviceLog, accountRepo: accountRepo}
}

func (as *accountService) Deposit(ctx context.Context, caller uuid.UUID, amount int64) (*types.Account, error) {
  if amount <= 0 {
    return nil, apierr.InvalidArgument("deposit must be positive, got %d", amount)
  }
  var out *types.Account
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := as.accountRepo.Credit(ctx, tx, caller, amount); err != nil {
      return fmt.Errorf("Failed to credit account: %w", err)
    }
    account, err := as.accountRepo.GetByAddress(ctx, tx, caller)
    if err != nil {
      return err
    }
    out = account
    return nil
  }); err != nil {
    return nil, err
  }
  as.log.Info("Account funded", "address", caller, "amount", amount)
  return out, nil
}

func (as *accountService) Get(ctx context.Context, caller uuid.UUID) (*types.Account, error) {
  account, err := as.accountRepo.GetByAddress(ctx, nil, caller)
  if err != nil {
    return nil, fmt.Errorf("Failed to load account: %w", err)
  }
  if account == nil {
    return nil, apierr.NotFound("no account for address %s", caller)
  }
  return account, nil
}
