package services

import (
  "context"
  "fmt"
  "gorm.io/gorm"
  "github.com/google/uuid"
  "github.com/dkoval/shopledger-backend/internal/apierr"
  "github.com/dkoval/shopledger-backend/internal/clients/redis"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/repos"
  "github.com/dkoval/shopledger-backend/internal/types"
)

// LedgerService owns the escrow state machine. A purchase debits the buyer's
// balance and the product's stock and parks the payment on the market escrow
// balance; the money leaves escrow exactly once, either to the seller
// (completed) or back to the buyer (returned).
//
// Fund release follows checks-effects-interactions: the terminal status flip
// is a guarded conditional update, and the transfer only runs when that flip
// reported exactly one affected row. A repeated release attempt cannot pass
// the guard a second time.
type LedgerService interface {
  StartTrade(ctx context.Context, caller uuid.UUID, productID uint, quantity, payment int64) (*types.Order, error)
  Complete(ctx context.Context, caller uuid.UUID, orderID uint) (*types.Order, error)
  ApplyRefund(ctx context.Context, caller uuid.UUID, orderID uint) (*types.Order, error)
  ApproveRefund(ctx context.Context, caller uuid.UUID, orderID uint) (*types.Order, error)
  GetMyOrders(ctx context.Context, caller uuid.UUID) ([]*types.Order, error)
  GetAllOrders(ctx context.Context, caller uuid.UUID) ([]*types.Order, error)
  GetPendingApproval(ctx context.Context, caller uuid.UUID) ([]*types.Order, error)
}

type ledgerService struct {
  db           *gorm.DB
  log          *logger.Logger
  orderRepo    repos.OrderRepo
  productRepo  repos.ProductRepo
  userRepo     repos.UserRepo
  accountRepo  repos.AccountRepo
  marketRepo   repos.MarketRepo
  cache        redis.Cache
}

func NewLedgerService(
  db *gorm.DB,
  log *logger.Logger,
  orderRepo repos.OrderRepo,
  productRepo repos.ProductRepo,
  userRepo repos.UserRepo,
  accountRepo repos.AccountRepo,
  marketRepo repos.MarketRepo,
  cache redis.Cache,
) LedgerService {
  serviceLog := log.With("service", "LedgerService")
  return &ledgerService{
    db:          db,
    log:         serviceLog,
    orderRepo:   orderRepo,
    productRepo: productRepo,
    userRepo:    userRepo,
    accountRepo: accountRepo,
    marketRepo:  marketRepo,
    cache:       cache,
  }
}

func (ls *ledgerService) StartTrade(ctx context.Context, caller uuid.UUID, productID uint, quantity, payment int64) (*types.Order, error) {
  if quantity <= 0 {
    return nil, apierr.InvalidArgument("quantity must be positive, got %d", quantity)
  }
  var out *types.Order
  if err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user, err := ls.userRepo.GetByAddress(ctx, tx, caller)
    if err != nil {
      return fmt.Errorf("Failed to load caller: %w", err)
    }
    if user == nil || user.Role != types.RoleBuyer {
      return apierr.Unauthorized("only a registered buyer may purchase")
    }
    product, err := ls.productRepo.GetByID(ctx, tx, productID)
    if err != nil {
      return fmt.Errorf("Failed to load product: %w", err)
    }
    if product == nil {
      return apierr.NotFound("no product with id %d", productID)
    }
    if quantity > product.Stock {
      return apierr.InsufficientStock("requested %d units of product %d, only %d in stock", quantity, productID, product.Stock)
    }
    if expected := product.Price * quantity; payment != expected {
      return apierr.PaymentMismatch("payment must equal %d (price %d x quantity %d), got %d", expected, product.Price, quantity, payment)
    }
    debited, err := ls.productRepo.DebitStock(ctx, tx, productID, quantity)
    if err != nil {
      return fmt.Errorf("Failed to debit stock: %w", err)
    }
    if !debited {
      return apierr.InsufficientStock("requested %d units of product %d", quantity, productID)
    }
    paid, err := ls.accountRepo.Debit(ctx, tx, caller, payment)
    if err != nil {
      return fmt.Errorf("Failed to debit buyer account: %w", err)
    }
    if !paid {
      return apierr.InsufficientFunds("account balance below payment of %d", payment)
    }
    if err := ls.marketRepo.CreditEscrow(ctx, tx, payment); err != nil {
      return fmt.Errorf("Failed to credit escrow: %w", err)
    }
    order := &types.Order{
      BuyerAddress: caller,
      ProductID:    productID,
      Quantity:     quantity,
      Amount:       payment,
      Status:       types.StatusCreated,
    }
    out, err = ls.orderRepo.Create(ctx, tx, order)
    return err
  }); err != nil {
    return nil, err
  }
  // The stock debit may have sold the product out.
  invalidateAvailable(ctx, ls.log, ls.cache)
  ls.log.Info("Trade started", "order", out.ID, "product", productID, "quantity", quantity, "amount", payment)
  return out, nil
}

func (ls *ledgerService) Complete(ctx context.Context, caller uuid.UUID, orderID uint) (*types.Order, error) {
  var out *types.Order
  if err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    order, err := ls.orderRepo.GetByID(ctx, tx, orderID)
    if err != nil {
      return fmt.Errorf("Failed to load order: %w", err)
    }
    if order == nil {
      return apierr.NotFound("no order with id %d", orderID)
    }
    if order.BuyerAddress != caller {
      return apierr.Unauthorized("only the order's buyer may complete it")
    }
    // Effect before interaction: flip the status first, release only if the
    // flip took.
    flipped, err := ls.orderRepo.Transition(ctx, tx, orderID, types.StatusCreated, types.StatusCompleted)
    if err != nil {
      return fmt.Errorf("Failed to transition order: %w", err)
    }
    if !flipped {
      return apierr.InvalidState("order %d is %s, expected %s", orderID, order.Status, types.StatusCreated)
    }
    market, err := ls.marketRepo.Get(ctx, tx)
    if err != nil {
      return fmt.Errorf("Failed to load market state: %w", err)
    }
    if market == nil || !market.HasSeller() {
      return fmt.Errorf("market has no seller to release escrow to")
    }
    if err := ls.releaseEscrow(ctx, tx, order.Amount, *market.SellerAddress); err != nil {
      return err
    }
    order.Status = types.StatusCompleted
    out = order
    return nil
  }); err != nil {
    return nil, err
  }
  ls.log.Info("Order completed, escrow released to seller", "order", orderID, "amount", out.Amount)
  return out, nil
}

func (ls *ledgerService) ApplyRefund(ctx context.Context, caller uuid.UUID, orderID uint) (*types.Order, error) {
  var out *types.Order
  if err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    order, err := ls.orderRepo.GetByID(ctx, tx, orderID)
    if err != nil {
      return fmt.Errorf("Failed to load order: %w", err)
    }
    if order == nil {
      return apierr.NotFound("no order with id %d", orderID)
    }
    if order.BuyerAddress != caller {
      return apierr.Unauthorized("only the order's buyer may request a refund")
    }
    flipped, err := ls.orderRepo.Transition(ctx, tx, orderID, types.StatusCreated, types.StatusPendingApproval)
    if err != nil {
      return fmt.Errorf("Failed to transition order: %w", err)
    }
    if !flipped {
      return apierr.InvalidState("order %d is %s, expected %s", orderID, order.Status, types.StatusCreated)
    }
    order.Status = types.StatusPendingApproval
    out = order
    return nil
  }); err != nil {
    return nil, err
  }
  ls.log.Info("Refund requested", "order", orderID)
  return out, nil
}

func (ls *ledgerService) ApproveRefund(ctx context.Context, caller uuid.UUID, orderID uint) (*types.Order, error) {
  var out *types.Order
  if err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    market, err := ls.marketRepo.Get(ctx, tx)
    if err != nil {
      return fmt.Errorf("Failed to load market state: %w", err)
    }
    if market == nil || !market.IsSeller(caller) {
      return apierr.Unauthorized("only the seller may approve a refund")
    }
    order, err := ls.orderRepo.GetByID(ctx, tx, orderID)
    if err != nil {
      return fmt.Errorf("Failed to load order: %w", err)
    }
    if order == nil {
      return apierr.NotFound("no order with id %d", orderID)
    }
    flipped, err := ls.orderRepo.Transition(ctx, tx, orderID, types.StatusPendingApproval, types.StatusReturned)
    if err != nil {
      return fmt.Errorf("Failed to transition order: %w", err)
    }
    if !flipped {
      return apierr.InvalidState("order %d is %s, expected %s", orderID, order.Status, types.StatusPendingApproval)
    }
    if err := ls.releaseEscrow(ctx, tx, order.Amount, order.BuyerAddress); err != nil {
      return err
    }
    order.Status = types.StatusReturned
    out = order
    return nil
  }); err != nil {
    return nil, err
  }
  ls.log.Info("Refund approved, escrow returned to buyer", "order", orderID, "amount", out.Amount)
  return out, nil
}

func (ls *ledgerService) GetMyOrders(ctx context.Context, caller uuid.UUID) ([]*types.Order, error) {
  return ls.orderRepo.ListByBuyer(ctx, nil, caller)
}

func (ls *ledgerService) GetAllOrders(ctx context.Context, caller uuid.UUID) ([]*types.Order, error) {
  if err := ls.requireSeller(ctx, caller); err != nil {
    return nil, err
  }
  return ls.orderRepo.ListAll(ctx, nil)
}

func (ls *ledgerService) GetPendingApproval(ctx context.Context, caller uuid.UUID) ([]*types.Order, error) {
  if err := ls.requireSeller(ctx, caller); err != nil {
    return nil, err
  }
  return ls.orderRepo.ListByStatus(ctx, nil, types.StatusPendingApproval)
}

// releaseEscrow moves amount out of the held escrow balance into the account
// at `to`. Callers must have committed the terminal status flip first; an
// escrow underflow here means the ledger invariant was already broken.
func (ls *ledgerService) releaseEscrow(ctx context.Context, tx *gorm.DB, amount int64, to uuid.UUID) error {
  ok, err := ls.marketRepo.DebitEscrow(ctx, tx, amount)
  if err != nil {
    return fmt.Errorf("Failed to debit escrow: %w", err)
  }
  if !ok {
    return fmt.Errorf("escrow balance below release amount %d", amount)
  }
  if err := ls.accountRepo.Credit(ctx, tx, to, amount); err != nil {
    return fmt.Errorf("Failed to credit account %s: %w", to, err)
  }
  return nil
}

func (ls *ledgerService) requireSeller(ctx context.Context, caller uuid.UUID) error {
  market, err := ls.marketRepo.Get(ctx, nil)
  if err != nil {
    return fmt.Errorf("Failed to load market state: %w", err)
  }
  if market == nil || !market.IsSeller(caller) {
    return apierr.Unauthorized("only the seller may view this")
  }
  return nil
}
