package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dkoval/shopledger-backend/internal/logger"
	"github.com/dkoval/shopledger-backend/internal/repos"
	"github.com/dkoval/shopledger-backend/internal/types"
)

const testListingFee int64 = 1000

type testEnv struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	tokens   repos.UserTokenRepo
	accounts repos.AccountRepo
	market   repos.MarketRepo
	products repos.ProductRepo
	orders   repos.OrderRepo
	wishes   repos.WishlistRepo

	auth     AuthService
	identity IdentityService
	catalog  CatalogService
	ledger   LedgerService
	wishlist WishlistService
	account  AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	if err := db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Account{},
		&types.MarketState{},
		&types.Product{},
		&types.Order{},
		&types.WishlistEntry{},
	); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	env := &testEnv{
		db:       db,
		log:      log,
		users:    repos.NewUserRepo(db, log),
		tokens:   repos.NewUserTokenRepo(db, log),
		accounts: repos.NewAccountRepo(db, log),
		market:   repos.NewMarketRepo(db, log),
		products: repos.NewProductRepo(db, log),
		orders:   repos.NewOrderRepo(db, log),
		wishes:   repos.NewWishlistRepo(db, log),
	}
	if _, err := env.market.Ensure(context.Background(), nil, testListingFee); err != nil {
		t.Fatalf("market.Ensure: %v", err)
	}

	env.auth = NewAuthService(db, log, env.users, env.accounts, env.tokens, "test-secret", time.Hour, 24*time.Hour)
	env.identity = NewIdentityService(db, log, env.users, env.accounts, env.market)
	env.catalog = NewCatalogService(db, log, env.products, env.users, nil)
	env.ledger = NewLedgerService(db, log, env.orders, env.products, env.users, env.accounts, env.market, nil)
	env.wishlist = NewWishlistService(db, log, env.wishes, env.products, env.users)
	env.account = NewAccountService(db, log, env.accounts)
	return env
}

// signup creates an account with the given balance and returns its address.
func (env *testEnv) signup(t *testing.T, email string, balance int64) uuid.UUID {
	t.Helper()
	user, _, _, err := env.auth.Signup(context.Background(), email, "password1")
	if err != nil {
		t.Fatalf("Signup(%s): %v", email, err)
	}
	if balance > 0 {
		if err := env.accounts.Credit(context.Background(), nil, user.Address, balance); err != nil {
			t.Fatalf("Credit(%s): %v", email, err)
		}
	}
	return user.Address
}

func (env *testEnv) registerBuyer(t *testing.T, email string, balance int64) uuid.UUID {
	t.Helper()
	addr := env.signup(t, email, balance)
	if _, err := env.identity.RegisterBuyer(context.Background(), addr, "buyer", email, "chongqing"); err != nil {
		t.Fatalf("RegisterBuyer(%s): %v", email, err)
	}
	return addr
}

func (env *testEnv) registerSeller(t *testing.T, email string) uuid.UUID {
	t.Helper()
	addr := env.signup(t, email, testListingFee)
	if _, err := env.identity.RegisterSeller(context.Background(), addr, "seller", email, "beijing", testListingFee); err != nil {
		t.Fatalf("RegisterSeller(%s): %v", email, err)
	}
	return addr
}

func (env *testEnv) addProduct(t *testing.T, seller uuid.UUID, name string, price, stock int64) *types.Product {
	t.Helper()
	product, err := env.catalog.AddProduct(context.Background(), seller, name, price, stock, nil)
	if err != nil {
		t.Fatalf("AddProduct(%s): %v", name, err)
	}
	return product
}

func (env *testEnv) balance(t *testing.T, addr uuid.UUID) int64 {
	t.Helper()
	account, err := env.accounts.GetByAddress(context.Background(), nil, addr)
	if err != nil {
		t.Fatalf("GetByAddress: %v", err)
	}
	if account == nil {
		t.Fatalf("account %s missing", addr)
	}
	return account.Balance
}

// memCache is an in-process stand-in for the redis cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, hit := m.entries[key]
	return raw, hit, nil
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memCache) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memCache) Close() error { return nil }

func (env *testEnv) escrow(t *testing.T) int64 {
	t.Helper()
	market, err := env.market.Get(context.Background(), nil)
	if err != nil {
		t.Fatalf("market.Get: %v", err)
	}
	if market == nil {
		t.Fatalf("market state missing")
	}
	return market.EscrowBalance
}
