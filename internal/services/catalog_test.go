package services

import (
	"context"
	"testing"

	"github.com/dkoval/shopledger-backend/internal/apierr"
)

func TestAddProductSellerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	buyer := env.registerBuyer(t, "buyer@example.com", 0)
	if _, err := env.catalog.AddProduct(ctx, buyer, "mouse", 10, 5, nil); apierr.CodeOf(err) != apierr.CodeUnauthorized {
		t.Errorf("buyer add: code = %q, want %q", apierr.CodeOf(err), apierr.CodeUnauthorized)
	}

	seller := env.registerSeller(t, "seller@example.com")
	product, err := env.catalog.AddProduct(ctx, seller, "mouse", 10, 5, nil)
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if product.ID == 0 {
		t.Errorf("product id not assigned")
	}

	if _, err := env.catalog.UpdateProduct(ctx, buyer, product.ID, "mouse", 12, 5); apierr.CodeOf(err) != apierr.CodeUnauthorized {
		t.Errorf("buyer update: code = %q, want %q", apierr.CodeOf(err), apierr.CodeUnauthorized)
	}
}

func TestProductValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.registerSeller(t, "seller@example.com")

	tests := []struct {
		name  string
		pname string
		price int64
		stock int64
	}{
		{"empty name", "", 10, 5},
		{"blank name", "   ", 10, 5},
		{"negative price", "mouse", -1, 5},
		{"negative stock", "mouse", 10, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.catalog.AddProduct(ctx, seller, tt.pname, tt.price, tt.stock, nil)
			if apierr.CodeOf(err) != apierr.CodeInvalidArgument {
				t.Errorf("code = %q, want %q", apierr.CodeOf(err), apierr.CodeInvalidArgument)
			}
		})
	}

	// Zero price and zero stock are both legal.
	if _, err := env.catalog.AddProduct(ctx, seller, "freebie", 0, 0, nil); err != nil {
		t.Errorf("zero price/stock: %v", err)
	}
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.registerSeller(t, "seller@example.com")

	product := env.addProduct(t, seller, "mouse", 10, 5)
	updated, err := env.catalog.UpdateProduct(ctx, seller, product.ID, "gaming mouse", 25, 7)
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.Name != "gaming mouse" || updated.Price != 25 || updated.Stock != 7 {
		t.Errorf("update not applied: %+v", updated)
	}

	if _, err := env.catalog.UpdateProduct(ctx, seller, product.ID+99, "ghost", 1, 1); apierr.CodeOf(err) != apierr.CodeNotFound {
		t.Errorf("unknown id: code = %q, want %q", apierr.CodeOf(err), apierr.CodeNotFound)
	}
}

func TestListAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.registerSeller(t, "seller@example.com")

	first := env.addProduct(t, seller, "in stock", 10, 3)
	env.addProduct(t, seller, "sold out", 10, 0)
	second := env.addProduct(t, seller, "also in stock", 10, 1)

	available, err := env.catalog.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(available) != 2 {
		t.Fatalf("got %d products, want 2", len(available))
	}
	if available[0].ID != first.ID || available[1].ID != second.ID {
		t.Errorf("listing out of order: got ids %d, %d", available[0].ID, available[1].ID)
	}
}

func TestListAvailableDropsSoldOutProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cache := newMemCache()
	catalog := NewCatalogService(env.db, env.log, env.products, env.users, cache)
	ledger := NewLedgerService(env.db, env.log, env.orders, env.products, env.users, env.accounts, env.market, cache)

	seller := env.registerSeller(t, "seller@example.com")
	buyer := env.registerBuyer(t, "buyer@example.com", 1000)
	product, err := catalog.AddProduct(ctx, seller, "limited run", 100, 2, nil)
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}

	// Prime the cache with the product still in stock.
	available, err := catalog.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(available) != 1 {
		t.Fatalf("got %d products before purchase, want 1", len(available))
	}

	// Buy the entire stock; the purchase must invalidate the cached listing.
	if _, err := ledger.StartTrade(ctx, buyer, product.ID, 2, 200); err != nil {
		t.Fatalf("StartTrade: %v", err)
	}
	available, err = catalog.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(available) != 0 {
		t.Fatalf("sold-out product still listed: %+v", available)
	}
}

func TestListAvailableRefreshesStockAfterPurchase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cache := newMemCache()
	catalog := NewCatalogService(env.db, env.log, env.products, env.users, cache)
	ledger := NewLedgerService(env.db, env.log, env.orders, env.products, env.users, env.accounts, env.market, cache)

	seller := env.registerSeller(t, "seller@example.com")
	buyer := env.registerBuyer(t, "buyer@example.com", 1000)
	product, err := catalog.AddProduct(ctx, seller, "stacked", 100, 5, nil)
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if _, err := catalog.ListAvailable(ctx); err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}

	if _, err := ledger.StartTrade(ctx, buyer, product.ID, 2, 200); err != nil {
		t.Fatalf("StartTrade: %v", err)
	}
	available, err := catalog.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(available) != 1 || available[0].Stock != 3 {
		t.Fatalf("listing = %+v, want one product with stock 3", available)
	}
}

func TestGetProductByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.registerSeller(t, "seller@example.com")

	product := env.addProduct(t, seller, "mouse", 10, 5)
	got, err := env.catalog.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "mouse" {
		t.Errorf("name = %q, want %q", got.Name, "mouse")
	}
	if _, err := env.catalog.GetByID(ctx, product.ID+99); apierr.CodeOf(err) != apierr.CodeNotFound {
		t.Errorf("unknown id: code = %q, want %q", apierr.CodeOf(err), apierr.CodeNotFound)
	}
}
