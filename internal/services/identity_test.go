package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/dkoval/shopledger-backend/internal/apierr"
	"github.com/dkoval/shopledger-backend/internal/types"
)

func TestRegisterBuyer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	addr := env.signup(t, "alice@example.com", 0)
	user, err := env.identity.RegisterBuyer(ctx, addr, "Alice", "alice@example.com", "12 Main St")
	if err != nil {
		t.Fatalf("RegisterBuyer: %v", err)
	}
	if user.Role != types.RoleBuyer {
		t.Errorf("role = %q, want %q", user.Role, types.RoleBuyer)
	}
	if !user.Registered {
		t.Errorf("Registered = false, want true")
	}
	if user.Name != "Alice" || user.ShippingAddr != "12 Main St" {
		t.Errorf("profile not persisted: %+v", user)
	}
}

func TestRoleIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	buyer := env.registerBuyer(t, "buyer@example.com", testListingFee)
	if _, err := env.identity.RegisterSeller(ctx, buyer, "B", "buyer@example.com", "x", testListingFee); apierr.CodeOf(err) != apierr.CodeAlreadyRegistered {
		t.Errorf("buyer->seller: code = %q, want %q", apierr.CodeOf(err), apierr.CodeAlreadyRegistered)
	}
	if _, err := env.identity.RegisterBuyer(ctx, buyer, "B", "buyer@example.com", "x"); apierr.CodeOf(err) != apierr.CodeAlreadyRegistered {
		t.Errorf("buyer->buyer: code = %q, want %q", apierr.CodeOf(err), apierr.CodeAlreadyRegistered)
	}

	seller := env.registerSeller(t, "seller@example.com")
	if _, err := env.identity.RegisterBuyer(ctx, seller, "S", "seller@example.com", "x"); apierr.CodeOf(err) != apierr.CodeAlreadyRegistered {
		t.Errorf("seller->buyer: code = %q, want %q", apierr.CodeOf(err), apierr.CodeAlreadyRegistered)
	}
}

func TestRegisterSellerSingleton(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerSeller(t, "first@example.com")

	second := env.signup(t, "second@example.com", testListingFee)
	_, err := env.identity.RegisterSeller(ctx, second, "Second", "second@example.com", "x", testListingFee)
	if apierr.CodeOf(err) != apierr.CodeSellerExists {
		t.Fatalf("code = %q, want %q", apierr.CodeOf(err), apierr.CodeSellerExists)
	}
	// The rejected contender keeps their deposit.
	if got := env.balance(t, second); got != testListingFee {
		t.Errorf("second balance = %d, want %d", got, testListingFee)
	}
}

func TestRegisterSellerDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		balance  int64
		deposit  int64
		wantCode string
	}{
		{"deposit below fee", testListingFee, testListingFee - 1, apierr.CodeInsufficientDeposit},
		{"deposit above fee", testListingFee * 2, testListingFee + 1, apierr.CodeInsufficientDeposit},
		{"balance below fee", testListingFee - 1, testListingFee, apierr.CodeInsufficientFunds},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := fmt.Sprintf("candidate%d@example.com", i)
			addr := env.signup(t, email, tt.balance)
			_, err := env.identity.RegisterSeller(ctx, addr, "S", email, "x", tt.deposit)
			if apierr.CodeOf(err) != tt.wantCode {
				t.Errorf("code = %q, want %q", apierr.CodeOf(err), tt.wantCode)
			}
			user, gErr := env.users.GetByAddress(ctx, nil, addr)
			if gErr != nil {
				t.Fatalf("GetByAddress: %v", gErr)
			}
			if user.Role != types.RoleUnset {
				t.Errorf("role = %q after failed registration, want unset", user.Role)
			}
		})
	}
}

func TestSellerDepositCollectedAsFee(t *testing.T) {
	env := newTestEnv(t)

	seller := env.registerSeller(t, "seller@example.com")
	if got := env.balance(t, seller); got != 0 {
		t.Errorf("seller balance = %d, want 0 after paying the listing fee", got)
	}
	market, err := env.market.Get(context.Background(), nil)
	if err != nil {
		t.Fatalf("market.Get: %v", err)
	}
	if market.FeesCollected != testListingFee {
		t.Errorf("FeesCollected = %d, want %d", market.FeesCollected, testListingFee)
	}
	if !market.IsSeller(seller) {
		t.Errorf("seller slot not claimed by %s", seller)
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	buyer := env.registerBuyer(t, "buyer@example.com", 0)
	updated, err := env.identity.UpdateBuyer(ctx, buyer, "New Name", "buyer@example.com", "99 Side St")
	if err != nil {
		t.Fatalf("UpdateBuyer: %v", err)
	}
	if updated.Name != "New Name" || updated.ShippingAddr != "99 Side St" {
		t.Errorf("profile not updated: %+v", updated)
	}
	if updated.Role != types.RoleBuyer {
		t.Errorf("role changed on update: %q", updated.Role)
	}

	// Wrong-role update paths.
	if _, err := env.identity.UpdateSeller(ctx, buyer, "N", "buyer@example.com", "x"); apierr.CodeOf(err) != apierr.CodeUnauthorized {
		t.Errorf("buyer via UpdateSeller: code = %q, want %q", apierr.CodeOf(err), apierr.CodeUnauthorized)
	}
	unregistered := env.signup(t, "nobody@example.com", 0)
	if _, err := env.identity.UpdateBuyer(ctx, unregistered, "N", "nobody@example.com", "x"); apierr.CodeOf(err) != apierr.CodeNotRegistered {
		t.Errorf("unregistered update: code = %q, want %q", apierr.CodeOf(err), apierr.CodeNotRegistered)
	}
}

func TestGetUserUnknownAddress(t *testing.T) {
	env := newTestEnv(t)

	addr := uuid.New()
	user, err := env.identity.GetUser(context.Background(), addr)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Address != addr {
		t.Errorf("address = %s, want %s", user.Address, addr)
	}
	if user.Registered || user.Role != types.RoleUnset || user.Name != "" {
		t.Errorf("unknown address should read as a zero profile, got %+v", user)
	}
}
