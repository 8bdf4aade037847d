package services

import (
	"context"
	"testing"

	"github.com/dkoval/shopledger-backend/internal/apierr"
)

func TestSignupAndVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, access, refresh, err := env.auth.Signup(ctx, "Alice@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if access == "" || refresh == "" {
		t.Fatalf("tokens not issued")
	}

	addr, err := env.auth.VerifyAccess(ctx, access)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if addr != user.Address {
		t.Errorf("verified address = %s, want %s", addr, user.Address)
	}

	// Signup opens a zero-balance account alongside the user row.
	account, err := env.accounts.GetByAddress(ctx, nil, user.Address)
	if err != nil {
		t.Fatalf("GetByAddress: %v", err)
	}
	if account == nil || account.Balance != 0 {
		t.Errorf("account = %+v, want zero balance row", account)
	}

	// Duplicate signup is rejected.
	if _, _, _, err := env.auth.Signup(ctx, "alice@example.com", "other"); err == nil {
		t.Errorf("duplicate signup accepted")
	}
}

func TestLoginRotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, firstAccess, _, err := env.auth.Signup(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	if _, _, err := env.auth.Login(ctx, "alice@example.com", "wrong"); err == nil {
		t.Errorf("wrong password accepted")
	}
	newAccess, newRefresh, err := env.auth.Login(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if newAccess == "" || newRefresh == "" {
		t.Fatalf("tokens not issued on login")
	}

	// The pre-login access token is revoked by rotation.
	if _, err := env.auth.VerifyAccess(ctx, firstAccess); err == nil {
		t.Errorf("stale access token still verifies")
	}
	if _, err := env.auth.VerifyAccess(ctx, newAccess); err != nil {
		t.Errorf("fresh access token rejected: %v", err)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, access, refresh, err := env.auth.Signup(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	newAccess, newRefresh, err := env.auth.Refresh(ctx, refresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if newRefresh == refresh {
		t.Errorf("refresh token not rotated")
	}
	if _, err := env.auth.VerifyAccess(ctx, access); err == nil {
		t.Errorf("pre-refresh access token still verifies")
	}
	// A used refresh token is spent.
	if _, _, err := env.auth.Refresh(ctx, refresh); err == nil {
		t.Errorf("spent refresh token accepted")
	}

	if err := env.auth.Logout(ctx, user.Address); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := env.auth.VerifyAccess(ctx, newAccess); err == nil {
		t.Errorf("access token survives logout")
	}
	if _, _, err := env.auth.Refresh(ctx, newRefresh); err == nil {
		t.Errorf("refresh token survives logout")
	}
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, _, _, err := env.auth.Signup(ctx, "", "pw"); apierr.CodeOf(err) != apierr.CodeInvalidArgument {
		t.Errorf("empty email: code = %q, want %q", apierr.CodeOf(err), apierr.CodeInvalidArgument)
	}
	if _, _, _, err := env.auth.Signup(ctx, "a@b.c", ""); apierr.CodeOf(err) != apierr.CodeInvalidArgument {
		t.Errorf("empty password: code = %q, want %q", apierr.CodeOf(err), apierr.CodeInvalidArgument)
	}
}
