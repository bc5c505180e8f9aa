package config

import (
	"context"
	"testing"

	"github.com/fpadjusters/claims_backend/appctx"
)

func TestShouldBypassTenantScope_AdminStaysScoped(t *testing.T) {
	ctx := appctx.Set(context.Background(), appctx.ContextKeyTenantId, "tenant-a")
	ctx = appctx.Set(ctx, appctx.ContextKeyIsAdmin, true)
	if shouldBypassTenantScope(ctx) {
		t.Fatal("admin role must not disable tenant scoping")
	}
}

func TestShouldBypassTenantScope_ExplicitSkipOnly(t *testing.T) {
	if shouldBypassTenantScope(context.Background()) {
		t.Fatal("scoping must stay on by default")
	}
	ctx := appctx.Set(context.Background(), appctx.ContextKeySkipTenantScope, true)
	if !shouldBypassTenantScope(ctx) {
		t.Fatal("explicit skip flag must disable tenant scoping")
	}
}
