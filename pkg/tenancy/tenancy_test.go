package tenancy

import (
	"context"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := []string{"default", "a", "tenant-1", "0abc", "x9"}
	for _, name := range valid {
		if err := Validate(name); err != nil {
			t.Fatalf("Validate(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "UPPER", "has_underscore", "-leading", "trailing-", strings.Repeat("a", 64)}
	for _, name := range invalid {
		if err := Validate(name); err == nil {
			t.Fatalf("Validate(%q) = nil, want error", name)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithTenant(context.Background(), "alpha")

	tenant, ok := TenantFromContext(ctx)
	if !ok || tenant != "alpha" {
		t.Fatalf("TenantFromContext = (%q, %v), want (alpha, true)", tenant, ok)
	}

	if _, ok := TenantFromContext(context.Background()); ok {
		t.Fatal("empty context must carry no tenant")
	}
}

func TestTenantOrDefault(t *testing.T) {
	if got := TenantOrDefault(context.Background()); got != DefaultTenant {
		t.Fatalf("TenantOrDefault on empty context = %q, want %q", got, DefaultTenant)
	}
	if got := TenantOrDefault(WithTenant(context.Background(), "beta")); got != "beta" {
		t.Fatalf("TenantOrDefault = %q, want beta", got)
	}
}
