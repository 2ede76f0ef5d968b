// Package tenancy provides tenant identity plumbing. Each batch pass runs
// against one logical database named by its tenant; the model cache and the
// record store key everything by it, so there is no cross-tenant sharing.
package tenancy

import (
	"context"
	"fmt"
	"regexp"
)

// DefaultTenant is used when no tenant is supplied (single-tenant mode).
const DefaultTenant = "default"

// maxTenantLen is the maximum length of a tenant name.
const maxTenantLen = 63

// tenantRe validates tenant names: lowercase alphanumeric and hyphens, must
// start and end with an alphanumeric character (DNS label convention).
var tenantRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ctxKey is an unexported type used as the context key for the tenant.
type ctxKey struct{}

// Validate checks that a tenant name conforms to DNS label rules.
func Validate(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant is required")
	}
	if len(tenant) > maxTenantLen {
		return fmt.Errorf("tenant %q exceeds maximum length of %d characters", tenant, maxTenantLen)
	}
	if !tenantRe.MatchString(tenant) {
		return fmt.Errorf("tenant %q is invalid: must consist of lowercase alphanumeric characters or hyphens, and must start and end with an alphanumeric character", tenant)
	}
	return nil
}

// WithTenant returns a new context with the tenant attached.
func WithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, ctxKey{}, tenant)
}

// TenantFromContext retrieves the tenant from the context. Returns "" and
// false if no tenant is set.
func TenantFromContext(ctx context.Context) (string, bool) {
	tenant, ok := ctx.Value(ctxKey{}).(string)
	return tenant, ok
}

// TenantOrDefault returns the context's tenant, or DefaultTenant when unset.
func TenantOrDefault(ctx context.Context) string {
	if tenant, ok := TenantFromContext(ctx); ok {
		return tenant
	}
	return DefaultTenant
}
