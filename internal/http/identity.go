package httpapi

import (
	"context"

	"medihealth-portal/internal/domain"
)

// unexported, collision-proof context key
type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// WithIdentity 把认证身份写入请求上下文（由路由守卫调用）
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext 从请求上下文取认证身份
// fail-open 放行的请求上下文里没有身份，调用方需按"无会话"处理
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*domain.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}
