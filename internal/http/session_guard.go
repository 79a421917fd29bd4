package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"medihealth-portal/internal/authclient"
	"medihealth-portal/internal/domain"

	"go.uber.org/zap"
)

// LoginPath 未认证请求的跳转目标
const LoginPath = "/auth/login"

// IdentityProvider 会话校验能力（托管认证服务）
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context, accessToken string) (*domain.Identity, error)
}

// publicPrefixes 公开路径前缀：认证流程、演示模式、无障碍声明
var publicPrefixes = []string{"/auth", "/demo", "/accessibility"}

// IsPublicPath 路径分类：根路径或命中公开前缀即 public，其余全部 protected
// 静态划分，不依赖任何持久状态
func IsPublicPath(path string) bool {
	if path == "/" || path == "/healthz" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// SessionGuard 路由守卫：每个请求进入页面逻辑前执行一次
// public 路径直接放行（不触发认证服务调用，未登录访客可浏览公开内容）
// protected 路径校验会话，无会话跳转登录页
type SessionGuard struct {
	provider   IdentityProvider
	cookieName string
	logger     *zap.Logger
}

// NewSessionGuard 创建路由守卫
func NewSessionGuard(provider IdentityProvider, cookieName string, logger *zap.Logger) *SessionGuard {
	return &SessionGuard{
		provider:   provider,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Wrap 包装整条路由链
func (g *SessionGuard) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := g.provider.CurrentIdentity(r.Context(), g.accessToken(r))
		if err != nil {
			if errors.Is(err, authclient.ErrNotConfigured) || errors.Is(err, authclient.ErrUnavailable) {
				// fail-open：配置缺失/认证服务不可达不等于"无会话"，
				// 不能为配置故障拦掉全部流量
				g.logger.Error("Auth provider unreachable, allowing request through",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}
			// 其它错误按无会话处理
			g.logger.Warn("Session check failed",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}

		if identity == nil {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// accessToken 取 access token：优先 Authorization Bearer，其次会话 Cookie
func (g *SessionGuard) accessToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if g.cookieName != "" {
		if cookie, err := r.Cookie(g.cookieName); err == nil {
			return cookie.Value
		}
	}
	return ""
}
