package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuthRoutes 注册认证路由（公开前缀，路由守卫直接放行）
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.HandleHandler("/auth/api/v1/login", h)
	r.HandleHandler("/auth/api/v1/forgot-password/send-code", h)
	r.HandleHandler("/auth/api/v1/forgot-password/verify-code", h)
	r.HandleHandler("/auth/api/v1/forgot-password/reset", h)
}

// RegisterPortalRoutes 注册门户主体路由（对齐 pc360Front 页面）
func (r *Router) RegisterPortalRoutes(
	dashboard *DashboardHandler,
	visits *VisitsHandler,
	documents *DocumentsHandler,
	messages *MessagesHandler,
	alerts *AlertsHandler,
	patients *PatientsHandler,
	notifications *NotificationsHandler,
) {
	r.HandleHandler("/portal/api/v1/dashboard", dashboard)
	r.HandleHandler("/portal/api/v1/visits", visits)
	r.HandleHandler("/portal/api/v1/documents", documents)

	r.HandleHandler("/portal/api/v1/messages", messages)
	r.HandleHandler("/portal/api/v1/messages/read", messages)

	r.HandleHandler("/portal/api/v1/alerts", alerts)
	r.HandleHandler("/portal/api/v1/alerts/acknowledge", alerts)

	r.HandleHandler("/portal/api/v1/patients", patients)

	r.HandleHandler("/portal/api/v1/notifications", notifications)
	r.HandleHandler("/portal/api/v1/notifications/read", notifications)
	r.HandleHandler("/portal/api/v1/notifications/read-all", notifications)
}

// RegisterAdminRoutes 注册管理端路由（agency_admin）
func (r *Router) RegisterAdminRoutes(export *ExportHandler) {
	r.HandleHandler("/portal/api/v1/admin/export/visits", export)
}

// RegisterDemoRoutes 注册演示模式路由（公开前缀）
func (r *Router) RegisterDemoRoutes(demo *DemoHandler) {
	r.HandleHandler("/demo/api/v1/overview", demo)
}

// RegisterHealthz 注册存活探针
func (r *Router) RegisterHealthz() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
