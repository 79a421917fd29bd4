package httpapi

import (
	"net/http"

	"medihealth-portal/internal/domain"
	"medihealth-portal/internal/repository"

	"go.uber.org/zap"
)

// DashboardPath 角色不匹配时的跳转目标（通用工作台）
const DashboardPath = "/dashboard"

// profileLoader 页面级访问状态机的公共实现：
// 无身份 -> 跳转登录页；档案查不到 -> 跳转登录页；角色不匹配 -> 跳转通用工作台
// 每请求一次性执行，无持久状态
type profileLoader struct {
	profiles repository.ProfilesRepository
	logger   *zap.Logger
}

// requireProfile 取认证身份及其档案；失败时已写好跳转响应，调用方直接 return
func (l *profileLoader) requireProfile(w http.ResponseWriter, r *http.Request) (*domain.Identity, *domain.Profile, bool) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		// fail-open 放行的请求走到这里：页面层面仍要求身份
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return nil, nil, false
	}

	profile, err := l.profiles.GetProfile(r.Context(), identity.ID)
	if err != nil {
		l.logger.Warn("Profile fetch failed, redirecting to login",
			zap.String("user_id", identity.ID),
			zap.Error(err),
		)
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return nil, nil, false
	}
	return identity, profile, true
}

// requireRole 角色门禁；不匹配时跳转通用工作台
func (l *profileLoader) requireRole(w http.ResponseWriter, r *http.Request, profile *domain.Profile, role domain.Role) bool {
	if profile.Role != role {
		http.Redirect(w, r, DashboardPath, http.StatusFound)
		return false
	}
	return true
}
