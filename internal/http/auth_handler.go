package httpapi

import (
	"net/http"

	"medihealth-portal/internal/service"

	"go.uber.org/zap"
)

// AuthHandler 认证授权 Handler
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler 创建认证授权 Handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// 路由分发
	switch r.URL.Path {
	case "/auth/api/v1/login":
		h.Login(w, r)
	case "/auth/api/v1/forgot-password/send-code":
		h.SendVerificationCode(w, r)
	case "/auth/api/v1/forgot-password/verify-code":
		h.VerifyCode(w, r)
	case "/auth/api/v1/forgot-password/reset":
		h.ResetPassword(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Login 用户登录
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload map[string]any
	_ = readBodyJSON(r, 1<<20, &payload)

	// 参数优先级：Body > Query
	email, _ := payload["email"].(string)
	if email == "" {
		email = r.URL.Query().Get("email")
	}
	password, _ := payload["password"].(string)

	req := service.LoginRequest{
		Email:     email,
		Password:  password,
		IPAddress: getClientIP(r),
		UserAgent: r.UserAgent(),
	}

	resp, err := h.authService.Login(ctx, req)
	if err != nil {
		// Service 层已经记录了详细的日志，这里只记录错误
		h.logger.Error("Login failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	// 对齐 pc360Front LoginResult
	result := map[string]any{
		"accessToken":  resp.AccessToken,
		"refreshToken": resp.RefreshToken,
		"expiresIn":    resp.ExpiresIn,
		"userId":       resp.UserID,
		"email":        resp.Email,
		"role":         resp.Role,
		"nickName":     resp.NickName,
		"homePath":     resp.HomePath,
	}

	writeJSON(w, http.StatusOK, Ok(result))
}

// SendVerificationCode 发送验证码
func (h *AuthHandler) SendVerificationCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload map[string]any
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	email, _ := payload["email"].(string)

	resp, err := h.authService.SendVerificationCode(ctx, service.SendVerificationCodeRequest{Email: email})
	if err != nil {
		h.logger.Error("SendVerificationCode failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// VerifyCode 验证验证码
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload map[string]any
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	email, _ := payload["email"].(string)
	code, _ := payload["code"].(string)

	resp, err := h.authService.VerifyCode(ctx, service.VerifyCodeRequest{Email: email, Code: code})
	if err != nil {
		h.logger.Error("VerifyCode failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// ResetPassword 重置密码
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload map[string]any
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	token, _ := payload["resetToken"].(string)
	newPassword, _ := payload["newPassword"].(string)

	resp, err := h.authService.ResetPassword(ctx, service.ResetPasswordRequest{ResetToken: token, NewPassword: newPassword})
	if err != nil {
		h.logger.Error("ResetPassword failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}
