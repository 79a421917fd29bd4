package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"medihealth-portal/internal/authclient"
	"medihealth-portal/internal/repository"
	"medihealth-portal/internal/store"

	"go.uber.org/zap"
)

// AuthService 认证授权服务接口
type AuthService interface {
	// 登录功能
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// 密码重置功能
	SendVerificationCode(ctx context.Context, req SendVerificationCodeRequest) (*SendVerificationCodeResponse, error)
	VerifyCode(ctx context.Context, req VerifyCodeRequest) (*VerifyCodeResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*ResetPasswordResponse, error)
}

// authService 实现
type authService struct {
	provider     *authclient.Client
	profilesRepo repository.ProfilesRepository
	kv           store.KV
	logger       *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(provider *authclient.Client, profilesRepo repository.ProfilesRepository, kv store.KV, logger *zap.Logger) AuthService {
	return &authService{
		provider:     provider,
		profilesRepo: profilesRepo,
		kv:           kv,
		logger:       logger,
	}
}

const (
	codeTTL        = 10 * time.Minute
	resetTokenTTL  = 15 * time.Minute
	codeKeyPrefix  = "pwdreset:code:"
	tokenKeyPrefix = "pwdreset:token:"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Email     string // 必填
	Password  string // 必填
	IPAddress string // 客户端 IP（用于日志）
	UserAgent string // 客户端 User-Agent（用于日志）
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	NickName     string `json:"nickName"`
	HomePath     string `json:"homePath"`
}

// Login 用户登录：凭据转交托管认证服务，成功后取档案补全角色与首页路径
func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		s.logger.Warn("User login failed: missing credentials",
			zap.String("ip_address", req.IPAddress),
			zap.String("user_agent", req.UserAgent),
			zap.String("reason", "missing_credentials"),
		)
		return nil, fmt.Errorf("missing credentials")
	}

	token, err := s.provider.PasswordLogin(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn("User login failed: invalid credentials",
			zap.String("ip_address", req.IPAddress),
			zap.String("user_agent", req.UserAgent),
			zap.String("reason", "invalid_credentials"),
		)
		return nil, fmt.Errorf("invalid credentials")
	}

	profile, err := s.profilesRepo.GetProfile(ctx, token.Identity.ID)
	if err != nil {
		// 认证通过但档案缺失：按无档案处理，前端会回到登录页
		s.logger.Warn("User login failed: profile not found",
			zap.String("user_id", token.Identity.ID),
			zap.String("ip_address", req.IPAddress),
		)
		return nil, fmt.Errorf("profile not found")
	}

	s.logger.Info("User login succeeded",
		zap.String("user_id", profile.ID),
		zap.String("role", profile.Role.String()),
		zap.String("ip_address", req.IPAddress),
	)

	return &LoginResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    token.ExpiresIn,
		UserID:       profile.ID,
		Email:        profile.Email,
		Role:         profile.Role.String(),
		NickName:     profile.FullName(),
		HomePath:     profile.Role.HomePath(),
	}, nil
}

// SendVerificationCodeRequest 发送验证码请求
type SendVerificationCodeRequest struct {
	Email string
}

// SendVerificationCodeResponse 发送验证码响应
type SendVerificationCodeResponse struct {
	Sent      bool `json:"sent"`
	ExpiresIn int  `json:"expiresIn"` // 秒
}

// SendVerificationCode 生成 6 位验证码并写入 Redis（10 分钟 TTL）
// 邮件投递由外部协作方完成；为避免账号探测，对未知邮箱同样返回 sent=true
func (s *authService) SendVerificationCode(ctx context.Context, req SendVerificationCodeRequest) (*SendVerificationCodeResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	code, err := randomCode(6)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.kv.Set(ctx, codeKeyPrefix+email, code, codeTTL); err != nil {
		return nil, fmt.Errorf("failed to store verification code: %w", err)
	}

	s.logger.Info("Password reset code issued", zap.String("email", email))

	return &SendVerificationCodeResponse{Sent: true, ExpiresIn: int(codeTTL.Seconds())}, nil
}

// VerifyCodeRequest 验证验证码请求
type VerifyCodeRequest struct {
	Email string
	Code  string
}

// VerifyCodeResponse 验证验证码响应
type VerifyCodeResponse struct {
	ResetToken string `json:"resetToken"`
	ExpiresIn  int    `json:"expiresIn"`
}

// VerifyCode 校验验证码，通过后签发一次性重置令牌（15 分钟 TTL）
func (s *authService) VerifyCode(ctx context.Context, req VerifyCodeRequest) (*VerifyCodeResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Code == "" {
		return nil, fmt.Errorf("email and code are required")
	}

	stored, err := s.kv.Get(ctx, codeKeyPrefix+email)
	if err != nil || stored != req.Code {
		return nil, fmt.Errorf("invalid or expired code")
	}

	// 验证码一次性：校验通过即删除
	_ = s.kv.Delete(ctx, codeKeyPrefix+email)

	token, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.kv.Set(ctx, tokenKeyPrefix+token, email, resetTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store reset token: %w", err)
	}

	return &VerifyCodeResponse{ResetToken: token, ExpiresIn: int(resetTokenTTL.Seconds())}, nil
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	ResetToken  string
	NewPassword string
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	Reset bool `json:"reset"`
}

// ResetPassword 消费重置令牌，委托认证服务更新密码
func (s *authService) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*ResetPasswordResponse, error) {
	if req.ResetToken == "" || req.NewPassword == "" {
		return nil, fmt.Errorf("token and new password are required")
	}
	if len(req.NewPassword) < 8 {
		return nil, fmt.Errorf("password too short")
	}

	email, err := s.kv.Get(ctx, tokenKeyPrefix+req.ResetToken)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token")
	}

	userID, err := s.provider.FindUserIDByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if err := s.provider.AdminSetPassword(ctx, userID, req.NewPassword); err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	// 令牌一次性
	_ = s.kv.Delete(ctx, tokenKeyPrefix+req.ResetToken)

	s.logger.Info("Password reset completed", zap.String("email", email))

	return &ResetPasswordResponse{Reset: true}, nil
}

// randomCode 生成 n 位数字验证码
func randomCode(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}

// randomToken 生成 n 字节随机令牌（hex 编码）
func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
