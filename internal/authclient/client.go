package authclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"medihealth-portal/internal/config"
	"medihealth-portal/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNotConfigured 认证服务未配置（缺 BaseURL 或 AnonKey）
// 路由守卫对该错误执行 fail-open 放行
var ErrNotConfigured = errors.New("auth provider not configured")

// ErrUnavailable 认证服务不可达（网络/5xx）
var ErrUnavailable = errors.New("auth provider unavailable")

// Client 托管认证服务 API 客户端
// 会话校验每请求一次，不做跨请求缓存（会话可能随时被吊销）
type Client struct {
	httpClient *resty.Client
	anonKey    string
	serviceKey string
	configured bool
	logger     *zap.Logger
}

// New 创建认证服务客户端
func New(cfg config.AuthConfig, logger *zap.Logger) *Client {
	configured := cfg.BaseURL != "" && cfg.AnonKey != ""

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.AnonKey != "" {
		client.SetHeader("apikey", cfg.AnonKey)
	}

	return &Client{
		httpClient: client,
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceKey,
		configured: configured,
		logger:     logger,
	}
}

// userPayload /auth/v1/user 响应体
type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// tokenPayload /auth/v1/token 响应体
type tokenPayload struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         userPayload `json:"user"`
}

// TokenResult 密码登录结果
type TokenResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	Identity     domain.Identity
}

// CurrentIdentity 校验 access token 并返回对应身份
// 返回 (nil, nil) 表示确定无会话；ErrNotConfigured / ErrUnavailable 由守卫决定放行策略
func (c *Client) CurrentIdentity(ctx context.Context, accessToken string) (*domain.Identity, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}
	if accessToken == "" {
		return nil, nil
	}

	var payload userPayload
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&payload).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusOK:
		if payload.ID == "" {
			return nil, nil
		}
		return &domain.Identity{ID: payload.ID, Email: payload.Email}, nil
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		// Token 过期或被吊销：确定无会话
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
}

// PasswordLogin 邮箱+密码登录
func (c *Client) PasswordLogin(ctx context.Context, email, password string) (*TokenResult, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	var payload tokenPayload
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&payload).
		Post("/auth/v1/token")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("invalid credentials")
	}

	return &TokenResult{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresIn:    payload.ExpiresIn,
		Identity:     domain.Identity{ID: payload.User.ID, Email: payload.User.Email},
	}, nil
}

// AdminSetPassword 管理端重置用户密码（忘记密码流程最后一步）
// 需要 ServiceKey；未配置时返回 ErrNotConfigured
func (c *Client) AdminSetPassword(ctx context.Context, userID, newPassword string) error {
	if !c.configured || c.serviceKey == "" {
		return ErrNotConfigured
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.serviceKey).
		SetBody(map[string]string{"password": newPassword}).
		Put("/auth/v1/admin/users/" + userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to set password: status %d", resp.StatusCode())
	}
	return nil
}

// FindUserIDByEmail 按邮箱查找认证服务侧的用户 ID（忘记密码流程）
func (c *Client) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	if !c.configured || c.serviceKey == "" {
		return "", ErrNotConfigured
	}

	var payload struct {
		Users []userPayload `json:"users"`
	}
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.serviceKey).
		SetQueryParam("email", email).
		SetResult(&payload).
		Get("/auth/v1/admin/users")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK || len(payload.Users) == 0 {
		return "", fmt.Errorf("user not found")
	}
	return payload.Users[0].ID, nil
}
