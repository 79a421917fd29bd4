package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medihealth-portal/internal/authclient"
	"medihealth-portal/internal/config"
	"medihealth-portal/internal/domain"
	"medihealth-portal/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProfilesRepo struct {
	profiles map[string]*domain.Profile
}

func (f *fakeProfilesRepo) GetProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	p, ok := f.profiles[profileID]
	if !ok {
		return nil, fmt.Errorf("profile not found: %w", sql.ErrNoRows)
	}
	return p, nil
}

// fakeAuthServer 模拟托管认证服务的密码授权/管理端端点
func fakeAuthServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/token":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "correct-password" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "tok-abc",
				"refresh_token": "ref-abc",
				"expires_in":    3600,
				"user":          map[string]string{"id": "profile-1", "email": body["email"]},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/admin/users":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"users": []map[string]string{{"id": "profile-1", "email": r.URL.Query().Get("email")}},
			})
		case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/auth/v1/admin/users/"):
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func setupAuthService(t *testing.T) (AuthService, *miniredis.Miniredis) {
	srv := fakeAuthServer(t)
	t.Cleanup(srv.Close)

	provider := authclient.New(config.AuthConfig{
		BaseURL:    srv.URL,
		AnonKey:    "anon-key",
		ServiceKey: "service-key",
	}, zap.NewNop())

	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	profiles := &fakeProfilesRepo{profiles: map[string]*domain.Profile{
		"profile-1": {
			ID:        "profile-1",
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
			Role:      domain.RolePatient,
		},
	}}

	return NewAuthService(provider, profiles, kv, zap.NewNop()), mr
}

func TestLogin_Success(t *testing.T) {
	svc, _ := setupAuthService(t)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Jane@Example.com",
		Password: "correct-password",
	})

	require.NoError(t, err)
	assert.Equal(t, "tok-abc", resp.AccessToken)
	assert.Equal(t, "patient", resp.Role)
	assert.Equal(t, "Jane Doe", resp.NickName)
	assert.Equal(t, "/dashboard", resp.HomePath)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong",
	})

	assert.Error(t, err)
}

func TestLogin_MissingCredentials(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "jane@example.com"})
	assert.Error(t, err)
}

func TestPasswordResetFlow_EndToEnd(t *testing.T) {
	svc, mr := setupAuthService(t)
	ctx := context.Background()

	sent, err := svc.SendVerificationCode(ctx, SendVerificationCodeRequest{Email: "jane@example.com"})
	require.NoError(t, err)
	assert.True(t, sent.Sent)

	// 验证码写入 KV，key 按邮箱归一化
	code, err := mr.Get("pwdreset:code:jane@example.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	verified, err := svc.VerifyCode(ctx, VerifyCodeRequest{Email: "jane@example.com", Code: code})
	require.NoError(t, err)
	require.NotEmpty(t, verified.ResetToken)

	// 验证码一次性：重放失败
	_, err = svc.VerifyCode(ctx, VerifyCodeRequest{Email: "jane@example.com", Code: code})
	assert.Error(t, err)

	reset, err := svc.ResetPassword(ctx, ResetPasswordRequest{
		ResetToken:  verified.ResetToken,
		NewPassword: "new-password-123",
	})
	require.NoError(t, err)
	assert.True(t, reset.Reset)

	// 重置令牌一次性：重放失败
	_, err = svc.ResetPassword(ctx, ResetPasswordRequest{
		ResetToken:  verified.ResetToken,
		NewPassword: "another-password",
	})
	assert.Error(t, err)
}

func TestVerifyCode_WrongCode(t *testing.T) {
	svc, mr := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.SendVerificationCode(ctx, SendVerificationCodeRequest{Email: "jane@example.com"})
	require.NoError(t, err)

	code, err := mr.Get("pwdreset:code:jane@example.com")
	require.NoError(t, err)
	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}

	_, err = svc.VerifyCode(ctx, VerifyCodeRequest{Email: "jane@example.com", Code: wrong})
	assert.Error(t, err)
}

func TestResetPassword_RejectsShortPassword(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		ResetToken:  "whatever",
		NewPassword: "short",
	})
	assert.Error(t, err)
}
