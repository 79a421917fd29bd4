package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"medihealth-portal/internal/domain"

	"go.uber.org/zap"
)

// ============================================
// 测试桩
// ============================================

type fakeMessagesRepo struct {
	created *domain.Message
}

func (f *fakeMessagesRepo) ListReceived(ctx context.Context, recipientID string, limit int) ([]*domain.Message, error) {
	return []*domain.Message{}, nil
}

func (f *fakeMessagesRepo) ListSent(ctx context.Context, senderID string, limit int) ([]*domain.Message, error) {
	return []*domain.Message{}, nil
}

func (f *fakeMessagesRepo) CountUnread(ctx context.Context, recipientID string) (int, error) {
	return 0, nil
}

func (f *fakeMessagesRepo) CreateMessage(ctx context.Context, msg *domain.Message) (string, error) {
	f.created = msg
	return "new-msg-id", nil
}

func (f *fakeMessagesRepo) MarkRead(ctx context.Context, messageID, recipientID string) error {
	return nil
}

type fakeNotifsRepo struct {
	created *domain.Notification
}

func (f *fakeNotifsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	return []*domain.Notification{}, nil
}

func (f *fakeNotifsRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (f *fakeNotifsRepo) CreateNotification(ctx context.Context, n *domain.Notification) (string, error) {
	f.created = n
	return "new-notif-id", nil
}

func (f *fakeNotifsRepo) MarkRead(ctx context.Context, notificationID, userID string) error {
	return nil
}

func (f *fakeNotifsRepo) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

type capturingPublisher struct {
	published *domain.Notification
}

func (p *capturingPublisher) PublishNotification(n *domain.Notification) error {
	p.published = n
	return nil
}

func (p *capturingPublisher) Close() {}

// ============================================
// 消息 Handler 测试
// ============================================

func testMessagesHandler(msgs *fakeMessagesRepo, notifs *fakeNotifsRepo, pub *capturingPublisher) *MessagesHandler {
	profiles := &fakeProfiles{profiles: map[string]*domain.Profile{
		"profile-1": {ID: "profile-1", FirstName: "Jane", LastName: "Doe", Role: domain.RolePatient},
	}}
	return NewMessagesHandler(profiles, msgs, notifs, pub, zap.NewNop())
}

func TestMessagesSend_CreatesMessageAndNotification(t *testing.T) {
	msgs := &fakeMessagesRepo{}
	notifs := &fakeNotifsRepo{}
	pub := &capturingPublisher{}
	h := testMessagesHandler(msgs, notifs, pub)

	body := `{"recipientId":"profile-2","subject":"Visit question","body":"When is my next visit?"}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(http.MethodPost, "/portal/api/v1/messages", body, "profile-1"))

	if !strings.Contains(w.Body.String(), `"code":2000`) {
		t.Fatalf("expected wrapper code=2000, got: %s", w.Body.String())
	}
	if msgs.created == nil || msgs.created.RecipientID != "profile-2" {
		t.Fatalf("expected message created for profile-2, got: %+v", msgs.created)
	}
	if notifs.created == nil || notifs.created.Message != "Visit question" {
		t.Fatalf("expected notification with subject as excerpt, got: %+v", notifs.created)
	}
	if pub.published == nil || pub.published.UserID != "profile-2" {
		t.Fatalf("expected notification published to recipient, got: %+v", pub.published)
	}
}

func TestMessagesSend_RejectsSelfSend(t *testing.T) {
	h := testMessagesHandler(&fakeMessagesRepo{}, &fakeNotifsRepo{}, &capturingPublisher{})

	body := `{"recipientId":"profile-1","body":"note to self"}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(http.MethodPost, "/portal/api/v1/messages", body, "profile-1"))

	if !strings.Contains(w.Body.String(), "cannot send a message to yourself") {
		t.Fatalf("expected self-send rejection, got: %s", w.Body.String())
	}
}

// 无主题时通知摘要取正文前 120 个字符：截断必须落在 rune 边界，
// 多字节字符不能被切成非法 UTF-8
func TestMessagesSend_ExcerptTruncatesOnRuneBoundary(t *testing.T) {
	msgs := &fakeMessagesRepo{}
	notifs := &fakeNotifsRepo{}
	h := testMessagesHandler(msgs, notifs, &capturingPublisher{})

	longBody := strings.Repeat("疼", 150)
	body := `{"recipientId":"profile-2","body":"` + longBody + `"}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(http.MethodPost, "/portal/api/v1/messages", body, "profile-1"))

	if !strings.Contains(w.Body.String(), `"code":2000`) {
		t.Fatalf("expected wrapper code=2000, got: %s", w.Body.String())
	}
	if notifs.created == nil {
		t.Fatal("expected a notification to be created")
	}
	excerpt := notifs.created.Message
	if !utf8.ValidString(excerpt) {
		t.Fatalf("excerpt is not valid UTF-8: %q", excerpt)
	}
	if got := utf8.RuneCountInString(excerpt); got != 120 {
		t.Fatalf("expected excerpt of 120 runes, got %d", got)
	}
}
