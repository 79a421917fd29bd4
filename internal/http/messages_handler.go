package httpapi

import (
	"net/http"

	"medihealth-portal/internal/domain"
	"medihealth-portal/internal/notify"
	"medihealth-portal/internal/repository"

	"go.uber.org/zap"
)

// MessagesHandler 消息 Handler
// 消息按收发双方归属，不走患者集合过滤
type MessagesHandler struct {
	loader       *profileLoader
	messagesRepo repository.MessagesRepository
	notifsRepo   repository.NotificationsRepository
	publisher    notify.Publisher
	logger       *zap.Logger
}

// NewMessagesHandler 创建消息 Handler
func NewMessagesHandler(
	profiles repository.ProfilesRepository,
	messagesRepo repository.MessagesRepository,
	notifsRepo repository.NotificationsRepository,
	publisher notify.Publisher,
	logger *zap.Logger,
) *MessagesHandler {
	return &MessagesHandler{
		loader:       &profileLoader{profiles: profiles, logger: logger},
		messagesRepo: messagesRepo,
		notifsRepo:   notifsRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *MessagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/portal/api/v1/messages":
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Send(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/portal/api/v1/messages/read":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.MarkRead(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// List 消息列表：box=received（默认）| sent
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	limit := parseInt(r.URL.Query().Get("limit"), 50)

	var msgs []*domain.Message
	var err error
	box := r.URL.Query().Get("box")
	if box == "sent" {
		msgs, err = h.messagesRepo.ListSent(ctx, identity.ID, limit)
	} else {
		msgs, err = h.messagesRepo.ListReceived(ctx, identity.ID, limit)
	}
	if err != nil {
		h.logger.Error("Message list failed", zap.String("user_id", identity.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load messages"))
		return
	}

	unread, err := h.messagesRepo.CountUnread(ctx, identity.ID)
	if err != nil {
		unread = 0
	}

	items := make([]any, 0, len(msgs))
	for _, m := range msgs {
		item := map[string]any{
			"id":            m.ID,
			"senderId":      m.SenderID,
			"senderName":    m.SenderName,
			"senderRole":    m.SenderRole,
			"recipientId":   m.RecipientID,
			"recipientName": m.RecipientName,
			"subject":       m.Subject,
			"body":          m.Body,
			"isRead":        m.IsRead,
			"createdAt":     m.CreatedAt,
		}
		if m.ReadAt != nil {
			item["readAt"] = *m.ReadAt
		}
		if m.ParentMessageID != "" {
			item["parentMessageId"] = m.ParentMessageID
		}
		if m.PatientContextID != "" {
			item["patientContextId"] = m.PatientContextID
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items":  items,
		"total":  len(msgs),
		"unread": unread,
	}))
}

// Send 发送消息，同时给收件人写一条站内通知并推送
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, profile, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var payload map[string]any
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	recipientID, _ := payload["recipientId"].(string)
	subject, _ := payload["subject"].(string)
	body, _ := payload["body"].(string)
	parentID, _ := payload["parentMessageId"].(string)
	patientCtxID, _ := payload["patientContextId"].(string)

	if recipientID == "" || body == "" {
		writeJSON(w, http.StatusOK, Fail("recipientId and body are required"))
		return
	}
	if recipientID == identity.ID {
		writeJSON(w, http.StatusOK, Fail("cannot send a message to yourself"))
		return
	}

	msg := &domain.Message{
		SenderID:         identity.ID,
		RecipientID:      recipientID,
		Subject:          subject,
		Body:             body,
		ParentMessageID:  parentID,
		PatientContextID: patientCtxID,
	}

	id, err := h.messagesRepo.CreateMessage(ctx, msg)
	if err != nil {
		h.logger.Error("Message send failed", zap.String("sender_id", identity.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to send message"))
		return
	}

	// 收件人通知：入库失败不影响消息本身
	excerpt := subject
	if excerpt == "" {
		// 按 rune 截断，不能把多字节字符切半
		if r := []rune(body); len(r) > 120 {
			excerpt = string(r[:120])
		} else {
			excerpt = body
		}
	}
	n := &domain.Notification{
		UserID:    recipientID,
		Title:     "New message from " + profile.FullName(),
		Message:   excerpt,
		Type:      "message",
		Priority:  "normal",
		ActionURL: "/messages",
	}
	if nid, nerr := h.notifsRepo.CreateNotification(ctx, n); nerr != nil {
		h.logger.Warn("Message notification create failed",
			zap.String("recipient_id", recipientID),
			zap.Error(nerr),
		)
	} else {
		n.ID = nid
		if perr := h.publisher.PublishNotification(n); perr != nil {
			h.logger.Warn("Message notification publish failed", zap.Error(perr))
		}
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"id": id}))
}

// MarkRead 标记消息已读（只有收件人本人可标记）
func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}

	var payload map[string]any
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	messageID, _ := payload["id"].(string)
	if messageID == "" {
		writeJSON(w, http.StatusOK, Fail("id is required"))
		return
	}

	if err := h.messagesRepo.MarkRead(r.Context(), messageID, identity.ID); err != nil {
		h.logger.Warn("Message mark read failed",
			zap.String("message_id", messageID),
			zap.String("user_id", identity.ID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail("failed to mark message read"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"read": true}))
}
