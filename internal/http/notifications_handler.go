package httpapi

import (
	"net/http"

	"medihealth-portal/internal/repository"

	"go.uber.org/zap"
)

// NotificationsHandler 站内通知 Handler（通知铃铛）
type NotificationsHandler struct {
	loader     *profileLoader
	notifsRepo repository.NotificationsRepository
	logger     *zap.Logger
}

// NewNotificationsHandler 创建通知 Handler
func NewNotificationsHandler(
	profiles repository.ProfilesRepository,
	notifsRepo repository.NotificationsRepository,
	logger *zap.Logger,
) *NotificationsHandler {
	return &NotificationsHandler{
		loader:     &profileLoader{profiles: profiles, logger: logger},
		notifsRepo: notifsRepo,
		logger:     logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *NotificationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/portal/api/v1/notifications":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.List(w, r)
	case "/portal/api/v1/notifications/read":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.MarkRead(w, r)
	case "/portal/api/v1/notifications/read-all":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.MarkAllRead(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// List 通知列表 + 未读角标
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	limit := parseInt(r.URL.Query().Get("limit"), 50)

	notifs, err := h.notifsRepo.ListByUser(ctx, identity.ID, limit)
	if err != nil {
		h.logger.Error("Notification list failed", zap.String("user_id", identity.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load notifications"))
		return
	}

	unread, err := h.notifsRepo.CountUnread(ctx, identity.ID)
	if err != nil {
		unread = 0
	}

	items := make([]any, 0, len(notifs))
	for _, n := range notifs {
		item := map[string]any{
			"id":        n.ID,
			"title":     n.Title,
			"message":   n.Message,
			"type":      n.Type,
			"priority":  n.Priority,
			"isRead":    n.IsRead,
			"createdAt": n.CreatedAt,
		}
		if n.ActionURL != "" {
			item["actionUrl"] = n.ActionURL
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items":  items,
		"total":  len(notifs),
		"unread": unread,
	}))
}

// MarkRead 标记单条已读
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}

	var payload map[string]any
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	notificationID, _ := payload["id"].(string)
	if notificationID == "" {
		writeJSON(w, http.StatusOK, Fail("id is required"))
		return
	}

	if err := h.notifsRepo.MarkRead(r.Context(), notificationID, identity.ID); err != nil {
		h.logger.Warn("Notification mark read failed",
			zap.String("notification_id", notificationID),
			zap.String("user_id", identity.ID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail("failed to mark notification read"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"read": true}))
}

// MarkAllRead 全部标记已读
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}

	if err := h.notifsRepo.MarkAllRead(r.Context(), identity.ID); err != nil {
		h.logger.Warn("Notification mark all read failed", zap.String("user_id", identity.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to mark notifications read"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"read": true}))
}
