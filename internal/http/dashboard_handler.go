package httpapi

import (
	"net/http"
	"time"

	"medihealth-portal/internal/domain"
	"medihealth-portal/internal/repository"
	"medihealth-portal/internal/service"

	"go.uber.org/zap"
)

// DashboardHandler 工作台汇总 Handler
// 按角色返回不同的汇总数据：患者/护理人员看自己的可见患者集合，
// 临床人员看当日排程与警报，机构管理员看机构概览入口
type DashboardHandler struct {
	loader       *profileLoader
	visibility   service.VisibilityService
	patientsRepo repository.PatientsRepository
	visitsRepo   repository.VisitsRepository
	docsRepo     repository.DocumentsRepository
	messagesRepo repository.MessagesRepository
	alertsRepo   repository.AlertsRepository
	notifsRepo   repository.NotificationsRepository
	logger       *zap.Logger
}

// NewDashboardHandler 创建工作台 Handler
func NewDashboardHandler(
	profiles repository.ProfilesRepository,
	visibility service.VisibilityService,
	patientsRepo repository.PatientsRepository,
	visitsRepo repository.VisitsRepository,
	docsRepo repository.DocumentsRepository,
	messagesRepo repository.MessagesRepository,
	alertsRepo repository.AlertsRepository,
	notifsRepo repository.NotificationsRepository,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		loader:       &profileLoader{profiles: profiles, logger: logger},
		visibility:   visibility,
		patientsRepo: patientsRepo,
		visitsRepo:   visitsRepo,
		docsRepo:     docsRepo,
		messagesRepo: messagesRepo,
		alertsRepo:   alertsRepo,
		notifsRepo:   notifsRepo,
		logger:       logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.Overview(w, r)
}

// Overview 工作台汇总
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	identity, profile, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	result := map[string]any{
		"role":     profile.Role.String(),
		"nickName": profile.FullName(),
		"homePath": profile.Role.HomePath(),
	}

	// 角色分支穷举
	switch profile.Role {
	case domain.RolePatient, domain.RoleCaregiver:
		ids, err := h.visibility.VisiblePatientIDs(ctx, *identity, profile.Role)
		if err != nil {
			h.logger.Error("Dashboard visibility failed", zap.Error(err))
			writeJSON(w, http.StatusOK, Fail("failed to load dashboard"))
			return
		}
		h.fillCareDashboard(r, result, identity.ID, ids)

	case domain.RoleClinician:
		h.fillClinicianDashboard(r, result, identity)

	case domain.RoleAgencyAdmin:
		// 管理端入口：导出等管理功能在各自路由下
		result["stats"] = map[string]any{}

	case domain.RoleVendor:
		result["stats"] = map[string]any{}
	}

	unreadNotifs, err := h.notifsRepo.CountUnread(ctx, identity.ID)
	if err != nil {
		h.logger.Warn("Unread notification count failed", zap.String("user_id", identity.ID), zap.Error(err))
		unreadNotifs = 0
	}
	result["unreadNotifications"] = unreadNotifs

	writeJSON(w, http.StatusOK, Ok(result))
}

// fillCareDashboard 患者/护理人员视角：可见患者集合驱动的汇总
func (h *DashboardHandler) fillCareDashboard(r *http.Request, result map[string]any, userID string, patientIDs []string) {
	ctx := r.Context()
	now := time.Now()

	upcoming, err := h.visitsRepo.ListUpcomingByPatients(ctx, patientIDs, now, 5)
	if err != nil {
		h.logger.Warn("Upcoming visits load failed", zap.String("user_id", userID), zap.Error(err))
		upcoming = nil
	}

	docCount, err := h.docsRepo.CountByPatients(ctx, patientIDs)
	if err != nil {
		h.logger.Warn("Document count failed", zap.String("user_id", userID), zap.Error(err))
		docCount = 0
	}

	unreadMsgs, err := h.messagesRepo.CountUnread(ctx, userID)
	if err != nil {
		h.logger.Warn("Unread message count failed", zap.String("user_id", userID), zap.Error(err))
		unreadMsgs = 0
	}

	recent, err := h.messagesRepo.ListReceived(ctx, userID, 5)
	if err != nil {
		h.logger.Warn("Recent messages load failed", zap.String("user_id", userID), zap.Error(err))
		recent = nil
	}
	recentItems := make([]any, 0, len(recent))
	for _, m := range recent {
		recentItems = append(recentItems, map[string]any{
			"id":         m.ID,
			"senderName": m.SenderName,
			"subject":    m.Subject,
			"isRead":     m.IsRead,
			"createdAt":  m.CreatedAt,
		})
	}

	result["patientCount"] = len(patientIDs)
	result["upcomingVisits"] = visitItems(upcoming)
	result["recentMessages"] = recentItems
	result["stats"] = map[string]any{
		"upcomingVisitCount": len(upcoming),
		"documentCount":      docCount,
		"unreadMessageCount": unreadMsgs,
	}
}

// fillClinicianDashboard 临床人员视角：当日排程 + 未处理警报
func (h *DashboardHandler) fillClinicianDashboard(r *http.Request, result map[string]any, identity *domain.Identity) {
	ctx := r.Context()
	now := time.Now()

	clinician, err := h.patientsRepo.GetClinicianByProfile(ctx, identity.ID)
	if err != nil {
		// 档案角色是 clinician 但实体缺失：空汇总
		h.logger.Warn("Clinician lookup failed", zap.String("profile_id", identity.ID), zap.Error(err))
		result["todayVisits"] = []any{}
		result["stats"] = map[string]any{}
		return
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := h.visitsRepo.ListByClinicianBetween(ctx, clinician.ID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		h.logger.Warn("Today schedule load failed", zap.String("clinician_id", clinician.ID), zap.Error(err))
		today = nil
	}

	upcomingCount, err := h.visitsRepo.CountUpcomingByClinician(ctx, clinician.ID, now)
	if err != nil {
		h.logger.Warn("Upcoming visit count failed", zap.String("clinician_id", clinician.ID), zap.Error(err))
		upcomingCount = 0
	}

	// 警报角标走有效关联路径
	ids, err := h.visibility.VisiblePatientIDs(ctx, *identity, domain.RoleClinician)
	if err != nil {
		ids = []string{}
	}
	activeAlerts, err := h.alertsRepo.CountActiveByPatients(ctx, ids)
	if err != nil {
		h.logger.Warn("Active alert count failed", zap.String("clinician_id", clinician.ID), zap.Error(err))
		activeAlerts = 0
	}

	unreadMsgs, err := h.messagesRepo.CountUnread(ctx, identity.ID)
	if err != nil {
		unreadMsgs = 0
	}

	result["todayVisits"] = visitItems(today)
	result["stats"] = map[string]any{
		"todayVisitCount":    len(today),
		"upcomingVisitCount": upcomingCount,
		"activeAlertCount":   activeAlerts,
		"unreadMessageCount": unreadMsgs,
	}
}

// visitItems 访视列表的响应结构（对齐 pc360Front VisitCard）
func visitItems(visits []*domain.Visit) []any {
	items := make([]any, 0, len(visits))
	for _, v := range visits {
		item := map[string]any{
			"id":             v.ID,
			"patientId":      v.PatientID,
			"patientName":    v.PatientName,
			"clinicianId":    v.ClinicianID,
			"clinicianName":  v.ClinicianName,
			"visitType":      v.VisitType,
			"status":         v.Status,
			"scheduledStart": v.ScheduledStart,
			"scheduledEnd":   v.ScheduledEnd,
		}
		if v.ActualStart != nil {
			item["actualStart"] = *v.ActualStart
		}
		if v.ActualEnd != nil {
			item["actualEnd"] = *v.ActualEnd
		}
		if v.VisitNotes != "" {
			item["visitNotes"] = v.VisitNotes
		}
		items = append(items, item)
	}
	return items
}
