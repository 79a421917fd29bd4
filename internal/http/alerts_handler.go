package httpapi

import (
	"net/http"

	"medihealth-portal/internal/domain"
	"medihealth-portal/internal/repository"
	"medihealth-portal/internal/service"

	"go.uber.org/zap"
)

// AlertsHandler 临床警报 Handler（仅 clinician 可访问）
// 警报路径的可见范围基于 patient_clinicians 有效关联：关联撤销即不可见
type AlertsHandler struct {
	loader       *profileLoader
	visibility   service.VisibilityService
	patientsRepo repository.PatientsRepository
	alertsRepo   repository.AlertsRepository
	logger       *zap.Logger
}

// NewAlertsHandler 创建警报 Handler
func NewAlertsHandler(
	profiles repository.ProfilesRepository,
	visibility service.VisibilityService,
	patientsRepo repository.PatientsRepository,
	alertsRepo repository.AlertsRepository,
	logger *zap.Logger,
) *AlertsHandler {
	return &AlertsHandler{
		loader:       &profileLoader{profiles: profiles, logger: logger},
		visibility:   visibility,
		patientsRepo: patientsRepo,
		alertsRepo:   alertsRepo,
		logger:       logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AlertsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/portal/api/v1/alerts":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.List(w, r)
	case "/portal/api/v1/alerts/acknowledge":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Acknowledge(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// List 警报列表
func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, profile, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}
	if !h.loader.requireRole(w, r, profile, domain.RoleClinician) {
		return
	}
	ctx := r.Context()

	ids, err := h.visibility.VisiblePatientIDs(ctx, *identity, domain.RoleClinician)
	if err != nil {
		h.logger.Error("Alert visibility failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load alerts"))
		return
	}

	alerts, err := h.alertsRepo.ListByPatients(ctx, ids)
	if err != nil {
		h.logger.Error("Alert list failed", zap.String("user_id", identity.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load alerts"))
		return
	}

	activeCount := 0
	items := make([]any, 0, len(alerts))
	for _, a := range alerts {
		if a.Status == "active" {
			activeCount++
		}
		item := map[string]any{
			"id":          a.ID,
			"patientId":   a.PatientID,
			"patientName": a.PatientName,
			"title":       a.Title,
			"message":     a.Message,
			"severity":    a.Severity,
			"status":      a.Status,
			"createdAt":   a.CreatedAt,
		}
		if a.AcknowledgedAt != nil {
			item["acknowledgedAt"] = *a.AcknowledgedAt
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items":  items,
		"total":  len(alerts),
		"active": activeCount,
	}))
}

// Acknowledge 确认警报
func (h *AlertsHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	identity, profile, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}
	if !h.loader.requireRole(w, r, profile, domain.RoleClinician) {
		return
	}
	ctx := r.Context()

	var payload map[string]any
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	alertID, _ := payload["id"].(string)
	if alertID == "" {
		writeJSON(w, http.StatusOK, Fail("id is required"))
		return
	}

	clinician, err := h.patientsRepo.GetClinicianByProfile(ctx, identity.ID)
	if err != nil {
		h.logger.Warn("Clinician lookup failed", zap.String("profile_id", identity.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("clinician record not found"))
		return
	}

	if err := h.alertsRepo.Acknowledge(ctx, alertID, clinician.ID); err != nil {
		h.logger.Warn("Alert acknowledge failed",
			zap.String("alert_id", alertID),
			zap.String("clinician_id", clinician.ID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail("failed to acknowledge alert"))
		return
	}

	h.logger.Info("Alert acknowledged",
		zap.String("alert_id", alertID),
		zap.String("clinician_id", clinician.ID),
	)
	writeJSON(w, http.StatusOK, Ok(map[string]any{"acknowledged": true}))
}
