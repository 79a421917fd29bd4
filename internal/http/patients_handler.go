package httpapi

import (
	"net/http"

	"medihealth-portal/internal/repository"
	"medihealth-portal/internal/service"

	"go.uber.org/zap"
)

// PatientsHandler 患者名册 Handler
// 名册内容就是调用者的可见患者集合，带档案信息
type PatientsHandler struct {
	loader       *profileLoader
	visibility   service.VisibilityService
	patientsRepo repository.PatientsRepository
	logger       *zap.Logger
}

// NewPatientsHandler 创建患者名册 Handler
func NewPatientsHandler(
	profiles repository.ProfilesRepository,
	visibility service.VisibilityService,
	patientsRepo repository.PatientsRepository,
	logger *zap.Logger,
) *PatientsHandler {
	return &PatientsHandler{
		loader:       &profileLoader{profiles: profiles, logger: logger},
		visibility:   visibility,
		patientsRepo: patientsRepo,
		logger:       logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *PatientsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.List(w, r)
}

// List 患者名册
func (h *PatientsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, profile, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	ids, err := h.visibility.VisiblePatientIDs(ctx, *identity, profile.Role)
	if err != nil {
		h.logger.Error("Patient visibility failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load patients"))
		return
	}

	patients, err := h.patientsRepo.ListPatientsByIDs(ctx, ids)
	if err != nil {
		h.logger.Error("Patient list failed", zap.String("user_id", identity.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load patients"))
		return
	}

	items := make([]any, 0, len(patients))
	for _, p := range patients {
		item := map[string]any{
			"id":     p.ID,
			"status": p.Status,
		}
		if p.Profile != nil {
			item["name"] = p.Profile.FullName()
			item["email"] = p.Profile.Email
		}
		if p.MedicalRecordNumber != "" {
			item["medicalRecordNumber"] = p.MedicalRecordNumber
		}
		if p.PrimaryDiagnosis != "" {
			item["primaryDiagnosis"] = p.PrimaryDiagnosis
		}
		if p.AdmissionDate != nil {
			item["admissionDate"] = *p.AdmissionDate
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": len(patients),
	}))
}
