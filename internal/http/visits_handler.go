package httpapi

import (
	"net/http"

	"medihealth-portal/internal/domain"
	"medihealth-portal/internal/repository"
	"medihealth-portal/internal/service"

	"go.uber.org/zap"
)

// VisitsHandler 访视列表 Handler
// 患者/护理人员按可见患者集合过滤；临床人员看自己名下的排程
type VisitsHandler struct {
	loader       *profileLoader
	visibility   service.VisibilityService
	patientsRepo repository.PatientsRepository
	visitsRepo   repository.VisitsRepository
	logger       *zap.Logger
}

// NewVisitsHandler 创建访视 Handler
func NewVisitsHandler(
	profiles repository.ProfilesRepository,
	visibility service.VisibilityService,
	patientsRepo repository.PatientsRepository,
	visitsRepo repository.VisitsRepository,
	logger *zap.Logger,
) *VisitsHandler {
	return &VisitsHandler{
		loader:       &profileLoader{profiles: profiles, logger: logger},
		visibility:   visibility,
		patientsRepo: patientsRepo,
		visitsRepo:   visitsRepo,
		logger:       logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *VisitsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.List(w, r)
}

// List 访视列表
func (h *VisitsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, profile, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var visits []*domain.Visit
	var err error

	switch profile.Role {
	case domain.RoleClinician:
		clinician, cerr := h.patientsRepo.GetClinicianByProfile(ctx, identity.ID)
		if cerr != nil {
			h.logger.Warn("Clinician lookup failed", zap.String("profile_id", identity.ID), zap.Error(cerr))
			writeJSON(w, http.StatusOK, Ok(map[string]any{"items": []any{}, "total": 0}))
			return
		}
		visits, err = h.visitsRepo.ListByClinician(ctx, clinician.ID)

	case domain.RolePatient, domain.RoleCaregiver:
		ids, verr := h.visibility.VisiblePatientIDs(ctx, *identity, profile.Role)
		if verr != nil {
			h.logger.Error("Visit visibility failed", zap.Error(verr))
			writeJSON(w, http.StatusOK, Fail("failed to load visits"))
			return
		}
		visits, err = h.visitsRepo.ListByPatients(ctx, ids)

	case domain.RoleAgencyAdmin, domain.RoleVendor:
		// 无访视可见范围：空列表
		writeJSON(w, http.StatusOK, Ok(map[string]any{"items": []any{}, "total": 0}))
		return
	}

	if err != nil {
		h.logger.Error("Visit list failed", zap.String("user_id", identity.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load visits"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": visitItems(visits),
		"total": len(visits),
	}))
}
