package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"medihealth-portal/internal/domain"
	"medihealth-portal/internal/repository"
	"medihealth-portal/internal/service"

	"go.uber.org/zap"
)

// ExportHandler 管理端导出 Handler（仅 agency_admin 可访问）
type ExportHandler struct {
	loader        *profileLoader
	exportService service.ExportService
	logger        *zap.Logger
}

// NewExportHandler 创建导出 Handler
func NewExportHandler(
	profiles repository.ProfilesRepository,
	exportService service.ExportService,
	logger *zap.Logger,
) *ExportHandler {
	return &ExportHandler{
		loader:        &profileLoader{profiles: profiles, logger: logger},
		exportService: exportService,
		logger:        logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.Visits(w, r)
}

// Visits 导出时间窗内的机构全量访视为 Excel
// 默认时间窗：过去 30 天到未来 30 天
func (h *ExportHandler) Visits(w http.ResponseWriter, r *http.Request) {
	identity, profile, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}
	if !h.loader.requireRole(w, r, profile, domain.RoleAgencyAdmin) {
		return
	}
	ctx := r.Context()

	now := time.Now()
	from := parseTimeParam(r.URL.Query().Get("from"), now.AddDate(0, 0, -30))
	to := parseTimeParam(r.URL.Query().Get("to"), now.AddDate(0, 0, 30))

	data, err := h.exportService.ExportVisits(ctx, from, to)
	if err != nil {
		h.logger.Error("Visit export failed", zap.String("user_id", identity.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to export visits"))
		return
	}

	filename := fmt.Sprintf("visits_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// parseTimeParam 解析 RFC3339 或 2006-01-02 格式的时间参数
func parseTimeParam(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return fallback
}
