package httpapi

import (
	"net/http"

	"medihealth-portal/internal/domain"
	"medihealth-portal/internal/repository"
	"medihealth-portal/internal/service"

	"go.uber.org/zap"
)

// DocumentsHandler 文档 Handler
// 文档路径的可见性与关系表路径不同：临床人员基于全部历史访视（访视历史不可撤销）
type DocumentsHandler struct {
	loader     *profileLoader
	visibility service.VisibilityService
	docsRepo   repository.DocumentsRepository
	logger     *zap.Logger
}

// NewDocumentsHandler 创建文档 Handler
func NewDocumentsHandler(
	profiles repository.ProfilesRepository,
	visibility service.VisibilityService,
	docsRepo repository.DocumentsRepository,
	logger *zap.Logger,
) *DocumentsHandler {
	return &DocumentsHandler{
		loader:     &profileLoader{profiles: profiles, logger: logger},
		visibility: visibility,
		docsRepo:   docsRepo,
		logger:     logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Upload(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// List 文档列表
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, profile, ok := h.loader.requireProfile(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	ids, err := h.visibility.DocumentPatientIDs(ctx, *identity, profile.Role)
	if err != nil {
		h.logger.Error("Document visibility failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load documents"))
		return
	}

	docs, err := h.docsRepo.ListByPatients(ctx, ids)
	if err != nil {
		h.logger.Error("Document list failed", zap.String("user_id", identity.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load documents"))
		return
	}

	items := make([]any, 0, len(docs))
	for _, d := range docs {
		item := map[string]any{
			"id":           d.ID,
			"patientId":    d.PatientID,
			"title":        d.Title,
			"documentType": d.DocumentType,
			"uploaderName": d.UploaderName,
			"uploaderRole": d.UploaderRole,
			"createdAt":    d.CreatedAt,
		}
		if d.FileURL != "" {
			item["fileUrl"] = d.FileURL
		}
		if d.FileSize > 0 {
			item["fileSize"] = d.FileSize
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items":     items,
		"total":     len(docs),
		"canUpload": canUploadDocuments(profile.Role, ids),
	}))
}

// Upload 新建文档元数据（文件本体在外部对象存储）
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
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

	patientID, _ := payload["patientId"].(string)
	title, _ := payload["title"].(string)
	docType, _ := payload["documentType"].(string)
	fileURL, _ := payload["fileUrl"].(string)
	fileSize, _ := payload["fileSize"].(float64)

	if patientID == "" || title == "" {
		writeJSON(w, http.StatusOK, Fail("patientId and title are required"))
		return
	}

	// 上传目标必须在本人的文档可见集合内
	ids, err := h.visibility.DocumentPatientIDs(ctx, *identity, profile.Role)
	if err != nil {
		h.logger.Error("Document visibility failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to resolve access"))
		return
	}
	if !canUploadDocuments(profile.Role, ids) || !containsID(ids, patientID) {
		h.logger.Warn("Document upload denied",
			zap.String("user_id", identity.ID),
			zap.String("role", profile.Role.String()),
			zap.String("patient_id", patientID),
		)
		writeJSON(w, http.StatusOK, Fail("no access to this patient"))
		return
	}

	if docType == "" {
		docType = "other"
	}
	doc := &domain.Document{
		PatientID:    patientID,
		UploadedBy:   identity.ID,
		Title:        title,
		DocumentType: docType,
		FileURL:      fileURL,
		FileSize:     int64(fileSize),
	}

	id, err := h.docsRepo.CreateDocument(ctx, doc)
	if err != nil {
		h.logger.Error("Document create failed", zap.String("user_id", identity.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to save document"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"id": id}))
}

// canUploadDocuments 上传权限：患者/护理人员/临床人员，且可见集合非空
func canUploadDocuments(role domain.Role, visibleIDs []string) bool {
	switch role {
	case domain.RolePatient, domain.RoleCaregiver, domain.RoleClinician:
		return len(visibleIDs) > 0
	case domain.RoleAgencyAdmin, domain.RoleVendor:
		return false
	}
	return false
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
