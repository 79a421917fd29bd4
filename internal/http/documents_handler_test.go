package httpapi

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"medihealth-portal/internal/domain"

	"go.uber.org/zap"
)

// ============================================
// 测试桩
// ============================================

type fakeProfiles struct {
	profiles map[string]*domain.Profile
}

func (f *fakeProfiles) GetProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	p, ok := f.profiles[profileID]
	if !ok {
		return nil, fmt.Errorf("profile not found: %w", sql.ErrNoRows)
	}
	return p, nil
}

type fakeVisibility struct {
	relationIDs []string
	documentIDs []string
}

func (f *fakeVisibility) VisiblePatientIDs(ctx context.Context, identity domain.Identity, role domain.Role) ([]string, error) {
	return f.relationIDs, nil
}

func (f *fakeVisibility) DocumentPatientIDs(ctx context.Context, identity domain.Identity, role domain.Role) ([]string, error) {
	return f.documentIDs, nil
}

type fakeDocsRepo struct {
	docs    []*domain.Document
	created *domain.Document
}

func (f *fakeDocsRepo) ListByPatients(ctx context.Context, patientIDs []string) ([]*domain.Document, error) {
	out := []*domain.Document{}
	for _, d := range f.docs {
		for _, id := range patientIDs {
			if d.PatientID == id {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (f *fakeDocsRepo) CountByPatients(ctx context.Context, patientIDs []string) (int, error) {
	docs, _ := f.ListByPatients(ctx, patientIDs)
	return len(docs), nil
}

func (f *fakeDocsRepo) CreateDocument(ctx context.Context, doc *domain.Document) (string, error) {
	f.created = doc
	return "new-doc-id", nil
}

func authedRequest(method, target, body string, userID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	identity := &domain.Identity{ID: userID, Email: userID + "@example.com"}
	return req.WithContext(WithIdentity(req.Context(), identity))
}

// ============================================
// 文档 Handler 测试
// ============================================

func testDocumentsHandler(visibility *fakeVisibility, docs *fakeDocsRepo) *DocumentsHandler {
	profiles := &fakeProfiles{profiles: map[string]*domain.Profile{
		"profile-1": {ID: "profile-1", FirstName: "Jane", LastName: "Doe", Role: domain.RolePatient},
	}}
	return NewDocumentsHandler(profiles, visibility, docs, zap.NewNop())
}

func TestDocumentsList_FiltersByVisibleSet(t *testing.T) {
	docs := &fakeDocsRepo{docs: []*domain.Document{
		{ID: "doc-1", PatientID: "patient-1", Title: "Mine", CreatedAt: time.Now()},
		{ID: "doc-2", PatientID: "patient-2", Title: "Someone else", CreatedAt: time.Now()},
	}}
	h := testDocumentsHandler(&fakeVisibility{documentIDs: []string{"patient-1"}}, docs)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(http.MethodGet, "/portal/api/v1/documents", "", "profile-1"))

	body := w.Body.String()
	if !strings.Contains(body, `"code":2000`) {
		t.Fatalf("expected wrapper code=2000, got: %s", body)
	}
	if !strings.Contains(body, `"doc-1"`) || strings.Contains(body, `"doc-2"`) {
		t.Fatalf("expected only doc-1, got: %s", body)
	}
}

func TestDocumentsList_EmptyVisibleSetIsEmptyListNotError(t *testing.T) {
	docs := &fakeDocsRepo{docs: []*domain.Document{
		{ID: "doc-1", PatientID: "patient-1", Title: "Hidden"},
	}}
	h := testDocumentsHandler(&fakeVisibility{documentIDs: []string{}}, docs)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(http.MethodGet, "/portal/api/v1/documents", "", "profile-1"))

	body := w.Body.String()
	if !strings.Contains(body, `"code":2000`) {
		t.Fatalf("expected success wrapper, got: %s", body)
	}
	if !strings.Contains(body, `"total":0`) {
		t.Fatalf("expected empty list, got: %s", body)
	}
	if !strings.Contains(body, `"canUpload":false`) {
		t.Fatalf("expected canUpload=false with empty set, got: %s", body)
	}
}

func TestDocumentsUpload_DeniedOutsideVisibleSet(t *testing.T) {
	docs := &fakeDocsRepo{}
	h := testDocumentsHandler(&fakeVisibility{documentIDs: []string{"patient-1"}}, docs)

	payload := `{"patientId":"patient-2","title":"Sneaky upload"}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(http.MethodPost, "/portal/api/v1/documents", payload, "profile-1"))

	if !strings.Contains(w.Body.String(), `"code":-1`) {
		t.Fatalf("expected failure wrapper, got: %s", w.Body.String())
	}
	if docs.created != nil {
		t.Fatal("document must not be created outside the visible set")
	}
}

func TestDocumentsUpload_AllowedInsideVisibleSet(t *testing.T) {
	docs := &fakeDocsRepo{}
	h := testDocumentsHandler(&fakeVisibility{documentIDs: []string{"patient-1"}}, docs)

	payload := `{"patientId":"patient-1","title":"Insurance card","documentType":"insurance_card"}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(http.MethodPost, "/portal/api/v1/documents", payload, "profile-1"))

	if !strings.Contains(w.Body.String(), `"new-doc-id"`) {
		t.Fatalf("expected created id in response, got: %s", w.Body.String())
	}
	if docs.created == nil || docs.created.UploadedBy != "profile-1" {
		t.Fatalf("expected uploader recorded, got: %+v", docs.created)
	}
}

func TestDocuments_NoIdentityRedirectsToLogin(t *testing.T) {
	h := testDocumentsHandler(&fakeVisibility{}, &fakeDocsRepo{})

	req := httptest.NewRequest(http.MethodGet, "/portal/api/v1/documents", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusFound || w.Header().Get("Location") != LoginPath {
		t.Fatalf("expected redirect to login, got %d %s", w.Code, w.Header().Get("Location"))
	}
}

func TestDocuments_MissingProfileRedirectsToLogin(t *testing.T) {
	h := testDocumentsHandler(&fakeVisibility{}, &fakeDocsRepo{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(http.MethodGet, "/portal/api/v1/documents", "", "ghost-user"))

	if w.Code != http.StatusFound || w.Header().Get("Location") != LoginPath {
		t.Fatalf("expected redirect to login, got %d %s", w.Code, w.Header().Get("Location"))
	}
}
