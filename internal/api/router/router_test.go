package router

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"uni-portal/backend/config"
	"uni-portal/backend/internal/api/handler"
	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/service"
	"uni-portal/backend/pkg/jwt"
	"uni-portal/backend/pkg/metrics"
)

type stubSnapshot struct{}

func (stubSnapshot) Import(_ context.Context, _ *dto.Snapshot, _ string) (*dto.ImportSnapshotResponse, error) {
	return &dto.ImportSnapshotResponse{Status: "succeeded"}, nil
}

type stubCatalog struct{}

func (stubCatalog) ListTerms(context.Context) ([]string, error) {
	return []string{}, nil
}
func (stubCatalog) ListYears(context.Context) ([]string, error) {
	return []string{}, nil
}
func (stubCatalog) ListMajors(context.Context) ([]dto.MajorResponse, error) {
	return nil, nil
}
func (stubCatalog) ListClasses(context.Context, string, string) ([]dto.ClassResponse, error) {
	return []dto.ClassResponse{}, nil
}
func (stubCatalog) ListSyncRuns(context.Context, *dto.SyncScopeRequest) ([]dto.SyncRunResponse, int64, error) {
	return nil, 0, nil
}
func (stubCatalog) ListLecturerChanges(context.Context, *dto.SyncScopeRequest) ([]dto.LecturerChangeResponse, int64, error) {
	return nil, 0, nil
}

func setupTestRouter(t *testing.T) (http.Handler, *jwt.Manager) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: 1 << 10},
		Auth:   config.AuthConfig{JWTSecret: "test-secret-key-for-unit-testing", Issuer: "uni-portal"},
		Sync:   config.SyncConfig{RateLimit: 5, RateWindow: time.Minute},
	}
	reg := prometheus.NewRegistry()
	metrics.New(reg)

	svc := &service.Service{Snapshot: stubSnapshot{}, Catalog: stubCatalog{}}
	h := handler.NewHandler(svc)
	mgr := jwt.NewManager(&cfg.Auth)
	return Setup(cfg, h, mgr, nil, reg, zap.NewNop()), mgr
}

func TestRouter_PublicEndpoints(t *testing.T) {
	r, _ := setupTestRouter(t)

	for _, path := range []string{"/health", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s expected 200, got %d", path, w.Code)
		}
	}
}

func TestRouter_AdminSync(t *testing.T) {
	r, mgr := setupTestRouter(t)
	adminToken, _ := mgr.GenerateAccessToken("u-admin", "admin", time.Minute)
	viewerToken, _ := mgr.GenerateAccessToken("u-viewer", "viewer", time.Minute)
	body := []byte(`{"year":"2024-2025","term":"1","classes":[]}`)

	tests := []struct {
		name  string
		token string
		body  []byte
		want  int
	}{
		{"未认证", "", body, http.StatusUnauthorized},
		{"非管理员", viewerToken, body, http.StatusForbidden},
		{"管理员", adminToken, body, http.StatusOK},
		{"请求体过大", adminToken, bytes.Repeat([]byte("x"), 2<<10), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/sync", bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if tt.want == http.StatusOK && w.Header().Get("Cache-Control") != "no-store" {
				t.Errorf("同步报告不应被缓存，Cache-Control=%q", w.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestRouter_CatalogRequiresAuth(t *testing.T) {
	r, mgr := setupTestRouter(t)
	token, _ := mgr.GenerateAccessToken("u-viewer", "viewer", time.Minute)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/terms", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/classes?year=2024-2025&term=1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
