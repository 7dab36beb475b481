package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/models"
)

// fakeSyncer records which engine entry point a request reached.
type fakeSyncer struct {
	fullCalls        int
	incrementalCalls int
	incrementalErr   error
	last             *models.SyncStats
}

func (f *fakeSyncer) FullSync(ctx context.Context) (*models.SyncStats, error) {
	f.fullCalls++
	return &models.SyncStats{Added: 2}, nil
}

func (f *fakeSyncer) IncrementalSync(ctx context.Context) (*models.SyncStats, error) {
	f.incrementalCalls++
	if f.incrementalErr != nil {
		return nil, f.incrementalErr
	}
	return &models.SyncStats{Updated: 1}, nil
}

func (f *fakeSyncer) Preview(ctx context.Context) (*models.Preview, error) {
	return &models.Preview{NeverExported: 3}, nil
}

func (f *fakeSyncer) LastStats() *models.SyncStats { return f.last }

func serve(t *testing.T, r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSync_DefaultsToFull(t *testing.T) {
	f := &fakeSyncer{}
	r := NewRouter(f, false, "", nil, nil)

	rec := serve(t, r, http.MethodPost, "/api/sync", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	if f.fullCalls != 1 || f.incrementalCalls != 0 {
		t.Errorf("calls: full=%d incremental=%d", f.fullCalls, f.incrementalCalls)
	}

	var resp SyncResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Mode != "full" || resp.Stats == nil || resp.Stats.Added != 2 {
		t.Errorf("response = %+v", resp)
	}
}

func TestSync_IncrementalMode(t *testing.T) {
	f := &fakeSyncer{}
	r := NewRouter(f, false, "", nil, nil)

	rec := serve(t, r, http.MethodPost, "/api/sync?mode=incremental", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if f.incrementalCalls != 1 {
		t.Errorf("incremental calls = %d", f.incrementalCalls)
	}
}

func TestSync_RejectsUnknownMode(t *testing.T) {
	f := &fakeSyncer{}
	r := NewRouter(f, false, "", nil, nil)

	rec := serve(t, r, http.MethodPost, "/api/sync?mode=sideways", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rec.Code)
	}
	if f.fullCalls != 0 && f.incrementalCalls != 0 {
		t.Error("engine reached despite invalid mode")
	}
}

func TestSync_NoBookmarkConflict(t *testing.T) {
	f := &fakeSyncer{incrementalErr: apperr.ErrNoBookmark}
	r := NewRouter(f, false, "", nil, nil)

	rec := serve(t, r, http.MethodPost, "/api/sync?mode=incremental", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("code = %d, want 409", rec.Code)
	}
	var resp errResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "no_bookmark" {
		t.Errorf("code = %q, want no_bookmark", resp.Code)
	}
}

func TestPreview(t *testing.T) {
	r := NewRouter(&fakeSyncer{}, false, "", nil, nil)

	rec := serve(t, r, http.MethodGet, "/api/preview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var pv models.Preview
	if err := json.Unmarshal(rec.Body.Bytes(), &pv); err != nil {
		t.Fatal(err)
	}
	if pv.NeverExported != 3 {
		t.Errorf("never exported = %d", pv.NeverExported)
	}
}

func TestStatus(t *testing.T) {
	f := &fakeSyncer{}
	r := NewRouter(f, false, "", nil, nil)

	rec := serve(t, r, http.MethodGet, "/api/status", "")
	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.State != "never-synced" {
		t.Errorf("state = %q, want never-synced", resp.State)
	}

	f.last = &models.SyncStats{Added: 1}
	rec = serve(t, r, http.MethodGet, "/api/status", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.State != "idle" || resp.LastStats == nil || resp.LastStats.Added != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestAuthMiddleware(t *testing.T) {
	r := NewRouter(&fakeSyncer{}, true, "s3cret", nil, nil)

	if rec := serve(t, r, http.MethodGet, "/api/status", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: code = %d, want 401", rec.Code)
	}
	if rec := serve(t, r, http.MethodGet, "/api/status", "wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: code = %d, want 401", rec.Code)
	}
	if rec := serve(t, r, http.MethodGet, "/api/status", "s3cret"); rec.Code != http.StatusOK {
		t.Errorf("valid token: code = %d, want 200", rec.Code)
	}
}

func TestHealthzBypassesAuth(t *testing.T) {
	r := NewRouter(&fakeSyncer{}, true, "s3cret", nil, nil)
	if rec := serve(t, r, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", rec.Code)
	}
}

func TestWebhookMountedOutsideAuth(t *testing.T) {
	called := false
	hook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	r := NewRouter(&fakeSyncer{}, true, "s3cret", hook, nil)

	rec := serve(t, r, http.MethodPost, "/webhook", "")
	if rec.Code != http.StatusOK || !called {
		t.Errorf("code = %d, called = %v", rec.Code, called)
	}
}
