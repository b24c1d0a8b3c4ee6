package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	storageadapter "github.com/pranishuprety/Respondrr/internal/infrastructure/storage/adapter"
)

func newDownloadRouter(t *testing.T) (*gin.Engine, *storageadapter.FSBlobStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	blobs, err := storageadapter.NewFSBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}

	r := gin.New()
	r.GET("/api/v1/files/:bucket/*objectPath", NewDownloadAttachmentController(blobs).Handle())
	return r, blobs
}

func TestDownloadAttachmentServesStoredBytes(t *testing.T) {
	r, blobs := newDownloadRouter(t)

	if err := blobs.Upload(context.Background(), "attachments", "c1/m1/scan.png", []byte("png-bytes")); err != nil {
		t.Fatalf("upload: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/attachments/c1/m1/scan.png", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != "png-bytes" {
		t.Errorf("unexpected body %q", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestDownloadAttachmentMissingObject(t *testing.T) {
	r, _ := newDownloadRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/attachments/c1/m1/absent.pdf", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
