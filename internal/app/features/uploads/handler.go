// internal/app/features/uploads/handler.go
package uploads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/campusworks/researchdesk/internal/app/system/auditlog"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxUploadSize caps a single supporting document at 20 MB.
const maxUploadSize = 20 << 20

// Allowed upload categories; the category becomes the top-level storage
// directory.
var allowedKinds = map[string]bool{
	"proposals":     true,
	"proofs":        true,
	"presentations": true,
	"resumes":       true,
}

// BlobStore is the slice of storage.Store the upload endpoints need.
type BlobStore interface {
	Put(ctx context.Context, path string, reader io.Reader, opts *storage.PutOptions) error
	PresignedURL(ctx context.Context, path string, opts *storage.PresignOptions) (string, error)
}

// localResolver is implemented by disk-backed stores (waffle's storage.Local
// and blobstore.Local); such files are served directly instead of redirecting
// to a signed URL.
type localResolver interface {
	GetFullPath(path string) (string, error)
}

// Handler stores supporting documents (proposal PDFs, claim proofs,
// presentations, resumes) and hands back the paths other modules bind to
// their records.
type Handler struct {
	Storage  BlobStore
	Log      *zap.Logger
	AuditLog *auditlog.Logger
}

func NewHandler(store BlobStore, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Storage: store, Log: logger, AuditLog: audit}
}

// HandleUpload stores one multipart file (field "file") under
// {kind}/YYYY/MM/uuid-filename and returns the storage path.
// POST /api/uploads/{kind}.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	kind := kindParam(r)
	if !allowedKinds[kind] {
		httpjson.BadRequest(w, "unknown upload category")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		msg := "a file is required in the \"file\" field"
		if strings.Contains(err.Error(), "request body too large") {
			msg = "file is too large, the limit is 20 MB"
		}
		httpjson.BadRequest(w, msg)
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	path, err := h.store(ctx, kind, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		h.Log.Error("upload failed", zap.String("kind", kind), zap.Error(err))
		httpjson.ServerError(w, "could not store file")
		return
	}

	h.AuditLog.Event(ctx, "upload.put", "file stored", &userID, name,
		map[string]string{"path": path})

	// Records store the stable path; the URL is a convenience for clients
	// that render the file immediately after uploading.
	url, err := h.Storage.PresignedURL(ctx, path, &storage.PresignOptions{Expires: 15 * time.Minute})
	if err != nil {
		h.Log.Warn("presign after upload failed", zap.String("path", path), zap.Error(err))
		url = ""
	}
	httpjson.Created(w, httpjson.Envelope{"path": path, "file_name": header.Filename, "url": url})
}

// HandleDownload resolves a stored path to its content: local storage is
// served directly, anything else redirects to a short-lived signed URL.
// GET /api/uploads/{kind}?path=.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	kind := kindParam(r)
	if !allowedKinds[kind] {
		httpjson.BadRequest(w, "unknown upload category")
		return
	}

	path := r.URL.Query().Get("path")
	// The path must stay inside the requested category.
	if path == "" || !strings.HasPrefix(path, kind+"/") || strings.Contains(path, "..") {
		httpjson.BadRequest(w, "invalid path")
		return
	}

	if local, ok := h.Storage.(localResolver); ok {
		fullPath, err := local.GetFullPath(path)
		if err != nil {
			httpjson.NotFound(w, "file not found")
			return
		}
		http.ServeFile(w, r, fullPath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	signedURL, err := h.Storage.PresignedURL(ctx, path, &storage.PresignOptions{
		Expires: 15 * time.Minute,
	})
	if err != nil {
		h.Log.Error("presign failed", zap.String("path", path), zap.Error(err))
		httpjson.ServerError(w, "could not generate download link")
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}

func (h *Handler) store(ctx context.Context, kind, filename string, reader io.Reader, contentType string) (string, error) {
	now := time.Now().UTC()
	dir := fmt.Sprintf("%s/%04d/%02d", kind, now.Year(), now.Month())
	unique := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(filename))
	path := filepath.ToSlash(filepath.Join(dir, unique))

	if err := h.Storage.Put(ctx, path, reader, &storage.PutOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("put %s: %w", path, err)
	}
	return path, nil
}

func kindParam(r *http.Request) string {
	return strings.ToLower(chi.URLParam(r, "kind"))
}

func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
