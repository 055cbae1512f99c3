package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/middleware"
	"github.com/cashewph/lending-platform/internal/storage"
	"github.com/cashewph/lending-platform/pkg/response"
)

// 10 MB upload cap, matching the form client's limit.
const maxUploadBytes = 10 << 20

// DocumentHandler exposes borrower document upload, listing and
// signed-URL retrieval.
type DocumentHandler struct {
	store *storage.DiskStore
	log   *logrus.Logger
}

func NewDocumentHandler(store *storage.DiskStore, log *logrus.Logger) *DocumentHandler {
	return &DocumentHandler{store: store, log: log}
}

// Upload handles POST /api/v1/documents (multipart, field "file").
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "invalid multipart body", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "missing file field", err)
		return
	}
	defer file.Close()

	doc, err := h.store.Upload(userID, header.Filename, file)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Created(w, doc)
}

// List handles GET /api/v1/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	docs, err := h.store.List(userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, docs)
}

// SignURL handles POST /api/v1/documents/sign-url. Callers may only
// sign paths under their own prefix.
func (h *DocumentHandler) SignURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req struct {
		Path string `json:"path" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if !storage.OwnsPath(userID, req.Path) {
		response.Forbidden(w, "path does not belong to you")
		return
	}

	signed, err := h.store.SignURL(req.Path)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, signed)
}

// Serve handles GET /documents/signed. The signature in the query is
// the only credential; no bearer token is required.
func (h *DocumentHandler) Serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	signature := q.Get("signature")
	expires, err := strconv.ParseInt(q.Get("expires"), 10, 64)
	if path == "" || signature == "" || err != nil {
		response.BadRequest(w, "malformed signed URL", nil)
		return
	}

	f, err := h.store.Open(path, expires, signature)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, f); err != nil {
		h.log.Warnf("streaming document %s failed: %v", path, err)
	}
}
