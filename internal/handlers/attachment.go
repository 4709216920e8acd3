package handlers

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bookline/apiserver/internal/apperr"
	"github.com/bookline/apiserver/internal/services"
)

const (
	maxAttachmentBytes   = 32 << 20
	attachmentFormField  = "file"
	fallbackContentType  = "application/octet-stream"
	maxMultipartMemBytes = 8 << 20
)

// AttachmentHandler provides HTTP handlers for reservation attachments.
type AttachmentHandler struct {
	attachments *services.AttachmentService
	log         *zap.Logger
}

// NewAttachmentHandler constructs a handler with the provided service.
func NewAttachmentHandler(attachments *services.AttachmentService, log *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, log: log}
}

// AttachmentRouter registers attachment routes under a reservation route.
func AttachmentRouter(r chi.Router, attachments *services.AttachmentService, log *zap.Logger) {
	handler := NewAttachmentHandler(attachments, log)

	r.Post("/", handler.Upload)
	r.Get("/", handler.List)
	r.Route("/{attachmentID}", func(r chi.Router) {
		r.Get("/", handler.Download)
		r.Delete("/", handler.Delete)
	})
}

func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid token"))
		return
	}

	reservationID, err := parseReservationID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form", nil)
		return
	}

	files := r.MultipartForm.File[attachmentFormField]
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "Exactly one file is required", nil)
		return
	}

	header := files[0]
	if header.Size > maxAttachmentBytes {
		writeError(w, http.StatusBadRequest, "Uploaded file too large", nil)
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, _, err := mime.ParseMediaType(contentType); err != nil {
		contentType = fallbackContentType
	}

	created, err := h.attachments.Upload(
		r.Context(),
		reservationID,
		identity.UserID,
		header.Filename,
		contentType,
		file,
		header.Size,
	)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	writeData(w, http.StatusCreated, created)
}

func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid token"))
		return
	}

	reservationID, err := parseReservationID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	attachments, err := h.attachments.List(r.Context(), reservationID, identity.UserID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, attachments)
}

// Download streams the file contents back to the owner.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid token"))
		return
	}

	reservationID, err := parseReservationID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	attachmentID, err := parseAttachmentID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	att, reader, err := h.attachments.Open(r.Context(), attachmentID, reservationID, identity.UserID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", att.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.FileName}))
	if att.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(att.SizeBytes, 10))
	}
	if _, err := io.Copy(w, reader); err != nil && h.log != nil {
		h.log.Warn("attachment stream interrupted", zap.Int("attachment_id", att.ID), zap.Error(err))
	}
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid token"))
		return
	}

	reservationID, err := parseReservationID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	attachmentID, err := parseAttachmentID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.attachments.Delete(r.Context(), attachmentID, reservationID, identity.UserID); err != nil {
		respondError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, DeletedResponse{ID: attachmentID})
}

func parseAttachmentID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "attachmentID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apperr.New(apperr.KindNotFound, "Attachment not found")
	}
	return id, nil
}
