package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/api/middleware"
	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/service"
)

type AttachmentService interface {
	InitUpload(ctx context.Context, input service.InitUploadInput) (*service.InitUploadResult, error)
	CompleteUpload(ctx context.Context, attachmentID string) (*domain.Attachment, error)
	DownloadURL(ctx context.Context, attachmentID string) (string, error)
	ListByCase(ctx context.Context, caseID string) ([]*domain.Attachment, error)
	Delete(ctx context.Context, attachmentID string) error
}

type AttachmentHandler struct {
	svc AttachmentService
}

func NewAttachmentHandler(svc AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

type InitUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type InitUploadResponse struct {
	AttachmentID string `json:"attachment_id"`
	UploadURL    string `json:"upload_url"`
}

type AttachmentResponse struct {
	ID        string `json:"id"`
	CaseID    string `json:"case_id"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	CreatedAt string `json:"created_at"`
}

func attachmentToResponse(a *domain.Attachment) *AttachmentResponse {
	return &AttachmentResponse{
		ID:        a.ID,
		CaseID:    a.CaseID,
		Filename:  a.Filename,
		MimeType:  a.MimeType,
		SizeBytes: a.SizeBytes,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func (h *AttachmentHandler) InitUpload(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "id")

	var req InitUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Filename == "" {
		api.Error(w, http.StatusBadRequest, "filename is required")
		return
	}

	result, err := h.svc.InitUpload(r.Context(), service.InitUploadInput{
		CaseID:      caseID,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		UploadedBy:  middleware.GetUserID(r.Context()),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, InitUploadResponse{
		AttachmentID: result.AttachmentID,
		UploadURL:    result.UploadURL,
	})
}

func (h *AttachmentHandler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	attachmentID := chi.URLParam(r, "attachmentID")

	attachment, err := h.svc.CompleteUpload(r.Context(), attachmentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, attachmentToResponse(attachment))
}

func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	attachmentID := chi.URLParam(r, "attachmentID")

	url, err := h.svc.DownloadURL(r.Context(), attachmentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"download_url": url})
}

func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "id")

	attachments, err := h.svc.ListByCase(r.Context(), caseID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		responses = append(responses, attachmentToResponse(a))
	}
	api.Success(w, http.StatusOK, responses)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	attachmentID := chi.URLParam(r, "attachmentID")
	if err := h.svc.Delete(r.Context(), attachmentID); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusNoContent, nil)
}
