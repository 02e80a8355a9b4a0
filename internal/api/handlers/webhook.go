package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/service"
)

type WebhookService interface {
	Ingest(ctx context.Context, payload []byte) service.Outcome
}

// WebhookHandler receives tracker webhook deliveries. It always answers 200
// so the tracker never retries; what actually happened is in the body.
type WebhookHandler struct {
	svc WebhookService
}

func NewWebhookHandler(svc WebhookService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

type WebhookOutcomeResponse struct {
	Status  string `json:"status"`
	CaseRef string `json:"case_ref,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		api.JSON(w, http.StatusOK, WebhookOutcomeResponse{
			Status: string(service.OutcomeError),
			Reason: "failed to read body",
		})
		return
	}

	outcome := h.svc.Ingest(r.Context(), payload)

	api.JSON(w, http.StatusOK, WebhookOutcomeResponse{
		Status:  string(outcome.Status),
		CaseRef: outcome.CaseRef,
		Reason:  outcome.Reason,
	})
}
