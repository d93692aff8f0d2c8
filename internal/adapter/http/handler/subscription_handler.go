package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/axiompay/internal/adapter/http/dto"
	"github.com/iho/axiompay/internal/domain"
	"github.com/iho/axiompay/internal/usecase"
)

// SubscriptionService issues subscriptions.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, input usecase.CreateSubscriptionInput) (*domain.Subscription, error)
}

// SubscriptionHandler handles subscription requests.
type SubscriptionHandler struct {
	subscriptionUC SubscriptionService
	logger         zerolog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionUC SubscriptionService, logger zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionUC: subscriptionUC, logger: logger}
}

// Create issues a scheduled transfer for the payer.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSubscriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}

	sub, err := h.subscriptionUC.CreateSubscription(r.Context(), input)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SubscriptionFromDomain(sub))
}
