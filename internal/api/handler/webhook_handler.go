package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/societyhub/backoffice-api/internal/api/metrics"
	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/ports"
)

type WebhookHandler struct {
	webhooks ports.WebhookService
}

func NewWebhookHandler(webhooks ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

type webhookRequest struct {
	TransactionRef   string `json:"transactionRef" validate:"required"`
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Status           string `json:"status" validate:"required"`
	Payload          string `json:"payload"`
	Signature        string `json:"signature"`
}

type webhookResponse struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Replayed  bool   `json:"replayed,omitempty"`
}

// HandleCallback receives a payment provider callback. The provider travels
// in the path; signature verification happens inside the service before any
// state is touched.
//
// @Summary      Payment provider callback
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        provider  path      string          true  "Provider identifier"
// @Param        body      body      webhookRequest  true  "Provider callback"
// @Success      200       {object}  webhookResponse
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /webhooks/payments/{provider} [post]
func (h *WebhookHandler) HandleCallback(c echo.Context) error {
	provider := c.Param("provider")

	var req webhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	result, err := h.webhooks.ProcessCallback(c.Request().Context(), provider, c.RealIP(), domain.PaymentCallback{
		TransactionRef:   req.TransactionRef,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Status:           req.Status,
		Payload:          req.Payload,
		Signature:        req.Signature,
	})
	metrics.WebhookProcessingDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WebhookCallbacksTotal.WithLabelValues(provider, "rejected").Inc()
		return err
	}

	outcome := "verified"
	if result.Replayed {
		outcome = "replayed"
	}
	metrics.WebhookCallbacksTotal.WithLabelValues(provider, outcome).Inc()

	return c.JSON(http.StatusOK, webhookResponse{
		Success:   true,
		Reference: result.Reference,
		Status:    string(result.Status),
		Replayed:  result.Replayed,
	})
}
