package handler

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/ports"
)

type PaymentHandler struct {
	payments ports.PaymentRepository
}

func NewPaymentHandler(payments ports.PaymentRepository) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type initiatePaymentRequest struct {
	BillReference string `json:"billReference" validate:"required"`
	Provider      string `json:"provider" validate:"required"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	Currency      string `json:"currency" validate:"required,len=3"`
	PaymentMode   string `json:"paymentMode"`
}

type initiatePaymentResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Initiate records a new INITIATED gateway transaction scoped to the
// caller's tenant. The generated reference is the idempotency key the
// provider later echoes back in its webhook.
//
// @Summary      Initiate a gateway payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      initiatePaymentRequest  true  "Payment details"
// @Success      201   {object}  initiatePaymentResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/payments/initiate [post]
func (h *PaymentHandler) Initiate(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	tenantID, err := ctxTenant(c)
	if err != nil {
		return err
	}

	var req initiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	now := time.Now().UTC()
	tx := &domain.PaymentTransaction{
		TenantID:      tenantID,
		Reference:     generateReference(),
		BillReference: req.BillReference,
		Provider:      req.Provider,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMode:   req.PaymentMode,
		Status:        domain.TxInitiated,
		InitiatedBy:   principal.Subject,
		CreatedAt:     now,
	}
	if err := h.payments.Create(c.Request().Context(), tx); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, initiatePaymentResponse{
		Reference: tx.Reference,
		Status:    string(tx.Status),
	})
}

// Me returns the verified principal bound to the request.
//
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Principal
// @Router       /api/me [get]
func Me(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, principal)
}

// generateReference returns a unique transaction reference, TXN-XXXXXXXXXXXX.
func generateReference() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("TXN-%012X", time.Now().UnixNano()&0xFFFFFFFFFFFF)
	}
	return fmt.Sprintf("TXN-%012X", b)
}
