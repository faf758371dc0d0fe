// internal/handlers/payment.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/flypig-ai/flypig-backend/internal/ecpay"
	"github.com/flypig-ai/flypig-backend/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /payments/ecpay/callback
//
// ECPay posts the payment result as a URL-encoded form and expects a plain
// text acknowledgement body, not JSON. Anything other than "1|OK" makes the
// gateway retry the notification.
func (h *PaymentHandler) ECPayCallback(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, ecpay.AckError)
		return
	}

	params := ecpay.ParamsFromForm(c.Request.PostForm)
	if err := h.paymentService.HandleCallback(params); err != nil {
		if errors.Is(err, services.ErrSignatureMismatch) {
			c.String(http.StatusBadRequest, "CheckMacValue mismatch.")
			return
		}
		logrus.WithError(err).Error("ECPay callback processing failed")
		c.String(http.StatusInternalServerError, ecpay.AckError)
		return
	}

	c.String(http.StatusOK, ecpay.AckSuccess)
}
