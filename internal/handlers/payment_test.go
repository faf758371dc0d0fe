// internal/handlers/payment_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flypig-ai/flypig-backend/internal/config"
	"github.com/flypig-ai/flypig-backend/internal/ecpay"
	"github.com/flypig-ai/flypig-backend/internal/models"
	"github.com/flypig-ai/flypig-backend/internal/services"
)

func newCallbackTestEnv(t *testing.T, seed ...*models.User) (*gin.Engine, *trackingUserStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ECPay: config.ECPayConfig{
			MerchantID:  "2000132",
			HashKey:     "5294y06JbISpM5x9",
			HashIV:      "v77hoKGq4kWxNNIS",
			CallbackURL: "https://example.com/ecpay/callback",
		},
	}

	users := newTrackingUserStore(seed...)
	paymentService, err := services.NewPaymentService(users, &trackingOrderStore{}, cfg)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/v1/payments/ecpay/callback", NewPaymentHandler(paymentService).ECPayCallback)
	return r, users
}

func signedCallbackForm(t *testing.T, uid string) url.Values {
	t.Helper()
	signer, err := ecpay.NewSigner("5294y06JbISpM5x9", "v77hoKGq4kWxNNIS")
	require.NoError(t, err)

	params := map[string]string{
		"MerchantID":      "2000132",
		"MerchantTradeNo": "FP1756700000000ABCD",
		"RtnCode":         "1",
		"RtnMsg":          "Succeeded",
		"TradeAmt":        "300",
		"TradeNo":         "2509011200001234",
		"PaymentDate":     "2025/09/01 12:05:00",
		"PaymentType":     "Credit_CreditCard",
		"SimulatePaid":    "0",
		"CustomField1":    uid,
	}
	params["CheckMacValue"] = signer.CheckMacValue(params)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	return form
}

func postForm(r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/ecpay/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestECPayCallbackAcknowledgesSuccess(t *testing.T) {
	user := &models.User{Email: "buyer@example.com"}
	r, _ := newCallbackTestEnv(t, user)

	w := postForm(r, signedCallbackForm(t, user.ID.String()))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1|OK", w.Body.String())
}

func TestECPayCallbackRejectsBadSignature(t *testing.T) {
	user := &models.User{Email: "buyer@example.com"}
	r, _ := newCallbackTestEnv(t, user)

	form := signedCallbackForm(t, user.ID.String())
	form.Set("TradeAmt", "99999")

	w := postForm(r, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CheckMacValue mismatch.", w.Body.String())
}

func TestECPayCallbackInternalError(t *testing.T) {
	// The referenced user does not exist, so applying the paid state fails.
	r, _ := newCallbackTestEnv(t)

	w := postForm(r, signedCallbackForm(t, "ffffffff-ffff-ffff-ffff-ffffffffffff"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "0|Error", w.Body.String())
}
