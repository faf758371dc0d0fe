// internal/services/payment_service.go
package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flypig-ai/flypig-backend/internal/config"
	"github.com/flypig-ai/flypig-backend/internal/ecpay"
	"github.com/flypig-ai/flypig-backend/internal/models"
	"github.com/flypig-ai/flypig-backend/internal/utils"
)

const (
	proAccessAmount   = 300
	proAccessDesc     = "FlyPig AI 電商增長神器 - 升級專業版"
	proAccessItemName = "FlyPig AI Pro Access x 1"
)

type PaymentService struct {
	users  UserStore
	orders OrderStore
	signer *ecpay.Signer
	cfg    *config.Config

	// now and tradeNoSuffix are replaceable in tests.
	now           func() time.Time
	tradeNoSuffix func() string
}

// NewPaymentService fails fast when the gateway secrets are absent; the
// router then leaves the payment operations unregistered.
func NewPaymentService(users UserStore, orders OrderStore, cfg *config.Config) (*PaymentService, error) {
	signer, err := ecpay.NewSigner(cfg.ECPay.HashKey, cfg.ECPay.HashIV)
	if err != nil {
		return nil, err
	}

	return &PaymentService{
		users:         users,
		orders:        orders,
		signer:        signer,
		cfg:           cfg,
		now:           time.Now,
		tradeNoSuffix: randomTradeNoSuffix,
	}, nil
}

func randomTradeNoSuffix() string {
	// 4 chars keeps MerchantTradeNo within ECPay's 20-character limit and
	// makes the time-based number unique within one millisecond.
	s, err := utils.GenerateRandomString(4)
	if err != nil {
		return "0000"
	}
	return s
}

// CreateOrder builds the signed checkout parameter set for one upgrade
// purchase and records the pending order.
func (s *PaymentService) CreateOrder(userID string) (map[string]string, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	now := s.now()
	tradeNo := fmt.Sprintf("FP%d%s", now.UnixMilli(), s.tradeNoSuffix())
	tradeDate := now.In(taipeiLocation()).Format("2006/01/02 15:04:05")

	params := map[string]string{
		"MerchantID":        s.cfg.ECPay.MerchantID,
		"MerchantTradeNo":   tradeNo,
		"MerchantTradeDate": tradeDate,
		"PaymentType":       "aio",
		"TotalAmount":       strconv.Itoa(proAccessAmount),
		"TradeDesc":         proAccessDesc,
		"ItemName":          proAccessItemName,
		"ReturnURL":         s.cfg.Frontend.BaseURL,
		"OrderResultURL":    s.cfg.ECPay.CallbackURL,
		"ChoosePayment":     "Credit",
		"EncryptType":       "1",
		"CustomField1":      userID,
	}
	params["CheckMacValue"] = s.signer.CheckMacValue(params)
	params["actionUrl"] = s.cfg.ECPay.ActionURL

	order := &models.PaymentOrder{
		MerchantTradeNo: tradeNo,
		UserID:          uid,
		Amount:          proAccessAmount,
		Status:          models.OrderStatusPending,
	}
	if err := s.orders.Create(order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	return params, nil
}

// HandleCallback verifies an inbound payment notification and applies its
// outcome. A signature mismatch is rejected before any state is touched.
func (s *PaymentService) HandleCallback(params ecpay.CallbackParams) error {
	received := params[ecpay.FieldCheckMacValue]
	verifiable := make(map[string]string, len(params))
	for k, v := range params {
		if k == ecpay.FieldCheckMacValue {
			continue
		}
		verifiable[k] = v
	}

	if !s.signer.Verify(verifiable, received) {
		logrus.WithField("merchant_trade_no", params[ecpay.FieldMerchantTradeNo]).
			Error("ECPay CheckMacValue verification failed")
		return ErrSignatureMismatch
	}

	rtnCode := params[ecpay.FieldRtnCode]
	uid := params[ecpay.FieldCustomField1]
	s.recordOutcome(params, rtnCode)

	if rtnCode != ecpay.RtnCodeSuccess {
		logrus.WithFields(logrus.Fields{"user_id": uid, "rtn_code": rtnCode}).
			Info("Payment was not successful")
		return nil
	}

	if uid == "" {
		logrus.Error("ECPay callback missing user id in CustomField1")
		return nil
	}

	if err := s.users.MarkPaid(uid, s.now()); err != nil {
		return fmt.Errorf("failed to mark user %s as paid: %w", uid, err)
	}

	logrus.WithField("user_id", uid).Info("Successfully updated user to paid status")
	return nil
}

func (s *PaymentService) recordOutcome(params ecpay.CallbackParams, rtnCode string) {
	tradeNo := params[ecpay.FieldMerchantTradeNo]
	if tradeNo == "" {
		return
	}

	order, err := s.orders.GetByTradeNo(tradeNo)
	if err != nil {
		logrus.WithField("merchant_trade_no", tradeNo).Warn("Callback for unknown order")
		return
	}

	payload := make(models.JSONB, len(params))
	for k, v := range params {
		payload[k] = v
	}

	order.RtnCode = rtnCode
	order.CallbackPayload = payload
	if rtnCode == ecpay.RtnCodeSuccess {
		now := s.now()
		order.Status = models.OrderStatusPaid
		order.PaidAt = &now
	} else {
		order.Status = models.OrderStatusFailed
	}

	if err := s.orders.Save(order); err != nil {
		logrus.WithError(err).WithField("merchant_trade_no", tradeNo).Error("Failed to update order")
	}
}

func taipeiLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}
