// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentOrder records one ECPay checkout request. The merchant trade number
// is generated locally and must be unique; the callback carries it back so
// the outcome can be attributed to the originating order.
type PaymentOrder struct {
	BaseModel
	MerchantTradeNo string      `json:"merchant_trade_no" gorm:"uniqueIndex;size:20;not null"`
	UserID          uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount          int         `json:"amount" gorm:"not null"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	RtnCode         string      `json:"rtn_code" gorm:"size:10"`
	CallbackPayload JSONB       `json:"callback_payload,omitempty" gorm:"type:jsonb"`
	PaidAt          *time.Time  `json:"paid_at"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
