// internal/ecpay/types.go
package ecpay

import "net/url"

// RtnCodeSuccess is the outcome code the gateway sends for a successful
// payment.
const RtnCodeSuccess = "1"

// AckSuccess is the acknowledgment token the gateway expects on accepted
// processing; any other response makes it retry indefinitely.
const AckSuccess = "1|OK"

// AckError is returned when callback processing fails internally.
const AckError = "0|Error"

// CallbackParams is the flat field set of an inbound payment notification.
type CallbackParams map[string]string

// ParamsFromForm flattens posted form values into the single-value mapping
// the digest is computed over.
func ParamsFromForm(form url.Values) CallbackParams {
	params := make(CallbackParams, len(form))
	for k := range form {
		params[k] = form.Get(k)
	}
	return params
}

// Well-known callback field names.
const (
	FieldCheckMacValue   = "CheckMacValue"
	FieldRtnCode         = "RtnCode"
	FieldRtnMsg          = "RtnMsg"
	FieldMerchantTradeNo = "MerchantTradeNo"
	FieldCustomField1    = "CustomField1"
)
