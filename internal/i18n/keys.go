// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"
	KeyAdminGranted      = "admin.granted"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Analysis
	KeyAnalysisQuotaExceeded = "analysis.quota_exceeded"
	KeyAnalysisUpstream      = "analysis.upstream_error"
	KeyAnalysisMalformed     = "analysis.malformed_output"

	// Generation
	KeyGenerationTimeout     = "generation.timeout"
	KeyGenerationFailed      = "generation.failed"
	KeyGenerationUnavailable = "generation.unavailable"

	// Payments
	KeyPaymentUnavailable = "payment.unavailable"
	KeyPaymentOrderFailed = "payment.order_failed"

	// Actions
	KeyActionUnknown = "action.unknown"
	KeyActionMissing = "action.missing"
)
