// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthAccountLocked      = "auth.account_locked"
	KeyAuthAccountSuspended   = "auth.account_suspended"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthPasswordChanged    = "auth.password_changed"
	KeyAccessDenied           = "access.denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Applications
	KeyApplicationNotFound         = "application.not_found"
	KeyApplicationCreated          = "application.created"
	KeyApplicationCancelled        = "application.cancelled"
	KeyApplicationInvalidStatus    = "application.invalid_status"
	KeyApplicationReviewStarted    = "application.review_started"
	KeyApplicationApproved         = "application.approved"
	KeyApplicationRejected         = "application.rejected"
	KeyApplicationReady            = "application.ready"
	KeyApplicationCompleted        = "application.completed"
	KeyApplicationReceiptSubmitted = "application.receipt_submitted"
	KeyApplicationPaymentVerified  = "application.payment_verified"
	KeyApplicationPaymentRejected  = "application.payment_rejected"
	KeyApplicationMissingDocuments = "application.missing_documents"
	KeyApplicationInvalidCategory  = "application.invalid_category"

	// Documents
	KeyDocumentUploaded       = "document.uploaded"
	KeyDocumentNotFound       = "document.not_found"
	KeyDocumentDeleted        = "document.deleted"
	KeyDocumentTypeNotAllowed = "document.type_not_allowed"

	// Payments
	KeyPaymentGatewayError    = "payment.gateway_error"
	KeyPaymentCheckoutCreated = "payment.checkout_created"
	KeyPaymentConfirmed       = "payment.confirmed"
	KeyPaymentNotPending      = "payment.not_pending"

	// Prices
	KeyPriceNotFound = "price.not_found"
	KeyPriceCreated  = "price.created"
	KeyPriceUpdated  = "price.updated"
	KeyPriceDeleted  = "price.deleted"

	// Notifications
	KeyNotificationNotFound   = "notification.not_found"
	KeyNotificationMarkedRead = "notification.marked_read"
	KeyNotificationDeleted    = "notification.deleted"

	// Users
	KeyUserNotFound      = "user.not_found"
	KeyUserUpdated       = "user.updated"
	KeyUserRoleUpdated   = "user.role_updated"
	KeyUserStatusUpdated = "user.status_updated"

	// News
	KeyNewsNotFound = "news.not_found"
)
