package apperrors

import (
	"net/http"
)

// =========================================================================
// Фабрики
// =========================================================================

// ErrNotFound - репозиторная ошибка (gorm.ErrRecordNotFound и т.п.) -> 404
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus - переход статуса не разрешен (409)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

func ErrExternalService(err error, domain, message string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, message, http.StatusBadGateway)
}

// =========================================================================
// Предопределенные ошибки
// =========================================================================

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Auth ---

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrUserSuspended = New(
	CodeForbidden,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

// --- Uploads & Files ---

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge, // 413
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType, // 415
)

var ErrEmptyFile = New(
	CodeValidationFailed,
	"validation",
	"File is empty",
	http.StatusBadRequest,
)

// --- Listings ---

var ErrListingNotActive = New(
	CodeInvalidStatus,
	"listing",
	"Listing is not accepting offers",
	http.StatusConflict,
)

var ErrListingExpired = New(
	CodeInvalidStatus,
	"listing",
	"Listing has expired",
	http.StatusConflict,
)

var ErrListingNotEditable = New(
	CodeInvalidStatus,
	"listing",
	"Listing can no longer be modified",
	http.StatusConflict,
)

// --- Offers ---

var ErrOwnListingOffer = New(
	CodeInvalidOperation,
	"offer",
	"You cannot make an offer on your own listing",
	http.StatusBadRequest,
)

var ErrDuplicateOffer = New(
	CodeAlreadyExists,
	"offer",
	"You already have an open offer on this listing",
	http.StatusConflict,
)

var ErrOfferStatusChanged = New(
	CodeConflict,
	"offer",
	"Offer status changed concurrently, reload and retry",
	http.StatusConflict,
)

// --- Chat ---

var ErrConversationAccessDenied = New(
	CodeForbidden,
	"chat",
	"Access to conversation denied",
	http.StatusForbidden,
)

var ErrCannotMessageSelf = New(
	CodeInvalidOperation,
	"chat",
	"Cannot start a conversation with yourself",
	http.StatusBadRequest,
)

// --- Profile ---

var ErrProfileNotFound = New(
	CodeNotFound,
	"profile",
	"Profile not found",
	http.StatusNotFound,
)

// --- Ads ---

var ErrInvalidAdStatus = New(
	CodeInvalidStatus,
	"ad",
	"Operation not allowed for the current ad status",
	http.StatusConflict,
)
