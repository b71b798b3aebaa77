package commands

import "beautybook/internal/pkg/errs"

// Sentinel errors surfaced to the handler layer. Handlers map these to HTTP
// status codes; everything else becomes a 500.
var (
	ErrShopNotFound        = errs.New("shop not found")
	ErrServiceNotFound     = errs.New("service not found")
	ErrReservationNotFound = errs.New("reservation not found")
	ErrPaymentNotFound     = errs.New("payment not found")
	ErrValidation          = errs.New("invalid request")
	ErrSlotUnavailable     = errs.New("slot is unavailable")
	ErrStateConflict       = errs.New("reservation state changed concurrently")
	ErrPermissionDenied    = errs.New("permission denied")
	ErrInsufficientPoints  = errs.New("insufficient point balance")
	ErrReferralRejected    = errs.New("referral registration rejected")
	ErrPaymentGateway      = errs.New("payment gateway error")
	ErrDuplicateRequest    = errs.New("idempotency key reused with a different request")
	ErrRequestInProgress   = errs.New("request with this idempotency key is still processing")
)
