// internal/services/errors.go
package services

import "errors"

// Business-rule failures surfaced to the HTTP layer. Handlers match these
// with errors.Is to pick a status code and a user-facing message; anything
// else is reported as a generic server error. None of these leave partial
// ledger state behind.
var (
	ErrInsufficientFunds    = errors.New("insufficient wallet balance")
	ErrInsufficientBalance  = errors.New("insufficient balance for withdrawal")
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNotPriced     = errors.New("product has no base price")
	ErrProductUnavailable   = errors.New("product is not available for purchase")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrConfigurationMissing = errors.New("no active commission config")

	ErrOrderNotFound               = errors.New("order not found")
	ErrNotAuthorized               = errors.New("not authorized")
	ErrInvalidStateForCancellation = errors.New("order cannot be cancelled in current status")
	ErrInvalidStatus               = errors.New("invalid order status")

	ErrRequestNotFound         = errors.New("request not found")
	ErrRequestAlreadyProcessed = errors.New("request already processed")

	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrMissingBuyerReference = errors.New("user id missing in payment notes")

	ErrConfigInUse = errors.New("cannot delete active commission config")
)
