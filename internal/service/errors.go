package service

import "errors"

var (
	ErrProfileNotFound       = errors.New("profile not found")
	ErrEventNotFound         = errors.New("event not found")
	ErrChecklistItemNotFound = errors.New("checklist item not found")
	ErrInvalidPhase          = errors.New("invalid checklist phase")
	ErrEmptyText             = errors.New("checklist item text is empty")
	ErrReorderMismatch       = errors.New("ordered ids do not match the phase partition")
	ErrUnknownTemplate       = errors.New("unknown checklist template")
	ErrLeadNotFound          = errors.New("lead not found")
	ErrContentNotFound       = errors.New("content not found")
	ErrContractNotUploaded   = errors.New("contract not uploaded")
	ErrStorageDisabled       = errors.New("file storage is not configured")
	ErrQueueDisabled         = errors.New("generation queue is not configured")
	ErrBillingDisabled       = errors.New("billing is not configured")
	ErrNoStripeCustomer      = errors.New("no stripe customer for user")

	// ErrLimitReached is returned when a free-tier cap blocks a creation.
	ErrLimitReached = errors.New("plan limit reached")
	// ErrFeatureLocked is returned when the feature is not part of the current plan.
	ErrFeatureLocked = errors.New("feature not available on current plan")
)
