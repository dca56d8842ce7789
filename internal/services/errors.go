package services

import "errors"

// Domain-conflict errors. These are deterministic rejections, distinct from
// infrastructure failures: callers map them to 409 responses and never retry.
var (
	ErrLastLead              = errors.New("last lead cannot be removed")
	ErrMembershipNotPending  = errors.New("membership is not pending")
	ErrMembershipNotAccepted = errors.New("membership is not accepted")
	ErrInvalidKind           = errors.New("engagement kind cannot be recorded once")
	ErrNotOwned              = errors.New("notification belongs to another user")
)
