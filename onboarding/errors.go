package onboarding

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrPreconditionFailed  = errors.New("precondition failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUnrecognizedValue   = errors.New("unrecognized value")
	// ErrCorruptProgress marks field data that breaks stage monotonicity.
	ErrCorruptProgress = errors.New("corrupt onboarding progress")
)

// Code returns the stable machine code for an error in the taxonomy, or
// "internal" for anything else.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrPreconditionFailed):
		return "precondition_failed"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrUnrecognizedValue):
		return "unrecognized_value"
	default:
		return "internal"
	}
}
