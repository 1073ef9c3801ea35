package auction

import "errors"

// Errors returned by auction operations. Everything except ErrConflict is a
// local rejection: it aborts before any write and retrying the same request
// cannot succeed.
var (
	ErrNotFound            = errors.New("auction not found")
	ErrInvalidState        = errors.New("auction is not accepting this operation")
	ErrForbidden           = errors.New("operation not allowed for this user")
	ErrBelowMinimum        = errors.New("bid is below minimum")
	ErrBadIncrement        = errors.New("bid is not aligned to the price step")
	ErrBanned              = errors.New("bidder is banned from this auction")
	ErrReputationTooLow    = errors.New("bidder reputation is too low")
	ErrNewBidderNotAllowed = errors.New("auction does not accept bidders without ratings")
	ErrInvalidRaise        = errors.New("raise must exceed your current maximum")
	ErrInvalidListing      = errors.New("listing prices are invalid")

	// ErrConflict means another operation committed against the same auction
	// between read and write. The caller may resubmit the same request.
	ErrConflict = errors.New("auction was modified concurrently")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrNotFound, "not_found"},
	{ErrInvalidState, "invalid_state"},
	{ErrForbidden, "forbidden"},
	{ErrBelowMinimum, "below_minimum"},
	{ErrBadIncrement, "bad_increment"},
	{ErrBanned, "banned"},
	{ErrReputationTooLow, "reputation_too_low"},
	{ErrNewBidderNotAllowed, "new_bidder_not_allowed"},
	{ErrInvalidRaise, "invalid_raise"},
	{ErrInvalidListing, "invalid_listing"},
	{ErrConflict, "conflict"},
}

// KindOf returns a stable name for a domain error, or "" when err is not
// part of the taxonomy and must be treated as fatal.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}

// IsRetryable reports whether resubmitting the request may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
