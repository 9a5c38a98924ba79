package claims

import "fmt"

// Kind classifies a claim rejection so the transport layer can map it to a
// status code without string matching.
type Kind string

const (
	KindInvalidRequest  Kind = "invalid_request"
	KindMissingIdentity Kind = "missing_identity"
	KindNotFound        Kind = "not_found"
	KindAlreadyClaimed  Kind = "already_claimed"
	KindSelfClaim       Kind = "self_claim_forbidden"
	KindExpired         Kind = "listing_expired"
	KindStoreFailure    Kind = "store_failure"
)

// Error is a claim rejection. Message is user-presentable; ClaimedBy is set
// on already-claimed rejections so the caller can render who has the listing.
type Error struct {
	Kind      Kind
	Message   string
	ClaimedBy string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the same request unchanged.
// Only store failures qualify; every business rejection is terminal.
func (e *Error) Retryable() bool {
	return e.Kind == KindStoreFailure
}
