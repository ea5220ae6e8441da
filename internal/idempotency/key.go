// Package idempotency turns a client-supplied nonce into an
// at-most-once guarantee for message sends.
package idempotency

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate signals that the nonce was already claimed: a duplicate
// send, not a retraction of the earlier successful one. Callers must
// treat it as a non-fatal reject.
var ErrDuplicate = errors.New("idempotency: nonce already used")

// claimTTL bounds how long a claimed nonce blocks reuse. Dedup only
// has to cover the client retry window.
const claimTTL = 12 * time.Hour

// NonceStore is the atomic insert-if-absent primitive backing claims.
// Claim must succeed for exactly one concurrent caller per
// (author, nonce) pair.
type NonceStore interface {
	ClaimNonce(ctx context.Context, authorID int64, nonce string, ttl time.Duration) (bool, error)
}

// Key is the request-scoped idempotency state for one send, scoped to
// the acting identity.
type Key struct {
	store    NonceStore
	authorID int64
	nonce    string
}

// New creates a Key for the acting author.
func New(store NonceStore, authorID int64) *Key {
	return &Key{store: store, authorID: authorID}
}

// ConsumeNonce claims the nonce. A nil nonce means no dedup was
// requested and succeeds trivially. An already-claimed nonce returns
// ErrDuplicate; infrastructure failures propagate as-is.
func (k *Key) ConsumeNonce(ctx context.Context, nonce *string) error {
	if nonce == nil || *nonce == "" {
		return nil
	}

	ok, err := k.store.ClaimNonce(ctx, k.authorID, *nonce, claimTTL)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicate
	}

	k.nonce = *nonce
	return nil
}

// IntoKey returns the value echoed back to the client as the message's
// nonce field, letting it correlate an optimistic local echo with the
// confirmed message. Empty when no nonce was consumed.
func (k *Key) IntoKey() string {
	return k.nonce
}
