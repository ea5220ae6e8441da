package permissions

import (
	"errors"
	"math"
)

// UnknownRank is the rank assumed for an actor whose rank cannot be
// determined. It is the least authoritative value, so unknown actors
// fail every hierarchy check.
const UnknownRank int64 = math.MaxInt64

var (
	// ErrEscalation indicates a proposed override toggles a bit the
	// acting user does not hold.
	ErrEscalation = errors.New("permissions: cannot grant or revoke permissions you do not have")
	// ErrNotElevated indicates a role mutation targets a role at or
	// above the acting user's own rank.
	ErrNotElevated = errors.New("permissions: target role outranks you")
)

// AuthorizeOverrideMutation verifies that changing an override from
// current to proposed does not let the actor escalate beyond its own
// effective permissions: every bit that differs between the two
// overrides, in either plane, must already be held by the actor.
func AuthorizeOverrideMutation(actor Value, current, proposed Override) error {
	changed := Value(current.Allow^proposed.Allow) | Value(current.Deny^proposed.Deny)
	if changed.Remove(actor) != 0 {
		return ErrEscalation
	}
	return nil
}

// AuthorizeRoleTarget enforces rank hierarchy for a role-targeted
// mutation. Lower numeric rank is higher authority. A strictly more
// authoritative target is always rejected; an equal-rank target is
// allowed only when the actor is verifiably mutating its own assigned
// role. Callers with no known rank must pass UnknownRank.
func AuthorizeRoleTarget(actorRank int64, selfTarget bool, targetRank int64) error {
	if targetRank < actorRank {
		return ErrNotElevated
	}
	if targetRank == actorRank && !selfTarget {
		return ErrNotElevated
	}
	return nil
}
