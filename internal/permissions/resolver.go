package permissions

import "sort"

// RankedOverride is a role's override together with the role's rank.
// Lower numeric rank means higher authority.
type RankedOverride struct {
	RoleID   int64
	Rank     int64
	Override Override
}

// Context assembles the chain of permission sources for one
// (actor, channel) pair. Resolve folds the chain into an effective
// value; assembling the context is the caller's job.
type Context struct {
	// Default is the server's default permission set.
	Default Value
	// RoleOverrides are the server-wide overrides of every role the
	// actor holds.
	RoleOverrides []RankedOverride
	// ChannelRoleOverrides are the channel-specific overrides for the
	// same roles, layered after all server-wide overrides.
	ChannelRoleOverrides []RankedOverride
	// MemberOverride is an optional direct override for the member,
	// applied last.
	MemberOverride *Override
}

// Resolve computes the effective permission value for a context.
//
// Fold order: server default → held roles' server-wide overrides →
// the same roles' channel overrides → member override. Role overrides
// apply in ascending authority (numeric rank descending), so the most
// authoritative role applies last and wins conflicts. Each override
// applies deny before allow. Pure and total: no I/O, no errors.
func Resolve(ctx Context) Value {
	value := ctx.Default

	value = applyRanked(value, ctx.RoleOverrides)
	value = applyRanked(value, ctx.ChannelRoleOverrides)

	if ctx.MemberOverride != nil {
		value = ctx.MemberOverride.Apply(value)
	}

	return value
}

func applyRanked(value Value, overrides []RankedOverride) Value {
	if len(overrides) == 0 {
		return value
	}

	sorted := make([]RankedOverride, len(overrides))
	copy(sorted, overrides)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank > sorted[j].Rank
	})

	for _, o := range sorted {
		value = o.Override.Apply(value)
	}
	return value
}
