package permissions

// Override is a pair of bitfields describing a permission delta applied
// on top of a base value. Deny is applied before Allow, so within a
// single override an allowed bit survives its own deny.
type Override struct {
	Allow Value `json:"allow,string"`
	Deny  Value `json:"deny,string"`
}

// Apply layers the override onto a base value: (base &^ deny) | allow.
func (o Override) Apply(base Value) Value {
	return base.Remove(o.Deny).Add(o.Allow)
}

// Normalize returns the override with any bit present in both planes
// kept only in the deny plane. Deny wins ties.
func (o Override) Normalize() Override {
	return Override{
		Allow: o.Allow.Remove(o.Deny),
		Deny:  o.Deny,
	}
}

// IsZero reports whether the override grants and denies nothing.
func (o Override) IsZero() bool {
	return o.Allow == 0 && o.Deny == 0
}
