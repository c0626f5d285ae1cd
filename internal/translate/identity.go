package translate

// Resolver maps dump author names onto importable identities. Names in the
// active set pass through unchanged; everything else collapses to the
// placeholder identity, which anonymizes stale accounts while preserving
// active contributors' attribution. The exclusion set always wins over the
// active set.
type Resolver struct {
	active      map[string]struct{}
	excluded    map[string]struct{}
	placeholder string
}

// NewResolver builds a Resolver over a precomputed active-users set.
// The set is not copied; it must not be mutated after this call.
func NewResolver(active map[string]struct{}, excluded []string, placeholder string) *Resolver {
	r := &Resolver{
		active:      active,
		excluded:    make(map[string]struct{}, len(excluded)),
		placeholder: placeholder,
	}
	for _, name := range excluded {
		r.excluded[name] = struct{}{}
	}
	return r
}

// Resolve returns name if it belongs to an active user, the placeholder
// identity otherwise. Idempotent for a given Resolver.
func (r *Resolver) Resolve(name string) string {
	if r.IsActive(name) {
		return name
	}
	return r.placeholder
}

// IsActive reports whether name counts as an active user. Excluded names
// are never active regardless of set membership.
func (r *Resolver) IsActive(name string) bool {
	if _, bad := r.excluded[name]; bad {
		return false
	}
	_, ok := r.active[name]
	return ok
}

// Placeholder returns the identity substituted for inactive users.
func (r *Resolver) Placeholder() string { return r.placeholder }
