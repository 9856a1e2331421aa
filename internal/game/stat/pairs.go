package stat

// resourcePairs is the static table binding each current-resource stat to
// its maximum counterpart. The pairing is explicit rather than derived from
// name prefixes so that an unpaired identifier is unrepresentable.
var resourcePairs = map[Derived]Derived{
	Health:  MaxHealth,
	Mana:    MaxMana,
	Stamina: MaxStamina,
	Resolve: MaxResolve,
}

// maxToCurrent is the inverse of resourcePairs, built at init.
var maxToCurrent = func() map[Derived]Derived {
	m := make(map[Derived]Derived, len(resourcePairs))
	for cur, max := range resourcePairs {
		m[max] = cur
	}
	return m
}()

// MaxOf returns the maximum-resource counterpart for a current-resource stat.
// Postcondition: ok is true iff d is one of Health, Mana, Stamina, Resolve.
func MaxOf(d Derived) (Derived, bool) {
	max, ok := resourcePairs[d]
	return max, ok
}

// CurrentOf returns the current-resource counterpart for a maximum-resource stat.
// Postcondition: ok is true iff d is one of MaxHealth, MaxMana, MaxStamina, MaxResolve.
func CurrentOf(d Derived) (Derived, bool) {
	cur, ok := maxToCurrent[d]
	return cur, ok
}

// IsCurrentResource reports whether d is a stored current-resource value.
func IsCurrentResource(d Derived) bool {
	_, ok := resourcePairs[d]
	return ok
}

// IsMaxResource reports whether d is the maximum side of a resource pair.
func IsMaxResource(d Derived) bool {
	_, ok := maxToCurrent[d]
	return ok
}

// ResourcePairs returns the current-resource stats in declaration order.
// The slice is a new allocation on every call.
func ResourcePairs() []Derived {
	return []Derived{Health, Mana, Stamina, Resolve}
}
