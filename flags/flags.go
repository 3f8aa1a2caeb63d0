// Package flags models provider and stream capabilities and the caller's runtime feature requirements.
package flags

// Flag is a declared capability or restriction carried by a provider or an individual stream.
type Flag string

const (
	// CORSAllowed marks a stream that can be fetched cross-origin by a browser runtime.
	CORSAllowed Flag = "cors-allowed"

	// IPLocked marks a stream that only plays from the IP that requested it.
	// Incompatible with proxying and with callers that cannot guarantee a consistent IP.
	IPLocked Flag = "ip-locked"

	// CFBlocked marks an origin that blocks the proxy's network.
	CFBlocked Flag = "cf-blocked"

	// ProxyBlocked marks a stream that must never be routed through the proxy.
	ProxyBlocked Flag = "proxy-blocked"
)

// Set is an unordered collection of flags.
type Set map[Flag]struct{}

// NewSet constructs a Set from the given flags.
func NewSet(flags ...Flag) Set {
	s := make(Set, len(flags))
	for _, f := range flags {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether the flag is present in the set.
func (s Set) Has(f Flag) bool {
	_, ok := s[f]
	return ok
}

// Add inserts a flag into the set.
func (s Set) Add(f Flag) {
	s[f] = struct{}{}
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for f := range s {
		out[f] = struct{}{}
	}
	return out
}

// List returns the flags as a slice. Order is unspecified.
func (s Set) List() []Flag {
	out := make([]Flag, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	return out
}
