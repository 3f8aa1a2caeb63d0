package flags

import "fmt"

// Target describes the runtime restrictions of the caller consuming resolved streams.
type Target string

const (
	// TargetBrowser is a regular web page: no header-carrying or cross-origin requests.
	TargetBrowser Target = "browser"

	// TargetExtension is a browser extension with permission to set request headers.
	TargetExtension Target = "browser-extension"

	// TargetNative is a runtime without fetch restrictions (desktop or mobile app).
	TargetNative Target = "native"

	// TargetAny imposes no requirements at all.
	TargetAny Target = "any"
)

// Targets lists every valid target value.
var Targets = []Target{TargetBrowser, TargetExtension, TargetNative, TargetAny}

// ParseTarget validates a raw string against the known target values.
func ParseTarget(raw string) (Target, error) {
	for _, t := range Targets {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown target %q", raw)
}

// Features is the derived set of flag requirements for a resolution request.
// A provider or stream passes the gate iff it carries every required flag and none of the disallowed ones.
type Features struct {
	Requires   Set
	Disallowed Set
}

// targetFeatures is the static per-target requirement table.
var targetFeatures = map[Target]Features{
	TargetBrowser:   {Requires: NewSet(CORSAllowed), Disallowed: NewSet()},
	TargetExtension: {Requires: NewSet(), Disallowed: NewSet()},
	TargetNative:    {Requires: NewSet(), Disallowed: NewSet()},
	TargetAny:       {Requires: NewSet(), Disallowed: NewSet()},
}

// DeriveFeatures computes the feature set for a target and the caller's two capability booleans.
// A caller that cannot keep a consistent IP across requests loses access to IP-locked streams.
// A caller whose engine may not rewrite through the proxy loses access to proxy-blocked streams.
func DeriveFeatures(target Target, consistentIP, proxyingEnabled bool) Features {
	base, ok := targetFeatures[target]
	if !ok {
		base = targetFeatures[TargetAny]
	}

	f := Features{
		Requires:   base.Requires.Clone(),
		Disallowed: base.Disallowed.Clone(),
	}

	if !consistentIP {
		f.Disallowed.Add(IPLocked)
	}
	if !proxyingEnabled {
		f.Disallowed.Add(ProxyBlocked)
	}

	return f
}

// Compatible is the single gate used both to filter which providers may run
// and to filter which returned streams may be kept.
func Compatible(f Features, flags Set) bool {
	for required := range f.Requires {
		if !flags.Has(required) {
			return false
		}
	}
	for disallowed := range f.Disallowed {
		if flags.Has(disallowed) {
			return false
		}
	}
	return true
}
