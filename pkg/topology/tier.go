package topology

import (
	"slices"
	"strings"
)

// Tier is the topology layer a node belongs to. It governs both hierarchy
// resolution and visual grouping. Values outside the canonical set are
// allowed: they are raw exporter strings kept verbatim.
type Tier string

// Canonical tiers.
const (
	TierISP          Tier = "isp"
	TierArea         Tier = "area"
	TierNeighborhood Tier = "neighborhood"
	TierBuilding     Tier = "building"
	TierFloor        Tier = "floor"
	TierRouter       Tier = "router"
	TierUser         Tier = "user"
	TierHost         Tier = "host"
	TierToR          Tier = "tor"
	TierRack         Tier = "rack"
	TierPoP          Tier = "pop"
	TierBackbone     Tier = "backbone"
)

// Tiers lists the canonical tiers, hierarchy tiers first.
var Tiers = []Tier{
	TierISP, TierArea, TierNeighborhood, TierBuilding, TierFloor, TierRouter,
	TierUser, TierHost, TierToR, TierRack, TierPoP, TierBackbone,
}

// Known reports whether t is one of the canonical tiers.
func (t Tier) Known() bool {
	return slices.Contains(Tiers, t)
}

func (t Tier) String() string { return string(t) }

// typeTable maps lowercased exporter type strings to tiers.
var typeTable = func() map[string]Tier {
	m := map[string]Tier{
		"building_switch":     TierBuilding,
		"floor_switch":        TierFloor,
		"distribution_router": TierRouter,
		"access_switch":       TierToR,
		"rack_switch":         TierRack,
		"apartment_router":    TierUser,
	}
	for _, t := range Tiers {
		m[string(t)] = t
	}
	return m
}()

// ParseType maps an exporter type (or tier) string to a canonical tier.
// The lookup is case-insensitive. When s has no table entry ParseType returns
// s unchanged as the tier and false.
func ParseType(s string) (Tier, bool) {
	if t, ok := typeTable[strings.ToLower(s)]; ok {
		return t, true
	}
	return Tier(s), false
}

// NameRule is one step of name-based tier inference.
type NameRule struct {
	Desc  string            // human-readable test, e.g. "prefix isp"
	Match func(string) bool // receives the lowercased name
	Tier  Tier
}

// NameRules is the ordered inference table; the first matching rule wins.
var NameRules = []NameRule{
	{"prefix isp", hasPrefix("isp"), TierISP},
	{"prefix pop", hasPrefix("pop"), TierPoP},
	{"contains area", contains("area"), TierArea},
	{"contains neigh", contains("neigh"), TierNeighborhood},
	{"contains bld|building", contains("bld", "building"), TierBuilding},
	{"contains floor", contains("floor"), TierFloor},
	{"prefix tor or contains tor_|tor-", either(hasPrefix("tor"), contains("tor_", "tor-")), TierToR},
	{"contains rack", contains("rack"), TierRack},
	{"prefix rtr or contains router", either(hasPrefix("rtr"), contains("router")), TierRouter},
	{"prefix usr|user", hasPrefix("usr", "user"), TierUser},
	{"prefix host", hasPrefix("host"), TierHost},
}

// InferTier guesses a tier from a node name using [NameRules].
// Names matching no rule are hosts.
func InferTier(name string) Tier {
	lname := strings.ToLower(name)
	for _, r := range NameRules {
		if r.Match(lname) {
			return r.Tier
		}
	}
	return TierHost
}

func hasPrefix(prefixes ...string) func(string) bool {
	return func(s string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
		return false
	}
}

func contains(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

func either(preds ...func(string) bool) func(string) bool {
	return func(s string) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}
