package hazard

// Standard GHS hazard class codes covered by the default rule table.
const (
	CodeExplosive     = "GHS01"
	CodeFlammable     = "GHS02"
	CodeOxidizing     = "GHS03"
	CodeCompressedGas = "GHS04"
	CodeCorrosive     = "GHS05"
	CodeAcuteToxicity = "GHS06"
	CodeSeriousHealth = "GHS07"
	CodeHealthHazard  = "GHS08"
	CodeEnvironmental = "GHS09"
)

// Status represents the compatibility verdict category for a hazard pair.
type Status string

const (
	StatusSafe    Status = "safe"    // Actual distance meets or exceeds the required minimum
	StatusCaution Status = "caution" // Actual distance is within the warning band below the minimum
	StatusDanger  Status = "danger"  // Actual distance is too short, or the pair must be isolated
)

// pairKey is the normalized identity of an unordered class pair.
// Codes are ordered lexicographically so (A,B) and (B,A) share one key.
type pairKey struct {
	low  string
	high string
}

func newPairKey(codeA, codeB string) pairKey {
	if codeB < codeA {
		codeA, codeB = codeB, codeA
	}
	return pairKey{low: codeA, high: codeB}
}

// TableConfig holds the tunable distance thresholds of a rule table.
type TableConfig struct {
	SameClassMinDistance float64 // Minimum separation for two containers of the same class
	DefaultMinDistance   float64 // Fallback minimum when no pair-specific rule exists
	CautionFactor        float64 // Fraction of the minimum below which the verdict becomes danger
}

// DefaultTableConfig returns the baseline thresholds.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		SameClassMinDistance: 3.0,
		DefaultMinDistance:   5.0,
		CautionFactor:        0.6,
	}
}

// RuleTable maps unordered hazard class pairs to their separation requirements.
// It is immutable after construction and safe for concurrent lookups.
type RuleTable struct {
	config       TableConfig
	minDistances map[pairKey]float64
	isolated     map[pairKey]struct{}
}

// NewRuleTable creates an empty rule table with the given thresholds.
func NewRuleTable(cfg TableConfig) *RuleTable {
	return &RuleTable{
		config:       cfg,
		minDistances: make(map[pairKey]float64),
		isolated:     make(map[pairKey]struct{}),
	}
}

// AddMinDistance registers a pair-specific minimum separation distance.
func (t *RuleTable) AddMinDistance(codeA, codeB string, minDistance float64) {
	t.minDistances[newPairKey(codeA, codeB)] = minDistance
}

// AddIsolation marks a pair as requiring complete isolation. No finite
// separation distance is acceptable for an isolated pair.
func (t *RuleTable) AddIsolation(codeA, codeB string) {
	t.isolated[newPairKey(codeA, codeB)] = struct{}{}
}

// IsIsolated reports whether the pair must never share a container.
func (t *RuleTable) IsIsolated(codeA, codeB string) bool {
	_, ok := t.isolated[newPairKey(codeA, codeB)]
	return ok
}

// MinDistance returns the minimum required separation for a non-isolated pair.
// Same-class pairs use the same-class threshold; pairs without a specific rule
// fall back to the default compatible minimum.
func (t *RuleTable) MinDistance(codeA, codeB string) float64 {
	if codeA == codeB {
		return t.config.SameClassMinDistance
	}
	if d, ok := t.minDistances[newPairKey(codeA, codeB)]; ok {
		return d
	}
	return t.config.DefaultMinDistance
}

// CautionFactor returns the fraction of the minimum distance that separates
// the caution band from the danger band.
func (t *RuleTable) CautionFactor() float64 {
	return t.config.CautionFactor
}

// DefaultRuleTable returns the rule table seeded with the standard GHS
// incompatibility rules used by the safety assessment.
func DefaultRuleTable(cfg TableConfig) *RuleTable {
	t := NewRuleTable(cfg)

	// Pairs that must be completely isolated, never stored together.
	t.AddIsolation(CodeExplosive, CodeFlammable)
	t.AddIsolation(CodeExplosive, CodeOxidizing)

	// Incompatible pairs that require a specific separation distance (meters).
	t.AddMinDistance(CodeExplosive, CodeFlammable, 25.0)
	t.AddMinDistance(CodeExplosive, CodeOxidizing, 30.0)
	t.AddMinDistance(CodeFlammable, CodeOxidizing, 20.0)
	t.AddMinDistance(CodeExplosive, CodeCorrosive, 25.0)
	t.AddMinDistance(CodeExplosive, CodeAcuteToxicity, 30.0)
	t.AddMinDistance(CodeFlammable, CodeCorrosive, 15.0)
	t.AddMinDistance(CodeOxidizing, CodeCorrosive, 20.0)
	t.AddMinDistance(CodeCorrosive, CodeAcuteToxicity, 15.0)

	return t
}
