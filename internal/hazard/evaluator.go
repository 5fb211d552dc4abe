package hazard

// Verdict is the result of evaluating a hazard class pair at a given
// separation distance.
type Verdict struct {
	Status     Status `json:"status"`
	IsIsolated bool   `json:"isIsolated"`
	// MinRequiredDistance is nil when the pair requires isolation, meaning no
	// finite separation distance satisfies the rule.
	MinRequiredDistance *float64 `json:"minRequiredDistance"`
}

// Evaluator derives compatibility verdicts from a rule table. It is pure and
// symmetric: Evaluate(A, B, d) and Evaluate(B, A, d) always agree.
type Evaluator struct {
	rules *RuleTable
}

// NewEvaluator creates an evaluator backed by the given rule table.
func NewEvaluator(rules *RuleTable) *Evaluator {
	return &Evaluator{rules: rules}
}

// Rules exposes the underlying rule table.
func (e *Evaluator) Rules() *RuleTable {
	return e.rules
}

// Evaluate computes the verdict for two hazard class codes at the given actual
// separation distance. Negative distances are treated as zero; rejecting them
// is the submission boundary's job, not the evaluator's.
func (e *Evaluator) Evaluate(codeA, codeB string, distance float64) Verdict {
	if distance < 0 {
		distance = 0
	}

	if codeA != codeB && e.rules.IsIsolated(codeA, codeB) {
		return Verdict{
			Status:              StatusDanger,
			IsIsolated:          true,
			MinRequiredDistance: nil,
		}
	}

	minDistance := e.rules.MinDistance(codeA, codeB)
	return Verdict{
		Status:              e.band(distance, minDistance),
		IsIsolated:          false,
		MinRequiredDistance: &minDistance,
	}
}

// band places an actual distance into the safe/caution/danger band relative to
// the required minimum.
func (e *Evaluator) band(distance, minDistance float64) Status {
	switch {
	case distance >= minDistance:
		return StatusSafe
	case distance >= minDistance*e.rules.CautionFactor():
		return StatusCaution
	default:
		return StatusDanger
	}
}
