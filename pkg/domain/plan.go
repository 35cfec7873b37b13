package domain

// Step is one stage of a plan. All units in a step are scheduled
// concurrently; their outputs are merged exactly once after all of them have
// completed (barrier/join, not a streaming merge).
type Step struct {
	UnitIDs []string `json:"units"`
}

// Plan is a directed sequence of steps executed in order.
type Plan struct {
	steps []Step
}

// NewPlan creates an empty plan.
func NewPlan() *Plan {
	return &Plan{}
}

// Step appends a single-unit step.
func (p *Plan) Step(unitID string) *Plan {
	return p.FanOut(unitID)
}

// FanOut appends a step that runs the given units concurrently.
func (p *Plan) FanOut(unitIDs ...string) *Plan {
	if len(unitIDs) == 0 {
		return p
	}
	ids := append([]string(nil), unitIDs...)
	p.steps = append(p.steps, Step{UnitIDs: ids})
	return p
}

// Steps returns the step sequence.
func (p *Plan) Steps() []Step {
	return p.steps
}

// Len returns the number of steps.
func (p *Plan) Len() int {
	return len(p.steps)
}
