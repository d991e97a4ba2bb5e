package models

import "fmt"

// Plan selects how much of the style guide is generated.
type Plan string

const (
	PlanPreview  Plan = "preview"
	PlanCore     Plan = "core"
	PlanComplete Plan = "complete"
)

// ParsePlan converts a request value into a Plan.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case PlanPreview, PlanCore, PlanComplete:
		return p, nil
	case "":
		return PlanCore, nil
	default:
		return "", fmt.Errorf("unknown plan %q", s)
	}
}

// RuleCount is the number of rule categories generated for the plan.
func (p Plan) RuleCount() int {
	switch p {
	case PlanCore:
		return 25
	case PlanComplete:
		return 99
	default:
		return 0
	}
}

// Tier is a customer's paid subscription level.
type Tier string

const (
	TierFree     Tier = "free"
	TierCore     Tier = "core"
	TierComplete Tier = "complete"
)

// Allows reports whether a subscriber on this tier may generate the plan.
// Previews are open to everyone.
func (t Tier) Allows(p Plan) bool {
	switch p {
	case PlanPreview:
		return true
	case PlanCore:
		return t == TierCore || t == TierComplete
	case PlanComplete:
		return t == TierComplete
	}
	return false
}

// TierForPlan returns the tier a successful purchase of the plan grants.
func TierForPlan(p Plan) Tier {
	switch p {
	case PlanCore:
		return TierCore
	case PlanComplete:
		return TierComplete
	}
	return TierFree
}
