package lessons

// Plan tiers. A tier only sets the daily lesson cap; there is no billing
// enforcement behind it.
const (
	PlanBasic = "basic"
	PlanPlus  = "plus"
	PlanPro   = "pro"
)

// UnlimitedCap stands in for "no daily limit" on the pro tier. The ledger
// stays numeric, so unlimited is a large finite sentinel rather than a
// special value — it just has to exceed any plausible daily usage.
const UnlimitedCap = 9999

// CapForPlan maps a plan tier to its daily lesson cap. Unknown tiers get
// the basic cap.
func CapForPlan(plan string) int {
	switch plan {
	case PlanPro:
		return UnlimitedCap
	case PlanPlus:
		return 3
	default:
		return 1
	}
}
