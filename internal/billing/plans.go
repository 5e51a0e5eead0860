// Package billing enforces subscription plan limits and schedules the
// monthly usage reset.
package billing

// Limits describes what a plan allows per calendar month. Unlimited is -1.
type Limits struct {
	MaxActiveJobs int
	MaxAnalyses   int
}

// Unlimited marks a quota with no cap.
const Unlimited = -1

var planLimits = map[string]Limits{
	"free":    {MaxActiveJobs: 2, MaxAnalyses: 10},
	"starter": {MaxActiveJobs: 10, MaxAnalyses: 100},
	"pro":     {MaxActiveJobs: Unlimited, MaxAnalyses: Unlimited},
}

// PlanLimits returns the limits for a plan. Unknown plans get free limits,
// so a bad row never grants unlimited usage.
func PlanLimits(plan string) Limits {
	if l, ok := planLimits[plan]; ok {
		return l
	}
	return planLimits["free"]
}

// ValidPlan reports whether the plan name is one we sell.
func ValidPlan(plan string) bool {
	_, ok := planLimits[plan]
	return ok
}

// CanCreateJob reports whether a user with activeJobs open or draft jobs may
// post another under the given plan.
func CanCreateJob(plan string, activeJobs int) bool {
	l := PlanLimits(plan)
	return l.MaxActiveJobs == Unlimited || activeJobs < l.MaxActiveJobs
}

// CanRunAnalysis reports whether n more resume analyses fit in this month's
// quota.
func CanRunAnalysis(plan string, analysesUsed, n int) bool {
	l := PlanLimits(plan)
	return l.MaxAnalyses == Unlimited || analysesUsed+n <= l.MaxAnalyses
}
