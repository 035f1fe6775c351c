// Package scoring rates how complete and well-attested a lead is. The score
// is a probability in [0, 1] used to rank leads for follow-up.
package scoring

import (
	"fmt"
	"strings"

	"leadhub/internal/lead/models"
)

// Factor names, in the order they appear in the reason text.
const (
	FactorEmail            = "hasEmail"
	FactorPhone            = "hasPhone"
	FactorAadhar           = "hasAadhar"
	FactorName             = "hasName"
	FactorMultipleSources  = "multipleSources"
	FactorMultipleProducts = "multipleProducts"
)

const maxPoints = 100.0

// Factor is one scoring rule and whether it applied to the lead.
type Factor struct {
	Points  int  `json:"points"`
	Applied bool `json:"applied"`
}

// Result is the score, a human readable reason and the per-factor breakdown.
type Result struct {
	Score     float64           `json:"score"`
	Reason    string            `json:"reason"`
	Breakdown map[string]Factor `json:"breakdown"`
}

type rule struct {
	name   string
	points int
	match  func(*models.Lead) bool
}

var rules = []rule{
	{FactorEmail, 30, func(l *models.Lead) bool { return present(l.Email) }},
	{FactorPhone, 30, func(l *models.Lead) bool { return present(l.PhoneNumber) }},
	{FactorAadhar, 20, func(l *models.Lead) bool { return present(l.AadharNumber) }},
	{FactorName, 10, func(l *models.Lead) bool { return present(l.Name) }},
	{FactorMultipleSources, 10, func(l *models.Lead) bool { return len(l.SourcesSeen) > 1 }},
	{FactorMultipleProducts, 10, func(l *models.Lead) bool { return len(l.ProductsSeen) > 1 }},
}

// Score evaluates every rule against l.
func Score(l *models.Lead) Result {
	breakdown := make(map[string]Factor, len(rules))
	applied := make([]string, 0, len(rules))
	total := 0
	for _, r := range rules {
		ok := r.match(l)
		breakdown[r.name] = Factor{Points: r.points, Applied: ok}
		if ok {
			total += r.points
			applied = append(applied, fmt.Sprintf("%s (+%d)", r.name, r.points))
		}
	}

	reason := "No scoring factors applied"
	if len(applied) > 0 {
		reason = "Probability based on: " + strings.Join(applied, ", ")
	}
	return Result{
		Score:     min(float64(total), maxPoints) / maxPoints,
		Reason:    reason,
		Breakdown: breakdown,
	}
}

func present(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}
