package tool

import (
	"fmt"
	"math"
	"strings"
)

type pricingPlan struct {
	basePerUser float64
	minUsers    int
}

var pricingPlans = map[string]map[string]pricingPlan{
	"datainsight": {
		"standard":     {basePerUser: 49, minUsers: 5},
		"professional": {basePerUser: 89, minUsers: 10},
		"enterprise":   {basePerUser: 149, minUsers: 25},
	},
	"cloudsync": {
		"standard":     {basePerUser: 19, minUsers: 1},
		"professional": {basePerUser: 39, minUsers: 5},
		"enterprise":   {basePerUser: 79, minUsers: 20},
	},
}

// term length in months -> discount fraction
var termDiscounts = map[int]float64{
	12: 0.0,
	24: 0.10,
	36: 0.15,
}

// NewPricingCalculator produces deterministic quotes from a static rate card.
func NewPricingCalculator(errorRate float64, seed int64) *SimTool {
	def := Definition{
		Name:        "pricing_calculator",
		Description: "Calculate pricing for products and services based on configuration options",
		Parameters: map[string]Param{
			"product_id":  {Type: "string", Description: "Product ID to calculate pricing for", Required: true},
			"users":       {Type: "integer", Description: "Number of users"},
			"term_length": {Type: "integer", Description: "Contract term length in months (12, 24, or 36)"},
			"tier":        {Type: "string", Description: "Product tier (standard, professional, enterprise)"},
			"deployment":  {Type: "string", Description: "Deployment type (cloud or on_premise)"},
		},
	}
	return NewSimTool(def, errorRate, seed, func(args map[string]any) (any, error) {
		productID := strings.ToLower(argString(args, "product_id"))
		tiers, ok := pricingPlans[productID]
		if !ok {
			return nil, fmt.Errorf("unknown product %q", productID)
		}

		tier := strings.ToLower(argString(args, "tier"))
		if tier == "" {
			tier = "standard"
		}
		plan, ok := tiers[tier]
		if !ok {
			return nil, fmt.Errorf("unknown tier %q for product %q", tier, productID)
		}

		users := argInt(args, "users", plan.minUsers)
		if users < plan.minUsers {
			users = plan.minUsers
		}

		term := argInt(args, "term_length", 12)
		discount, ok := termDiscounts[term]
		if !ok {
			return nil, fmt.Errorf("invalid term_length %d (expected 12, 24, or 36)", term)
		}

		deployment := strings.ToLower(argString(args, "deployment"))
		deploymentMultiplier := 1.0
		if deployment == "on_premise" {
			deploymentMultiplier = 1.25
		}

		monthly := plan.basePerUser * float64(users) * deploymentMultiplier
		total := monthly * float64(term) * (1 - discount)
		return map[string]any{
			"product_id":    productID,
			"tier":          tier,
			"users":         users,
			"term_length":   term,
			"deployment":    deployment,
			"monthly_price": round2(monthly),
			"discount":      discount,
			"total_price":   round2(total),
			"currency":      "USD",
		}, nil
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
