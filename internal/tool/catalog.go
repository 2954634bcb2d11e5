package tool

import (
	"fmt"
	"strings"
)

type product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Tiers    []string `json:"tiers"`
	Summary  string   `json:"summary"`
}

var products = []product{
	{"datainsight", "DataInsight Enterprise", "analytics",
		[]string{"standard", "professional", "enterprise"},
		"Real-time analytics platform with dashboards, anomaly detection, and RBAC."},
	{"cloudsync", "CloudSync", "storage",
		[]string{"standard", "professional", "enterprise"},
		"Managed file synchronization with versioning and enterprise SSO."},
	{"flowauto", "FlowAuto", "automation",
		[]string{"professional", "enterprise"},
		"Workflow automation with 200+ connectors and approval chains."},
}

// NewProductCatalog looks up products by id or category.
func NewProductCatalog(errorRate float64, seed int64) *SimTool {
	def := Definition{
		Name:        "product_catalog",
		Description: "Look up product details, available tiers, and feature summaries",
		Parameters: map[string]Param{
			"product_id": {Type: "string", Description: "Product ID to look up"},
			"category":   {Type: "string", Description: "Product category to list"},
		},
	}
	return NewSimTool(def, errorRate, seed, func(args map[string]any) (any, error) {
		productID := strings.ToLower(argString(args, "product_id"))
		category := strings.ToLower(argString(args, "category"))
		if productID == "" && category == "" {
			return map[string]any{"products": products}, nil
		}
		if productID != "" {
			for _, p := range products {
				if p.ID == productID {
					return map[string]any{"product": p}, nil
				}
			}
			return nil, fmt.Errorf("unknown product %q", productID)
		}
		var matched []product
		for _, p := range products {
			if p.Category == category {
				matched = append(matched, p)
			}
		}
		if len(matched) == 0 {
			return nil, fmt.Errorf("no products in category %q", category)
		}
		return map[string]any{"products": matched}, nil
	})
}
