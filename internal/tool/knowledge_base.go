package tool

import (
	"fmt"
	"strings"
)

type kbArticle struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

var kbArticles = []kbArticle{
	{"kb-001", "products", "DataInsight Enterprise overview",
		"DataInsight Enterprise is our flagship analytics platform with real-time dashboards, anomaly detection, and role-based access control."},
	{"kb-002", "products", "CloudSync tiers",
		"CloudSync is offered in standard, professional, and enterprise tiers. Enterprise adds SSO, audit logging, and a 99.95% uptime SLA."},
	{"kb-003", "implementation", "Implementation timeline",
		"A typical enterprise implementation takes 6 to 8 weeks: discovery, data migration, integration, and user training."},
	{"kb-004", "policies", "Data retention policy",
		"Customer data is retained for 90 days after contract termination, then permanently deleted. Backups rotate on a 30 day cycle."},
	{"kb-005", "support", "Support plans",
		"Standard support covers business hours with 8 hour response. Premium support is 24/7 with a 1 hour response SLA."},
	{"kb-006", "training", "Training options",
		"We offer self-paced online courses, weekly live webinars, and on-site workshops for teams of 10 or more."},
	{"kb-007", "policies", "Compliance certifications",
		"The platform is SOC 2 Type II certified and GDPR compliant. HIPAA-ready deployments are available on the enterprise tier."},
}

// NewKnowledgeBase searches a small in-memory article set by keyword.
func NewKnowledgeBase(errorRate float64, seed int64) *SimTool {
	def := Definition{
		Name:        "knowledge_base",
		Description: "Search the company knowledge base for information about products, services, policies, and procedures",
		Parameters: map[string]Param{
			"query":       {Type: "string", Description: "Search query string", Required: true},
			"categories":  {Type: "array", Description: "Categories to search within (products, policies, implementation, training, support)"},
			"max_results": {Type: "integer", Description: "Maximum number of results to return"},
		},
	}
	return NewSimTool(def, errorRate, seed, func(args map[string]any) (any, error) {
		query := strings.ToLower(argString(args, "query"))
		if query == "" {
			return nil, fmt.Errorf("empty query")
		}
		categories := argStrings(args, "categories")
		maxResults := argInt(args, "max_results", 3)
		if maxResults <= 0 {
			maxResults = 3
		}

		terms := strings.Fields(query)
		var matches []kbArticle
		for _, a := range kbArticles {
			if len(categories) > 0 && !containsFold(categories, a.Category) {
				continue
			}
			haystack := strings.ToLower(a.Title + " " + a.Content)
			for _, term := range terms {
				if strings.Contains(haystack, term) {
					matches = append(matches, a)
					break
				}
			}
			if len(matches) >= maxResults {
				break
			}
		}
		return map[string]any{
			"query":   query,
			"results": matches,
			"count":   len(matches),
		}, nil
	})
}

func containsFold(list []string, target string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), target) {
			return true
		}
	}
	return false
}
