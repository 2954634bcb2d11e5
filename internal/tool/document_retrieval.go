package tool

import (
	"fmt"
	"sort"
	"strings"
)

type docSection struct {
	DocumentID string `json:"document_id"`
	Document   string `json:"document"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	keywords   []string
}

var documentLibrary = map[string][]docSection{
	"technical_documentation": {
		{"TD-API-001", "API Reference Guide", "Authentication",
			"The API uses OAuth 2.0. Access tokens expire after 1 hour; implement the refresh token flow for continuous access.",
			[]string{"authentication", "oauth", "token", "security"}},
		{"TD-API-001", "API Reference Guide", "Rate limiting",
			"Default rate limits are 100 requests per minute per API key. Enterprise tenants receive 500 requests per minute. Use exponential backoff on rate limit errors.",
			[]string{"rate limit", "throttling", "backoff", "enterprise"}},
		{"TD-SDK-002", "SDK Implementation Guide", "Known issues",
			"SDK 4.2.1 has a connection pool memory leak on large batch operations. Workaround: limit batches to 500 items and disable pooling in serverless environments.",
			[]string{"known issues", "memory leak", "connection pool", "batch", "serverless"}},
	},
	"legal_documentation": {
		{"LD-SLA-001", "Service Level Agreement", "Uptime commitments",
			"Standard tier: 99.5% uptime measured monthly excluding scheduled maintenance. Enterprise tier: 99.95% uptime including scheduled maintenance.",
			[]string{"uptime", "sla", "maintenance", "enterprise"}},
		{"LD-SLA-001", "Service Level Agreement", "Service credits",
			"Standard tier: 10% of monthly fees per 0.1% below commitment. Enterprise tier: 15%. Credits must be requested within 15 days of the incident.",
			[]string{"service credits", "sla", "compensation"}},
		{"LD-DPA-001", "Data Processing Agreement", "Breach notification",
			"We notify the customer no later than 36 hours after discovering a personal data breach, supporting GDPR's 72 hour notification requirement.",
			[]string{"breach", "notification", "gdpr", "data breach"}},
	},
	"product_guide": {
		{"PG-DI-001", "DataInsight Administration Guide", "Role-based access",
			"DataInsight roles are viewer, analyst, and admin. Dashboard sharing outside the organization requires the enterprise tier.",
			[]string{"rbac", "roles", "dashboard", "sharing"}},
		{"PG-CS-001", "CloudSync Deployment Guide", "Sync conflict handling",
			"Conflicting edits create a versioned copy rather than overwriting. Version history is retained for 30 days on standard and 180 days on enterprise.",
			[]string{"sync", "conflict", "versioning", "retention"}},
	},
}

// NewDocumentRetrieval searches company documentation by type and keyword.
// Sections are ranked by how many keywords hit their tag list, title, and body.
func NewDocumentRetrieval(errorRate float64, seed int64) *SimTool {
	def := Definition{
		Name:        "document_retrieval",
		Description: "Retrieve company documentation including technical documentation, legal documents, and product guides",
		Parameters: map[string]Param{
			"document_type": {Type: "string", Description: "Document type (technical_documentation, legal_documentation, product_guide)", Required: true},
			"keywords":      {Type: "array", Description: "Keywords to search for", Required: true},
			"max_results":   {Type: "integer", Description: "Maximum number of sections to return"},
		},
	}
	return NewSimTool(def, errorRate, seed, func(args map[string]any) (any, error) {
		docType := strings.ToLower(argString(args, "document_type"))
		sections, ok := documentLibrary[docType]
		if !ok {
			return nil, fmt.Errorf("unknown document type %q (expected technical_documentation, legal_documentation, or product_guide)", docType)
		}
		keywords := argStrings(args, "keywords")
		if len(keywords) == 0 {
			return nil, fmt.Errorf("no keywords given")
		}
		maxResults := argInt(args, "max_results", 5)
		if maxResults <= 0 {
			maxResults = 5
		}

		type scored struct {
			docSection
			Relevance int `json:"relevance"`
		}
		var matches []scored
		for _, s := range sections {
			score := sectionScore(s, keywords)
			if score > 0 {
				matches = append(matches, scored{docSection: s, Relevance: score})
			}
		}
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Relevance > matches[j].Relevance })
		if len(matches) > maxResults {
			matches = matches[:maxResults]
		}
		return map[string]any{
			"document_type": docType,
			"sections":      matches,
			"count":         len(matches),
		}, nil
	})
}

func sectionScore(s docSection, keywords []string) int {
	title := strings.ToLower(s.Title)
	content := strings.ToLower(s.Content)
	score := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if containsFold(s.keywords, kw) {
			score += 3
		}
		if strings.Contains(title, kw) {
			score += 2
		}
		if strings.Contains(content, kw) {
			score++
		}
	}
	return score
}
