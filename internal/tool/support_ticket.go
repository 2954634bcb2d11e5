package tool

import (
	"fmt"
	"hash/fnv"
	"strings"
)

var ticketPriorities = map[string]string{
	"low":      "72h",
	"medium":   "24h",
	"high":     "8h",
	"critical": "1h",
}

// NewSupportTicket files support tickets. Ticket ids are derived from the
// request contents so repeated calls with the same arguments agree.
func NewSupportTicket(errorRate float64, seed int64) *SimTool {
	def := Definition{
		Name:        "support_ticket",
		Description: "Create a support ticket for a customer issue",
		Parameters: map[string]Param{
			"customer_id": {Type: "string", Description: "Customer ID the ticket is for", Required: true},
			"subject":     {Type: "string", Description: "Short description of the issue", Required: true},
			"description": {Type: "string", Description: "Detailed issue description"},
			"priority":    {Type: "string", Description: "Ticket priority (low, medium, high, critical)"},
		},
	}
	return NewSimTool(def, errorRate, seed, func(args map[string]any) (any, error) {
		customerID := argString(args, "customer_id")
		subject := argString(args, "subject")
		if subject == "" {
			return nil, fmt.Errorf("empty subject")
		}

		priority := strings.ToLower(argString(args, "priority"))
		if priority == "" {
			priority = "medium"
		}
		sla, ok := ticketPriorities[priority]
		if !ok {
			return nil, fmt.Errorf("invalid priority %q (expected low, medium, high, or critical)", priority)
		}

		h := fnv.New32a()
		_, _ = h.Write([]byte(customerID + "|" + subject))
		return map[string]any{
			"ticket_id":    fmt.Sprintf("TICK-%06d", h.Sum32()%1000000),
			"customer_id":  customerID,
			"subject":      subject,
			"priority":     priority,
			"status":       "open",
			"response_sla": sla,
		}, nil
	})
}
