package tool

import "fmt"

type interaction struct {
	Date    string `json:"date"`
	Channel string `json:"channel"`
	Summary string `json:"summary"`
}

var customerRecords = map[string]map[string]any{
	"cust-1001": {
		"customer_id": "cust-1001",
		"company":     "Northwind Logistics",
		"plan":        "datainsight professional",
		"since":       "2024-03-12",
		"interactions": []interaction{
			{"2026-06-02", "email", "Asked about upgrading to enterprise tier."},
			{"2026-07-18", "phone", "Reported slow dashboard loads; resolved by support."},
		},
	},
	"cust-1002": {
		"customer_id": "cust-1002",
		"company":     "Acme Health",
		"plan":        "cloudsync enterprise",
		"since":       "2023-11-01",
		"interactions": []interaction{
			{"2026-05-20", "ticket", "Requested HIPAA compliance documentation."},
		},
	},
}

// NewCustomerHistory returns account records and past interactions.
func NewCustomerHistory(errorRate float64, seed int64) *SimTool {
	def := Definition{
		Name:        "customer_history",
		Description: "Retrieve a customer's account record and interaction history",
		Parameters: map[string]Param{
			"customer_id": {Type: "string", Description: "Customer ID to look up", Required: true},
		},
	}
	return NewSimTool(def, errorRate, seed, func(args map[string]any) (any, error) {
		id := argString(args, "customer_id")
		record, ok := customerRecords[id]
		if !ok {
			return nil, fmt.Errorf("no customer with id %q", id)
		}
		return record, nil
	})
}
