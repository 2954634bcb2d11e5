package tool

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// seedOrders builds a fresh order book per tool instance; create and cancel
// operations mutate it, so instances must not share one.
func seedOrders() map[string]map[string]any {
	return map[string]map[string]any{
		"ORD-20481": {
			"order_id":    "ORD-20481",
			"customer_id": "cust-1001",
			"company":     "Northwind Logistics",
			"product_id":  "datainsight",
			"tier":        "professional",
			"seats":       40,
			"total":       3560.0,
			"order_date":  "2026-04-02",
			"status":      "delivered",
		},
		"ORD-20622": {
			"order_id":    "ORD-20622",
			"customer_id": "cust-1001",
			"company":     "Northwind Logistics",
			"product_id":  "flowauto",
			"tier":        "professional",
			"seats":       10,
			"total":       1490.0,
			"order_date":  "2026-08-10",
			"status":      "processing",
		},
		"ORD-19975": {
			"order_id":    "ORD-19975",
			"customer_id": "cust-1002",
			"company":     "Acme Health",
			"product_id":  "cloudsync",
			"tier":        "enterprise",
			"seats":       120,
			"total":       9480.0,
			"order_date":  "2025-12-01",
			"status":      "delivered",
		},
	}
}

// NewOrderManagement looks up, creates, and cancels orders against an
// in-memory order book. New order ids derive from the request contents so
// repeated calls with the same arguments agree.
func NewOrderManagement(errorRate float64, seed int64) *SimTool {
	orders := seedOrders()

	def := Definition{
		Name:        "order_management",
		Description: "Check order status, list a customer's orders, create new orders, and cancel pending orders",
		Parameters: map[string]Param{
			"order_id":     {Type: "string", Description: "Order ID to look up or cancel"},
			"customer_id":  {Type: "string", Description: "Customer ID to list or create orders for"},
			"status":       {Type: "string", Description: "Filter listed orders by status (pending, processing, delivered, cancelled)"},
			"create_order": {Type: "boolean", Description: "Create a new order"},
			"cancel_order": {Type: "boolean", Description: "Cancel an existing order"},
			"product_id":   {Type: "string", Description: "Product ID for a new order"},
			"tier":         {Type: "string", Description: "Product tier for a new order"},
			"seats":        {Type: "integer", Description: "Seat count for a new order"},
		},
	}
	return NewSimTool(def, errorRate, seed, func(args map[string]any) (any, error) {
		switch {
		case argBool(args, "create_order"):
			return createOrder(orders, args)
		case argBool(args, "cancel_order"):
			return cancelOrder(orders, args)
		}

		if id := argString(args, "order_id"); id != "" {
			order, ok := orders[id]
			if !ok {
				return nil, fmt.Errorf("no order with id %q", id)
			}
			return map[string]any{"order": order}, nil
		}

		customerID := argString(args, "customer_id")
		if customerID == "" {
			return nil, fmt.Errorf("order lookup needs order_id or customer_id")
		}
		status := strings.ToLower(argString(args, "status"))
		var matches []map[string]any
		for _, id := range sortedOrderIDs(orders) {
			order := orders[id]
			if order["customer_id"] != customerID {
				continue
			}
			if status != "" && order["status"] != status {
				continue
			}
			matches = append(matches, order)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no orders found for customer %q", customerID)
		}
		return map[string]any{
			"customer_id": customerID,
			"orders":      matches,
			"count":       len(matches),
		}, nil
	})
}

func createOrder(orders map[string]map[string]any, args map[string]any) (any, error) {
	customerID := argString(args, "customer_id")
	productID := strings.ToLower(argString(args, "product_id"))
	if customerID == "" || productID == "" {
		return nil, fmt.Errorf("create_order needs customer_id and product_id")
	}
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
	seats := argInt(args, "seats", plan.minUsers)
	if seats < plan.minUsers {
		seats = plan.minUsers
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(customerID + "|" + productID + "|" + tier))
	orderID := fmt.Sprintf("ORD-8%04d", h.Sum32()%10000)

	order := map[string]any{
		"order_id":    orderID,
		"customer_id": customerID,
		"product_id":  productID,
		"tier":        tier,
		"seats":       seats,
		"total":       round2(plan.basePerUser * float64(seats)),
		"status":      "pending",
	}
	orders[orderID] = order
	return map[string]any{
		"message": fmt.Sprintf("order %s created", orderID),
		"order":   order,
	}, nil
}

func cancelOrder(orders map[string]map[string]any, args map[string]any) (any, error) {
	orderID := argString(args, "order_id")
	if orderID == "" {
		return nil, fmt.Errorf("cancel_order needs order_id")
	}
	order, ok := orders[orderID]
	if !ok {
		return nil, fmt.Errorf("no order with id %q", orderID)
	}
	status, _ := order["status"].(string)
	if status == "delivered" || status == "cancelled" {
		return nil, fmt.Errorf("order %s is already %s and cannot be cancelled", orderID, status)
	}
	order["status"] = "cancelled"
	return map[string]any{
		"message": fmt.Sprintf("order %s cancelled", orderID),
		"order":   order,
	}, nil
}

func sortedOrderIDs(orders map[string]map[string]any) []string {
	ids := make([]string, 0, len(orders))
	for id := range orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
