package tool

import (
	"fmt"
	"hash/fnv"
	"time"
)

var meetingTypes = map[string]bool{
	"sales_call":             true,
	"product_demo":           true,
	"technical_consultation": true,
	"support_session":        true,
}

// NewScheduler checks availability and books appointments. Slot generation
// is a pure function of the requested date so repeated calls agree.
func NewScheduler(errorRate float64, seed int64) *SimTool {
	def := Definition{
		Name:        "scheduler",
		Description: "Check availability and schedule appointments with sales representatives, technical specialists, or support staff",
		Parameters: map[string]Param{
			"meeting_type": {Type: "string", Description: "Type of meeting (sales_call, product_demo, technical_consultation, support_session)", Required: true},
			"date":         {Type: "string", Description: "Preferred date (YYYY-MM-DD)"},
			"duration":     {Type: "integer", Description: "Duration in minutes (default 60)"},
			"participants": {Type: "array", Description: "Staff types needed (e.g. sales_rep, technical_specialist)"},
		},
	}
	return NewSimTool(def, errorRate, seed, func(args map[string]any) (any, error) {
		meetingType := argString(args, "meeting_type")
		if !meetingTypes[meetingType] {
			return nil, fmt.Errorf("unknown meeting type %q", meetingType)
		}

		date := argString(args, "date")
		if date == "" {
			date = time.Now().AddDate(0, 0, 1).Format("2006-01-02")
		} else if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
		}

		duration := argInt(args, "duration", 60)
		if duration <= 0 {
			duration = 60
		}

		slots := availableSlots(meetingType, date)
		return map[string]any{
			"meeting_type":    meetingType,
			"date":            date,
			"duration":        duration,
			"available_slots": slots,
			"booking_ref":     fmt.Sprintf("APPT-%s-%04d", date, slotHash(meetingType+date)%10000),
		}, nil
	})
}

func availableSlots(meetingType, date string) []string {
	h := slotHash(meetingType + date)
	starts := []string{"09:00", "10:30", "13:00", "14:30", "16:00"}
	out := make([]string, 0, 3)
	for i, s := range starts {
		if (h>>uint(i))&1 == 0 {
			out = append(out, fmt.Sprintf("%s %s", date, s))
		}
	}
	if len(out) == 0 {
		out = append(out, fmt.Sprintf("%s %s", date, starts[h%uint32(len(starts))]))
	}
	return out
}

func slotHash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
