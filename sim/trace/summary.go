package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions   int
	PurchaseOrders   int
	ModeDistribution map[string]int // transport mode → count of purchase orders
	MeanLeadTimeDays float64
	MaxLeadTimeDays  int
	UnitsRequested   float64
	UnitsAllocated   float64
	FillRate         float64 // allocated / requested over first-day allocations
	Backorders       int
	Delivered        int
	Exceptions       int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ModeDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = st.Len()
	summary.PurchaseOrders = len(st.Replenishments)
	if len(st.Replenishments) > 0 {
		total := 0
		for _, r := range st.Replenishments {
			summary.ModeDistribution[r.Mode]++
			total += r.LeadTimeDays
			if r.LeadTimeDays > summary.MaxLeadTimeDays {
				summary.MaxLeadTimeDays = r.LeadTimeDays
			}
		}
		summary.MeanLeadTimeDays = float64(total) / float64(len(st.Replenishments))
	}

	for _, f := range st.Fulfillments {
		if f.Backorder {
			summary.Backorders++
			continue
		}
		summary.UnitsRequested += f.Requested
		summary.UnitsAllocated += f.Allocated
	}
	if summary.UnitsRequested > 0 {
		summary.FillRate = summary.UnitsAllocated / summary.UnitsRequested
	}

	for _, r := range st.Receipts {
		if r.Delivered {
			summary.Delivered++
		} else {
			summary.Exceptions++
		}
	}
	return summary
}
