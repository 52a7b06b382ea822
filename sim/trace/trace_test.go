package trace

import (
	"testing"
	"time"
)

func TestSimulationTrace_RecordReplenishment_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a replenishment record is recorded
	st.RecordReplenishment(ReplenishmentRecord{
		Date:         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		WarehouseID:  1,
		ProductID:    7,
		OnHand:       12,
		OrderQty:     88,
		Mode:         "air",
		LeadTimeDays: 4,
	})

	// THEN the trace contains one replenishment record with correct data
	if len(st.Replenishments) != 1 {
		t.Fatalf("expected 1 replenishment, got %d", len(st.Replenishments))
	}
	if st.Replenishments[0].OrderQty != 88 {
		t.Errorf("expected order qty 88, got %v", st.Replenishments[0].OrderQty)
	}
	if st.Len() != 1 {
		t.Errorf("expected Len 1, got %d", st.Len())
	}
}

func TestNewSimulationTrace_NoneLevel_ReturnsNil(t *testing.T) {
	for _, level := range []TraceLevel{TraceLevelNone, ""} {
		if st := NewSimulationTrace(TraceConfig{Level: level}); st != nil {
			t.Errorf("level %q: expected nil trace", level)
		}
	}
}

func TestSimulationTrace_Nil_IsSafe(t *testing.T) {
	var st *SimulationTrace
	st.RecordReplenishment(ReplenishmentRecord{})
	st.RecordFulfillment(FulfillmentRecord{})
	st.RecordReceipt(ReceiptRecord{})
	st.Truncate(st.Mark())
	if st.Len() != 0 {
		t.Errorf("nil trace Len = %d, want 0", st.Len())
	}
}

func TestSimulationTrace_Truncate_DropsRecordsAfterMark(t *testing.T) {
	// GIVEN a trace with one record of each kind
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordReplenishment(ReplenishmentRecord{ProductID: 1})
	st.RecordFulfillment(FulfillmentRecord{OrderID: 1})
	st.RecordReceipt(ReceiptRecord{ShipmentID: 1})
	mark := st.Mark()

	// WHEN more records are appended and the trace is truncated to the mark
	st.RecordReplenishment(ReplenishmentRecord{ProductID: 2})
	st.RecordFulfillment(FulfillmentRecord{OrderID: 2})
	st.RecordFulfillment(FulfillmentRecord{OrderID: 3})
	st.RecordReceipt(ReceiptRecord{ShipmentID: 2})
	st.Truncate(mark)

	// THEN only the records before the mark remain
	if st.Len() != 3 {
		t.Fatalf("expected 3 records after truncate, got %d", st.Len())
	}
	if st.Fulfillments[0].OrderID != 1 {
		t.Errorf("expected order 1 to survive, got %d", st.Fulfillments[0].OrderID)
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"none", true},
		{"decisions", true},
		{"", true},
		{"detailed", false},
		{"DECISIONS", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.want {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
