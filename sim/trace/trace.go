package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures replenishment, fulfilment and receipt decisions.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during a run.
// A nil *SimulationTrace is valid and records nothing.
type SimulationTrace struct {
	Config         TraceConfig
	Replenishments []ReplenishmentRecord
	Fulfillments   []FulfillmentRecord
	Receipts       []ReceiptRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
// Returns nil when the level disables tracing.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if config.Level == "" || config.Level == TraceLevelNone {
		return nil
	}
	return &SimulationTrace{
		Config:         config,
		Replenishments: make([]ReplenishmentRecord, 0),
		Fulfillments:   make([]FulfillmentRecord, 0),
		Receipts:       make([]ReceiptRecord, 0),
	}
}

// RecordReplenishment appends a purchase-order decision record.
func (st *SimulationTrace) RecordReplenishment(record ReplenishmentRecord) {
	if st == nil {
		return
	}
	st.Replenishments = append(st.Replenishments, record)
}

// RecordFulfillment appends an allocation record.
func (st *SimulationTrace) RecordFulfillment(record FulfillmentRecord) {
	if st == nil {
		return
	}
	st.Fulfillments = append(st.Fulfillments, record)
}

// RecordReceipt appends an inbound arrival record.
func (st *SimulationTrace) RecordReceipt(record ReceiptRecord) {
	if st == nil {
		return
	}
	st.Receipts = append(st.Receipts, record)
}

// Len returns the total number of records.
func (st *SimulationTrace) Len() int {
	if st == nil {
		return 0
	}
	return len(st.Replenishments) + len(st.Fulfillments) + len(st.Receipts)
}

// Mark is a position in a SimulationTrace.
type Mark struct {
	replenishments, fulfillments, receipts int
}

// Mark returns the current position. Records appended later can be dropped with Truncate.
func (st *SimulationTrace) Mark() Mark {
	if st == nil {
		return Mark{}
	}
	return Mark{len(st.Replenishments), len(st.Fulfillments), len(st.Receipts)}
}

// Truncate drops every record appended after m.
func (st *SimulationTrace) Truncate(m Mark) {
	if st == nil {
		return
	}
	st.Replenishments = st.Replenishments[:min(m.replenishments, len(st.Replenishments))]
	st.Fulfillments = st.Fulfillments[:min(m.fulfillments, len(st.Fulfillments))]
	st.Receipts = st.Receipts[:min(m.receipts, len(st.Receipts))]
}
