package sim

import (
	"fmt"
	"time"
)

// Reason codes stamped on inventory moves.
const (
	ReasonOpening  = "OPENING_BALANCE"
	ReasonReceipt  = "PO_RECEIPT"
	ReasonShipment = "ORDER_SHIPMENT"
)

// Ledger is the only path that changes an InventoryBalance. Every change that
// moves stock writes an InventoryMove, and every operation keeps
// on_hand >= reserved >= 0.
type Ledger struct {
	session *Session
}

// NewLedger creates a Ledger writing through s.
func NewLedger(s *Session) *Ledger {
	return &Ledger{session: s}
}

// EnsureBalance returns the balance for (location, product), creating an empty one if needed.
func (l *Ledger) EnsureBalance(locationID, productID ID, at time.Time) *InventoryBalance {
	if b := l.session.Balance(locationID, productID); b != nil {
		return b
	}
	b := &InventoryBalance{LocationID: locationID, ProductID: productID, UpdatedAt: at}
	l.session.Add(b)
	return b
}

// Receive adds qty to on-hand stock at a location.
func (l *Ledger) Receive(locationID, productID ID, qty float64, at time.Time, moveType MoveType, reason string, refID ID) (*InventoryBalance, error) {
	if qty <= 0 {
		return nil, NewInvariantError("ledger", "receive of non-positive qty %v for product %d", qty, productID)
	}
	b := l.EnsureBalance(locationID, productID, at)
	b.OnHand += qty
	b.UpdatedAt = at
	l.session.Update(b)
	l.session.Add(&InventoryMove{
		ProductID:    productID,
		ToLocationID: locationID,
		Type:         moveType,
		Qty:          qty,
		OccurredAt:   at,
		ReasonCode:   reason,
		RefID:        refID,
	})
	return b, nil
}

// Reserve earmarks up to qty of available stock and returns the amount reserved.
func (l *Ledger) Reserve(b *InventoryBalance, qty float64, at time.Time) float64 {
	if qty <= 0 {
		return 0
	}
	take := min(qty, b.Available())
	if take <= 0 {
		return 0
	}
	b.Reserved += take
	b.UpdatedAt = at
	l.session.Update(b)
	return take
}

// Release returns reserved stock to available without moving it.
func (l *Ledger) Release(b *InventoryBalance, qty float64, at time.Time) error {
	if qty < 0 || qty > b.Reserved {
		return NewInvariantError("ledger", "release of %v exceeds reserved %v at balance %d", qty, b.Reserved, b.ID)
	}
	if qty == 0 {
		return nil
	}
	b.Reserved -= qty
	b.UpdatedAt = at
	l.session.Update(b)
	return nil
}

// Issue removes reserved stock from a location.
func (l *Ledger) Issue(locationID, productID ID, qty float64, at time.Time, reason string, refID ID) error {
	b := l.session.Balance(locationID, productID)
	if b == nil {
		return fmt.Errorf("issue at location %d product %d: %w", locationID, productID, ErrMissingBalance)
	}
	if qty <= 0 || qty > b.Reserved || qty > b.OnHand {
		return NewInvariantError("ledger", "issue of %v with on_hand %v reserved %v at balance %d", qty, b.OnHand, b.Reserved, b.ID)
	}
	b.OnHand -= qty
	b.Reserved -= qty
	b.UpdatedAt = at
	l.session.Update(b)
	l.session.Add(&InventoryMove{
		ProductID:      productID,
		FromLocationID: locationID,
		Type:           MoveOutbound,
		Qty:            qty,
		OccurredAt:     at,
		ReasonCode:     reason,
		RefID:          refID,
	})
	return nil
}
