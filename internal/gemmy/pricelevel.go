package gemmy

import "container/list"

// PriceLevel is the FIFO queue of resting limit orders at a single price.
// It owns its orders; callers outside BookSide only ever hold list.Element
// handles, never positions, so removal from the interior is O(1) and
// immune to shifting on neighboring removals.
type PriceLevel struct {
	Price    uint64
	orders   *list.List // of *LimitOrder, head = oldest (highest time priority)
	quantity uint64     // invariant: quantity == sum of member quantities
}

func newPriceLevel(price uint64) *PriceLevel {
	return &PriceLevel{Price: price, orders: list.New()}
}

// Quantity returns the aggregate resting quantity at this level.
func (pl *PriceLevel) Quantity() uint64 { return pl.quantity }

// Empty reports whether the level has no resting orders left.
func (pl *PriceLevel) Empty() bool { return pl.orders.Len() == 0 }

// insert appends order to the tail. Undefined if an order with the same
// id already rests at this level; callers must ensure uniqueness via the
// id-index before calling.
func (pl *PriceLevel) insert(order *LimitOrder) *list.Element {
	e := pl.orders.PushBack(order)
	pl.addQuantity(order.Quantity)
	return e
}

func (pl *PriceLevel) addQuantity(qty uint64) {
	next := pl.quantity + qty
	if next < pl.quantity {
		invariantViolation("aggregate quantity overflow at price %d", pl.Price)
	}
	pl.quantity = next
}

// peekHead returns the order with the earliest arrival at this level, or
// nil if the level is empty.
func (pl *PriceLevel) peekHead() *LimitOrder {
	if e := pl.orders.Front(); e != nil {
		return e.Value.(*LimitOrder)
	}
	return nil
}

// removeElement removes the order behind handle e. It panics if e does
// not belong to this level's list and the caller's bookkeeping has
// diverged from reality — that is an invariant violation, not a user
// error. Returns whether the level emptied as a result.
func (pl *PriceLevel) removeElement(e *list.Element, order *LimitOrder) (emptied bool) {
	if pl.quantity < order.Quantity {
		invariantViolation("removing order %s would underflow level quantity at price %d", order.ID, pl.Price)
	}
	before := pl.orders.Len()
	pl.orders.Remove(e)
	if pl.orders.Len() == before {
		invariantViolation("order %s is not queued at price %d", order.ID, pl.Price)
	}
	pl.quantity -= order.Quantity
	return pl.orders.Len() == 0
}

// fillHead consumes resting quantity from the head of the level until
// requested is satisfied or the level empties. Fully consumed head
// orders are removed and reported with quantity = their remaining size;
// a partially consumed head order is decremented in place (its queue
// position is preserved) and the walk stops there. The taker id and side
// are threaded through so callers get ready-to-use FillRecords.
//
// Returns the fill records generated, the quantity still unsatisfied
// (zero if requested was fully met), and the ids of the orders fully
// consumed and removed from the level, which the caller — BookSide —
// must purge from its own id-index.
func (pl *PriceLevel) fillHead(taker OrderID, takerSide Side, requested uint64) (fills []FillRecord, remaining uint64, consumedIDs []OrderID) {
	remaining = requested
	for remaining > 0 {
		e := pl.orders.Front()
		if e == nil {
			break
		}
		head := e.Value.(*LimitOrder)

		if head.Quantity <= remaining {
			fills = append(fills, FillRecord{
				TakerID:  taker,
				MakerID:  head.ID,
				Taker:    takerSide,
				Price:    pl.Price,
				Quantity: head.Quantity,
			})
			remaining -= head.Quantity
			pl.orders.Remove(e)
			pl.quantity -= head.Quantity
			consumedIDs = append(consumedIDs, head.ID)
		} else {
			fills = append(fills, FillRecord{
				TakerID:  taker,
				MakerID:  head.ID,
				Taker:    takerSide,
				Price:    pl.Price,
				Quantity: remaining,
			})
			head.Quantity -= remaining
			pl.quantity -= remaining
			remaining = 0
		}
	}
	return fills, remaining, consumedIDs
}
