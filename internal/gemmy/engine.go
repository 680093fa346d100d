package gemmy

import "sync"

// MatchingEngine executes operations against a single instrument's book.
// It is single-writer: Execute takes an exclusive lock for its whole
// duration and never yields mid-operation. Depth and RFQ queries take a
// read lock so they never observe a level mid-fillHead transition.
type MatchingEngine struct {
	mu sync.RWMutex

	bids *BookSide
	asks *BookSide

	lastTradePrice    uint64
	hasLastTradePrice bool
}

// NewMatchingEngine returns an empty book for one instrument.
func NewMatchingEngine() *MatchingEngine {
	return &MatchingEngine{
		bids: newBookSide(Bid),
		asks: newBookSide(Ask),
	}
}

func (e *MatchingEngine) sideFor(s Side) *BookSide {
	if s == Bid {
		return e.bids
	}
	return e.asks
}

// Execute applies one operation to the book and returns its outcome.
// Rejected operations are guaranteed to be no-ops: the book mutates only
// on the Executed path.
func (e *MatchingEngine) Execute(op Operation) ExecutionResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch op.Kind {
	case OpLimit:
		return e.execLimit(op.Limit)
	case OpMarket:
		return e.execMarket(op.Market)
	case OpModify:
		return e.execModify(op.Modify)
	case OpCancel:
		return e.execCancel(op.Cancel)
	default:
		return Rejected{Reason: InvalidOrder}
	}
}

func validLimit(o LimitOrder) bool {
	return o.Price > 0 && o.Quantity > 0
}

// execLimit is the shared implementation behind a plain Limit operation
// and the re-match path a repricing Modify falls back to. Duplicate-id
// validation happens up front, before any mutation, so the only
// rejection path (DuplicateOrderId) never overlaps a partial walk —
// the walk itself only ever removes liquidity from the opposite side.
func (e *MatchingEngine) execLimit(o LimitOrder) ExecutionResult {
	if !validLimit(o) {
		return Rejected{Reason: InvalidOrder}
	}
	own := e.sideFor(o.Side)
	if own.has(o.ID) {
		return Rejected{Reason: DuplicateOrderId}
	}

	opposite := e.sideFor(o.Side.Opposite())
	fills, fullyFilled := opposite.fillAgainst(o.Price, false, o.Quantity, o.ID, o.Side)

	if len(fills) > 0 {
		e.recordLastTrade(fills)
	}

	if fullyFilled {
		return Executed{Result: Filled{Fills: fills}}
	}

	filled := sumFilled(fills)
	residual := o
	residual.Quantity = o.Quantity - filled

	if reason := own.insert(residual); reason != 0 {
		invariantViolation("duplicate-id check passed but insert rejected order %s: %s", o.ID, reason)
	}

	if len(fills) == 0 {
		return Executed{Result: Created{Order: residual}}
	}
	return Executed{Result: PartiallyFilled{Residual: residual, HasResidual: true, Fills: fills}}
}

func (e *MatchingEngine) execMarket(o MarketOrder) ExecutionResult {
	if o.Quantity == 0 {
		return Rejected{Reason: InvalidOrder}
	}
	opposite := e.sideFor(o.Side.Opposite())
	if opposite.empty() {
		return Rejected{Reason: NoLiquidity}
	}

	fills, fullyFilled := opposite.fillAgainst(0, true, o.Quantity, o.ID, o.Side)
	e.recordLastTrade(fills)

	if fullyFilled {
		return Executed{Result: Filled{Fills: fills}}
	}
	return Executed{Result: PartiallyFilled{HasResidual: false, Fills: fills}}
}

func (e *MatchingEngine) execModify(r ModifyRequest) ExecutionResult {
	side := e.sideFor(r.Side)
	order, ok := side.orderAt(r.ID)
	if !ok {
		if e.sideFor(r.Side.Opposite()).has(r.ID) {
			return Rejected{Reason: InvalidOrder}
		}
		return Rejected{Reason: UnknownOrderId}
	}
	if r.NewQuantity == 0 || r.NewPrice == 0 {
		return Rejected{Reason: InvalidOrder}
	}

	if r.NewPrice == order.Price && r.NewQuantity <= order.Quantity {
		side.decrementInPlace(r.ID, r.NewQuantity)
		return Executed{Result: Modified{ID: r.ID}}
	}

	// Price change, or quantity increase: loses time priority. Remove and
	// re-submit through the ordinary matching path under the same id.
	if reason := side.remove(r.ID); reason != 0 {
		invariantViolation("modify: order %s vanished between lookup and removal", r.ID)
	}
	return e.execLimit(LimitOrder{ID: r.ID, Price: r.NewPrice, Quantity: r.NewQuantity, Side: r.Side})
}

func (e *MatchingEngine) execCancel(r CancelRequest) ExecutionResult {
	side := e.sideFor(r.Side)
	if reason := side.remove(r.ID); reason != 0 {
		if e.sideFor(r.Side.Opposite()).has(r.ID) {
			return Rejected{Reason: InvalidOrder}
		}
		return Rejected{Reason: UnknownOrderId}
	}
	return Executed{Result: Cancelled{ID: r.ID}}
}

func sumFilled(fills []FillRecord) uint64 {
	var total uint64
	for _, f := range fills {
		total += f.Quantity
	}
	return total
}

func (e *MatchingEngine) recordLastTrade(fills []FillRecord) {
	if len(fills) == 0 {
		return
	}
	e.lastTradePrice = fills[len(fills)-1].Price
	e.hasLastTradePrice = true
}

// BestBid returns the highest resting bid price, or (0, false) if no bids rest.
func (e *MatchingEngine) BestBid() (uint64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bids.bestPrice()
}

// BestAsk returns the lowest resting ask price, or (0, false) if no asks rest.
func (e *MatchingEngine) BestAsk() (uint64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.asks.bestPrice()
}

// LastTradePrice returns the price of the most recently emitted
// FillRecord, or (0, false) if no trade has occurred yet.
func (e *MatchingEngine) LastTradePrice() (uint64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastTradePrice, e.hasLastTradePrice
}
