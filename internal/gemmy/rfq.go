package gemmy

// RfqKind discriminates the four outcomes a request-for-quote can reach.
type RfqKind uint8

const (
	RfqCompleteFill RfqKind = iota
	RfqPartialFill
	RfqConvertLimit
	RfqNotPossible
)

// RfqResult is the outcome of pricing a hypothetical market order against
// live depth without mutating the book.
//
//   - RfqCompleteFill: Price is the VWAP, Quantity echoes the request.
//   - RfqPartialFill: Price is the VWAP over what could be filled,
//     Quantity is how much of the request that covers.
//   - RfqConvertLimit: the opposite side is empty but the same side has
//     resting liquidity; Price is that side's best price, Quantity is 0.
//   - RfqNotPossible: both sides are empty, or the requested quantity
//     is 0.
type RfqResult struct {
	Kind     RfqKind
	Price    uint64
	Quantity uint64
}

// Rfq walks the side opposite taker best-first, without mutating it,
// accumulating a volume-weighted notional to price a hypothetical market
// order of the given quantity and side.
func (e *MatchingEngine) Rfq(quantity uint64, takerSide Side) RfqResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if quantity == 0 {
		return RfqResult{Kind: RfqNotPossible}
	}

	opposite := e.sideFor(takerSide.Opposite())
	if opposite.empty() {
		same := e.sideFor(takerSide)
		if p, ok := same.bestPrice(); ok {
			return RfqResult{Kind: RfqConvertLimit, Price: p}
		}
		return RfqResult{Kind: RfqNotPossible}
	}

	var notional, filled uint64
	remaining := quantity
	for _, price := range opposite.bestFirstPrices() {
		if remaining == 0 {
			break
		}
		avail := opposite.levels[price].Quantity()
		take := avail
		if take > remaining {
			take = remaining
		}
		notional += price * take
		filled += take
		remaining -= take
	}

	vwap := notional / filled // quantity > 0 and opposite is non-empty, so filled > 0
	if remaining == 0 {
		return RfqResult{Kind: RfqCompleteFill, Price: vwap, Quantity: quantity}
	}
	return RfqResult{Kind: RfqPartialFill, Price: vwap, Quantity: filled}
}
