package gemmy

import (
	"container/list"
	"sort"
)

// bookSideHandle is the non-owning lookup a BookSide's id-index stores
// for each resting order: which price level it lives at, and its
// list.Element inside that level's FIFO. Never a queue position — those
// shift on removal.
type bookSideHandle struct {
	price uint64
	elem  *list.Element
}

// BookSide is one side (bid or ask) of the book: an ordered map from
// price to PriceLevel plus an id-index for O(1) cancel/lookup. Prices are
// kept in a strictly ascending sorted slice; "best" is the last entry for
// Bid, the first for Ask. A sorted slice with binary search is the right
// container here — a single-symbol book typically has a handful to a few
// hundred distinct resting price levels, not enough to justify a
// self-balancing tree's bookkeeping overhead.
type BookSide struct {
	side   Side
	levels map[uint64]*PriceLevel
	prices []uint64 // ascending, kept in sync with levels
	index  map[OrderID]bookSideHandle
}

func newBookSide(side Side) *BookSide {
	return &BookSide{
		side:   side,
		levels: make(map[uint64]*PriceLevel),
		index:  make(map[OrderID]bookSideHandle),
	}
}

// bestPrice returns the best resting price and true, or (0, false) if the
// side is empty.
func (bs *BookSide) bestPrice() (uint64, bool) {
	if len(bs.prices) == 0 {
		return 0, false
	}
	if bs.side == Bid {
		return bs.prices[len(bs.prices)-1], true
	}
	return bs.prices[0], true
}

func (bs *BookSide) empty() bool { return len(bs.prices) == 0 }

// bestFirstPrices returns every resting price on this side ordered
// best-first: descending for Bid, ascending for Ask. Used by read-only
// walks (depth projection, RFQ) that must not mutate the side.
func (bs *BookSide) bestFirstPrices() []uint64 {
	out := make([]uint64, len(bs.prices))
	if bs.side == Ask {
		copy(out, bs.prices)
		return out
	}
	for i, p := range bs.prices {
		out[len(bs.prices)-1-i] = p
	}
	return out
}

// priceIndex returns the slot in bs.prices holding price, and whether it
// was found.
func (bs *BookSide) priceIndex(price uint64) (int, bool) {
	i := sort.Search(len(bs.prices), func(i int) bool { return bs.prices[i] >= price })
	if i < len(bs.prices) && bs.prices[i] == price {
		return i, true
	}
	return i, false
}

func (bs *BookSide) insertPrice(price uint64) {
	i, found := bs.priceIndex(price)
	if found {
		return
	}
	bs.prices = append(bs.prices, 0)
	copy(bs.prices[i+1:], bs.prices[i:])
	bs.prices[i] = price
}

func (bs *BookSide) removePrice(price uint64) {
	i, found := bs.priceIndex(price)
	if !found {
		invariantViolation("price %d missing from ordered index on side %s", price, bs.side)
	}
	bs.prices = append(bs.prices[:i], bs.prices[i+1:]...)
}

// getOrCreateLevel fetches the PriceLevel for price, creating it (and
// registering it in the ordered index) on demand.
func (bs *BookSide) getOrCreateLevel(price uint64) *PriceLevel {
	if lvl, ok := bs.levels[price]; ok {
		return lvl
	}
	lvl := newPriceLevel(price)
	bs.levels[price] = lvl
	bs.insertPrice(price)
	return lvl
}

// insert places order on this side. Fails with DuplicateOrderId if the
// id is already resting anywhere on this side.
func (bs *BookSide) insert(order LimitOrder) RejectReason {
	if _, exists := bs.index[order.ID]; exists {
		return DuplicateOrderId
	}
	lvl := bs.getOrCreateLevel(order.Price)
	stored := order // copy so the level owns its own mutable instance
	e := lvl.insert(&stored)
	bs.index[order.ID] = bookSideHandle{price: order.Price, elem: e}
	return 0
}

// has reports whether id currently rests on this side.
func (bs *BookSide) has(id OrderID) bool {
	_, ok := bs.index[id]
	return ok
}

// remove deletes the resting order with id from this side. Fails with
// UnknownOrderId if absent.
func (bs *BookSide) remove(id OrderID) RejectReason {
	h, ok := bs.index[id]
	if !ok {
		return UnknownOrderId
	}
	lvl, ok := bs.levels[h.price]
	if !ok {
		invariantViolation("id-index points at price %d with no level on side %s", h.price, bs.side)
	}
	order := h.elem.Value.(*LimitOrder)
	if order.ID != id {
		invariantViolation("id-index/level divergence for order %s on side %s", id, bs.side)
	}
	emptied := lvl.removeElement(h.elem, order)
	delete(bs.index, id)
	if emptied {
		delete(bs.levels, h.price)
		bs.removePrice(h.price)
	}
	return 0
}

// orderAt returns the resting order with id and true, or (nil, false) if
// the id is unknown. Used by Modify to compare against a requested
// decrease.
func (bs *BookSide) orderAt(id OrderID) (*LimitOrder, bool) {
	h, ok := bs.index[id]
	if !ok {
		return nil, false
	}
	return h.elem.Value.(*LimitOrder), true
}

// decrementInPlace shrinks the resting order's quantity without touching
// its queue position. Caller guarantees newQuantity <= current quantity.
func (bs *BookSide) decrementInPlace(id OrderID, newQuantity uint64) {
	h, ok := bs.index[id]
	if !ok {
		invariantViolation("decrementInPlace on missing order %s", id)
	}
	lvl, ok := bs.levels[h.price]
	if !ok {
		invariantViolation("decrementInPlace: no level at price %d", h.price)
	}
	order := h.elem.Value.(*LimitOrder)
	if newQuantity > order.Quantity {
		invariantViolation("decrementInPlace: %d is not a decrease from %d", newQuantity, order.Quantity)
	}
	delta := order.Quantity - newQuantity
	order.Quantity = newQuantity
	lvl.quantity -= delta
}

// marketable reports whether a level at price is crossable for a taker
// whose limit is limitPrice (ignored when unbounded, i.e. a market
// order) walking this side.
func (bs *BookSide) marketable(price, limitPrice uint64, unbounded bool) bool {
	if unbounded {
		return true
	}
	if bs.side == Ask {
		return price <= limitPrice
	}
	return price >= limitPrice
}

// fillAgainst walks this side best-first, consuming up to quantity
// against marketable levels, and returns the fills generated plus
// whether the taker was fully satisfied. Levels emptied in the walk are
// removed. This mutates the side; it is the only mutating read path into
// BookSide besides insert, remove and decrementInPlace.
func (bs *BookSide) fillAgainst(limitPrice uint64, unbounded bool, quantity uint64, takerID OrderID, takerSide Side) ([]FillRecord, bool) {
	var fills []FillRecord
	remaining := quantity

	for remaining > 0 {
		price, ok := bs.bestPrice()
		if !ok {
			break
		}
		if !bs.marketable(price, limitPrice, unbounded) {
			break
		}
		lvl := bs.levels[price]
		levelFills, leftover, consumedIDs := lvl.fillHead(takerID, takerSide, remaining)
		fills = append(fills, levelFills...)
		for _, id := range consumedIDs {
			delete(bs.index, id)
		}
		remaining = leftover
		if lvl.Empty() {
			delete(bs.levels, price)
			bs.removePrice(price)
		}
	}

	return fills, remaining == 0
}
