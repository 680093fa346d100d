// Package gemmy implements the single-symbol, in-memory central limit
// order book and price-time priority matching engine.
package gemmy

import (
	"fmt"

	"github.com/google/uuid"
)

// OrderID is a 128-bit opaque identifier, unique across the lifetime of a
// process. It is never interpreted by the core beyond equality.
type OrderID [16]byte

// NewOrderID mints a fresh id (v4, random). Callers that re-submit a
// modified order reuse the original id instead of calling this again.
func NewOrderID() OrderID {
	return OrderID(uuid.New())
}

// String renders the id in canonical UUID form for logging.
func (id OrderID) String() string {
	return uuid.UUID(id).String()
}

// Side is one of Bid (buy) or Ask (sell).
type Side uint8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// LimitOrder rests on its side at its price until filled, cancelled, or
// modified away.
type LimitOrder struct {
	ID       OrderID
	Price    uint64
	Quantity uint64
	Side     Side
}

// MarketOrder never rests; it is consumed synchronously within one
// Execute call, with any residual discarded.
type MarketOrder struct {
	ID       OrderID
	Quantity uint64
	Side     Side
}

// RejectReason enumerates the recoverable failure modes of Execute. All
// four are reported as Rejected and leave the book unchanged. The zero
// value is not a reason: BookSide.insert and BookSide.remove return it on
// success.
type RejectReason uint8

const (
	UnknownOrderId RejectReason = iota + 1
	DuplicateOrderId
	NoLiquidity
	InvalidOrder
)

func (r RejectReason) String() string {
	switch r {
	case UnknownOrderId:
		return "unknown order id"
	case DuplicateOrderId:
		return "duplicate order id"
	case NoLiquidity:
		return "no liquidity"
	case InvalidOrder:
		return "invalid order"
	default:
		return "unknown reject reason"
	}
}

// FillRecord describes one maker/taker match. Price is always the maker's
// resting price, never the taker's limit.
type FillRecord struct {
	TakerID  OrderID
	MakerID  OrderID
	Taker    Side
	Price    uint64
	Quantity uint64
}

// invariantViolation panics on a detected breach of a structural
// invariant (id-index/level divergence, quantity overflow). These are
// bugs, not user errors, and are never surfaced as a RejectReason.
func invariantViolation(format string, args ...interface{}) {
	panic(fmt.Sprintf("gemmy: invariant violation: "+format, args...))
}
