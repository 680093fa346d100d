// Package grpcapi defines the wire-level contract a gRPC transport
// front-ending Gemmy would implement: the request/response shapes and
// the dispatcher interface the generated service handlers call into.
// No .proto-generated stubs are vendored here — wiring an actual gRPC
// service onto OrderDispatcher is a transport-layer concern external to
// the matching engine, so this package stops at interfaces, thin
// adapters of them over the engine, and the codes/status error mapping a
// handler would use.
package grpcapi

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pepemon42069/gemmy/internal/gemmy"
)

// OrderSide mirrors gemmy.Side on the wire. Values are bit-exact with
// gemmy.Bid/gemmy.Ask so a handler can cast directly.
type OrderSide = gemmy.Side

// OrderStatus enumerates the outcomes of an Execute call as seen by an
// RPC client: the five accepted FillResult kinds, then Rejected.
type OrderStatus int32

const (
	OrderStatusCreated OrderStatus = iota
	OrderStatusFilled
	OrderStatusPartiallyFilled
	OrderStatusModified
	OrderStatusCancelled
	OrderStatusRejected
)

// RfqStatus mirrors gemmy.RfqKind on the wire.
type RfqStatus int32

const (
	RfqStatusCompleteFill RfqStatus = iota
	RfqStatusPartialFill
	RfqStatusConvertToLimit
	RfqStatusNotPossible
)

// Granularity mirrors gemmy.Granularity on the wire; ordinals are
// bit-exact by construction (both are defined 0..4 in the same order).
type Granularity = gemmy.Granularity

// PlaceOrderRequest carries a new limit or market order.
type PlaceOrderRequest struct {
	ClientOrderID gemmy.OrderID `json:"client_order_id"`
	Side          OrderSide     `json:"side"`
	Price         uint64        `json:"price"` // 0 selects a market order
	Quantity      uint64        `json:"quantity"`
}

// PlaceOrderResponse reports the outcome of a PlaceOrderRequest.
type PlaceOrderResponse struct {
	OrderID  gemmy.OrderID       `json:"order_id"`
	Status   OrderStatus         `json:"status"`
	Fills    []gemmy.FillRecord  `json:"fills,omitempty"`
	Residual uint64              `json:"residual,omitempty"`
}

// ModifyOrderRequest asks to re-price or re-size a resting order.
type ModifyOrderRequest struct {
	OrderID     gemmy.OrderID
	Side        OrderSide
	NewPrice    uint64
	NewQuantity uint64
}

// CancelOrderRequest names a resting order to remove.
type CancelOrderRequest struct {
	OrderID gemmy.OrderID
	Side    OrderSide
}

// OrderActionResponse reports the outcome of a modify or cancel.
type OrderActionResponse struct {
	Status OrderStatus
}

// DepthRequest asks for a granularity-bucketed snapshot.
type DepthRequest struct {
	Granularity Granularity
	MaxLevels   int32
}

// DepthResponse is the wire form of gemmy.OrderbookData.
type DepthResponse struct {
	MaxBid            uint64
	HasMaxBid         bool
	MinAsk            uint64
	HasMinAsk         bool
	LastTradePrice    uint64
	HasLastTradePrice bool
	Bids              []gemmy.Level
	Asks              []gemmy.Level
}

// RfqRequest asks for a VWAP quote without resting an order.
type RfqRequest struct {
	Quantity uint64
	Side     OrderSide
}

// RfqResponse is the wire form of gemmy.RfqResult.
type RfqResponse struct {
	Status   RfqStatus
	Price    uint64
	Quantity uint64
}

// OrderDispatcher is the boundary a gRPC service implementation calls
// into; it is satisfied by a thin adapter over *gemmy.MatchingEngine.
// Handlers translate between wire and domain types and map the returned
// error, if any, through ToStatusError.
type OrderDispatcher interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResponse, error)
	ModifyOrder(ctx context.Context, req ModifyOrderRequest) (OrderActionResponse, error)
	CancelOrder(ctx context.Context, req CancelOrderRequest) (OrderActionResponse, error)
	Depth(ctx context.Context, req DepthRequest) (DepthResponse, error)
	Rfq(ctx context.Context, req RfqRequest) (RfqResponse, error)
}

// RejectError wraps a gemmy.RejectReason so it can be mapped to a gRPC
// status code without the dispatcher layer depending on gRPC directly.
type RejectError struct {
	Reason gemmy.RejectReason
}

func (e RejectError) Error() string { return "gemmy: " + e.Reason.String() }

// ToStatusError maps a dispatcher error to a gRPC status error. A nil
// err maps to a nil error, preserving the common early-return idiom in
// handlers.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	var rejectErr RejectError
	if asRejectError(err, &rejectErr) {
		switch rejectErr.Reason {
		case gemmy.UnknownOrderId:
			return status.Error(codes.NotFound, rejectErr.Error())
		case gemmy.DuplicateOrderId:
			return status.Error(codes.AlreadyExists, rejectErr.Error())
		case gemmy.NoLiquidity:
			return status.Error(codes.FailedPrecondition, rejectErr.Error())
		case gemmy.InvalidOrder:
			return status.Error(codes.InvalidArgument, rejectErr.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

func asRejectError(err error, target *RejectError) bool {
	if re, ok := err.(RejectError); ok {
		*target = re
		return true
	}
	return false
}
