package grpcapi

import (
	"context"

	"github.com/pepemon42069/gemmy/internal/gemmy"
)

// EngineDispatcher adapts a *gemmy.MatchingEngine to OrderDispatcher. It
// is the thin translation layer a real gRPC service handler would wrap
// directly around the engine.
type EngineDispatcher struct {
	Engine *gemmy.MatchingEngine
}

// NewEngineDispatcher returns a dispatcher bound to engine.
func NewEngineDispatcher(engine *gemmy.MatchingEngine) *EngineDispatcher {
	return &EngineDispatcher{Engine: engine}
}

func (d *EngineDispatcher) PlaceOrder(_ context.Context, req PlaceOrderRequest) (PlaceOrderResponse, error) {
	var op gemmy.Operation
	if req.Price == 0 {
		op = gemmy.MarketOperation(gemmy.MarketOrder{
			ID:       req.ClientOrderID,
			Quantity: req.Quantity,
			Side:     req.Side,
		})
	} else {
		op = gemmy.LimitOperation(gemmy.LimitOrder{
			ID:       req.ClientOrderID,
			Price:    req.Price,
			Quantity: req.Quantity,
			Side:     req.Side,
		})
	}

	result := d.Engine.Execute(op)
	resp, err := translateExecution(req.ClientOrderID, result)
	return resp, err
}

func (d *EngineDispatcher) ModifyOrder(_ context.Context, req ModifyOrderRequest) (OrderActionResponse, error) {
	result := d.Engine.Execute(gemmy.ModifyOperation(gemmy.ModifyRequest{
		ID:          req.OrderID,
		NewPrice:    req.NewPrice,
		NewQuantity: req.NewQuantity,
		Side:        req.Side,
	}))
	return translateAction(result)
}

func (d *EngineDispatcher) CancelOrder(_ context.Context, req CancelOrderRequest) (OrderActionResponse, error) {
	result := d.Engine.Execute(gemmy.CancelOperation(gemmy.CancelRequest{
		ID:   req.OrderID,
		Side: req.Side,
	}))
	return translateAction(result)
}

func (d *EngineDispatcher) Depth(_ context.Context, req DepthRequest) (DepthResponse, error) {
	data := d.Engine.Depth(req.Granularity, int(req.MaxLevels))
	return DepthResponse{
		MaxBid:            data.MaxBid,
		HasMaxBid:         data.HasMaxBid,
		MinAsk:            data.MinAsk,
		HasMinAsk:         data.HasMinAsk,
		LastTradePrice:    data.LastTradePrice,
		HasLastTradePrice: data.HasLastTradePrice,
		Bids:              data.Bids,
		Asks:              data.Asks,
	}, nil
}

func (d *EngineDispatcher) Rfq(_ context.Context, req RfqRequest) (RfqResponse, error) {
	result := d.Engine.Rfq(req.Quantity, req.Side)
	return rfqResultToResponse(result), nil
}

func translateExecution(orderID gemmy.OrderID, result gemmy.ExecutionResult) (PlaceOrderResponse, error) {
	switch r := result.(type) {
	case gemmy.Rejected:
		return PlaceOrderResponse{OrderID: orderID, Status: OrderStatusRejected}, RejectError{Reason: r.Reason}
	case gemmy.Executed:
		switch fr := r.Result.(type) {
		case gemmy.Created:
			return PlaceOrderResponse{OrderID: fr.Order.ID, Status: OrderStatusCreated}, nil
		case gemmy.Filled:
			return PlaceOrderResponse{OrderID: orderID, Status: OrderStatusFilled, Fills: fr.Fills}, nil
		case gemmy.PartiallyFilled:
			residual := uint64(0)
			if fr.HasResidual {
				residual = fr.Residual.Quantity
			}
			return PlaceOrderResponse{
				OrderID:  orderID,
				Status:   OrderStatusPartiallyFilled,
				Fills:    fr.Fills,
				Residual: residual,
			}, nil
		}
	}
	return PlaceOrderResponse{}, RejectError{Reason: gemmy.InvalidOrder}
}

func translateAction(result gemmy.ExecutionResult) (OrderActionResponse, error) {
	switch r := result.(type) {
	case gemmy.Rejected:
		return OrderActionResponse{Status: OrderStatusRejected}, RejectError{Reason: r.Reason}
	case gemmy.Executed:
		switch r.Result.(type) {
		case gemmy.Cancelled:
			return OrderActionResponse{Status: OrderStatusCancelled}, nil
		case gemmy.Modified:
			return OrderActionResponse{Status: OrderStatusModified}, nil
		case gemmy.Created:
			return OrderActionResponse{Status: OrderStatusCreated}, nil
		case gemmy.Filled:
			return OrderActionResponse{Status: OrderStatusFilled}, nil
		case gemmy.PartiallyFilled:
			return OrderActionResponse{Status: OrderStatusPartiallyFilled}, nil
		}
	}
	return OrderActionResponse{}, RejectError{Reason: gemmy.InvalidOrder}
}
