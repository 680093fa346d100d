package gemmy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteLimitRestsWhenNoCross(t *testing.T) {
	e := NewMatchingEngine()
	id := NewOrderID()

	res := e.Execute(LimitOperation(LimitOrder{ID: id, Price: 100, Quantity: 10, Side: Bid}))

	executed, ok := res.(Executed)
	require.True(t, ok)
	created, ok := executed.Result.(Created)
	require.True(t, ok)
	assert.Equal(t, id, created.Order.ID)

	bid, ok := e.BestBid()
	require.True(t, ok)
	assert.Equal(t, uint64(100), bid)
}

func TestExecuteLimitRejectsDuplicateID(t *testing.T) {
	e := NewMatchingEngine()
	id := NewOrderID()
	e.Execute(LimitOperation(LimitOrder{ID: id, Price: 100, Quantity: 10, Side: Bid}))

	res := e.Execute(LimitOperation(LimitOrder{ID: id, Price: 101, Quantity: 5, Side: Bid}))

	rejected, ok := res.(Rejected)
	require.True(t, ok)
	assert.Equal(t, DuplicateOrderId, rejected.Reason)
}

func TestExecuteLimitRejectsZeroPriceOrQuantity(t *testing.T) {
	e := NewMatchingEngine()

	res1 := e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 0, Quantity: 10, Side: Bid}))
	rejected1, ok := res1.(Rejected)
	require.True(t, ok)
	assert.Equal(t, InvalidOrder, rejected1.Reason)

	res2 := e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 100, Quantity: 0, Side: Bid}))
	rejected2, ok := res2.(Rejected)
	require.True(t, ok)
	assert.Equal(t, InvalidOrder, rejected2.Reason)
}

func TestExecuteLimitFullyFillsAgainstResting(t *testing.T) {
	e := NewMatchingEngine()
	makerID := NewOrderID()
	e.Execute(LimitOperation(LimitOrder{ID: makerID, Price: 100, Quantity: 10, Side: Ask}))

	takerID := NewOrderID()
	res := e.Execute(LimitOperation(LimitOrder{ID: takerID, Price: 100, Quantity: 10, Side: Bid}))

	executed, ok := res.(Executed)
	require.True(t, ok)
	filled, ok := executed.Result.(Filled)
	require.True(t, ok)
	require.Len(t, filled.Fills, 1)
	assert.Equal(t, makerID, filled.Fills[0].MakerID)
	assert.Equal(t, takerID, filled.Fills[0].TakerID)
	assert.Equal(t, uint64(100), filled.Fills[0].Price)
	assert.Equal(t, uint64(10), filled.Fills[0].Quantity)

	_, askOK := e.BestAsk()
	assert.False(t, askOK)
	price, ok := e.LastTradePrice()
	require.True(t, ok)
	assert.Equal(t, uint64(100), price)
}

func TestExecuteLimitPartiallyFillsAndRestsResidual(t *testing.T) {
	e := NewMatchingEngine()
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 100, Quantity: 4, Side: Ask}))

	takerID := NewOrderID()
	res := e.Execute(LimitOperation(LimitOrder{ID: takerID, Price: 100, Quantity: 10, Side: Bid}))

	executed, ok := res.(Executed)
	require.True(t, ok)
	partial, ok := executed.Result.(PartiallyFilled)
	require.True(t, ok)
	require.Len(t, partial.Fills, 1)
	assert.True(t, partial.HasResidual)
	assert.Equal(t, uint64(6), partial.Residual.Quantity)
	assert.Equal(t, takerID, partial.Residual.ID)

	bid, ok := e.BestBid()
	require.True(t, ok)
	assert.Equal(t, uint64(100), bid)
}

func TestExecuteLimitPriceRespectsTakerLimit(t *testing.T) {
	e := NewMatchingEngine()
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 105, Quantity: 10, Side: Ask}))

	takerID := NewOrderID()
	res := e.Execute(LimitOperation(LimitOrder{ID: takerID, Price: 100, Quantity: 10, Side: Bid}))

	executed, ok := res.(Executed)
	require.True(t, ok)
	created, ok := executed.Result.(Created)
	require.True(t, ok)
	assert.Equal(t, uint64(10), created.Order.Quantity)
}

func TestExecuteMarketRejectsNoLiquidity(t *testing.T) {
	e := NewMatchingEngine()
	res := e.Execute(MarketOperation(MarketOrder{ID: NewOrderID(), Quantity: 5, Side: Bid}))

	rejected, ok := res.(Rejected)
	require.True(t, ok)
	assert.Equal(t, NoLiquidity, rejected.Reason)
}

func TestExecuteMarketPartialFillHasNoResidual(t *testing.T) {
	e := NewMatchingEngine()
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 100, Quantity: 4, Side: Ask}))

	res := e.Execute(MarketOperation(MarketOrder{ID: NewOrderID(), Quantity: 10, Side: Bid}))

	executed, ok := res.(Executed)
	require.True(t, ok)
	partial, ok := executed.Result.(PartiallyFilled)
	require.True(t, ok)
	assert.False(t, partial.HasResidual)
	assert.Equal(t, uint64(4), partial.Fills[0].Quantity)

	assert.True(t, e.asks.empty())
	assert.True(t, e.bids.empty(), "market order residual must not rest")
}

func TestExecuteMarketWalksMultipleLevelsIgnoringPrice(t *testing.T) {
	e := NewMatchingEngine()
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 100, Quantity: 5, Side: Ask}))
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 105, Quantity: 5, Side: Ask}))

	res := e.Execute(MarketOperation(MarketOrder{ID: NewOrderID(), Quantity: 10, Side: Bid}))

	executed, ok := res.(Executed)
	require.True(t, ok)
	filled, ok := executed.Result.(Filled)
	require.True(t, ok)
	require.Len(t, filled.Fills, 2)
	assert.Equal(t, uint64(100), filled.Fills[0].Price)
	assert.Equal(t, uint64(105), filled.Fills[1].Price)
}

func TestExecuteCancelRemovesRestingOrder(t *testing.T) {
	e := NewMatchingEngine()
	id := NewOrderID()
	e.Execute(LimitOperation(LimitOrder{ID: id, Price: 100, Quantity: 10, Side: Bid}))

	res := e.Execute(CancelOperation(CancelRequest{ID: id, Side: Bid}))

	executed, ok := res.(Executed)
	require.True(t, ok)
	cancelled, ok := executed.Result.(Cancelled)
	require.True(t, ok)
	assert.Equal(t, id, cancelled.ID)
	assert.True(t, e.bids.empty())
}

func TestExecuteCancelUnknownIDRejects(t *testing.T) {
	e := NewMatchingEngine()
	res := e.Execute(CancelOperation(CancelRequest{ID: NewOrderID(), Side: Bid}))
	rejected, ok := res.(Rejected)
	require.True(t, ok)
	assert.Equal(t, UnknownOrderId, rejected.Reason)
}

func TestExecuteCancelWrongSideRejectsInvalid(t *testing.T) {
	e := NewMatchingEngine()
	id := NewOrderID()
	e.Execute(LimitOperation(LimitOrder{ID: id, Price: 100, Quantity: 10, Side: Bid}))

	res := e.Execute(CancelOperation(CancelRequest{ID: id, Side: Ask}))
	rejected, ok := res.(Rejected)
	require.True(t, ok)
	assert.Equal(t, InvalidOrder, rejected.Reason)
}

func TestExecuteModifySameDecreasePreservesQueuePosition(t *testing.T) {
	e := NewMatchingEngine()
	id1 := NewOrderID()
	id2 := NewOrderID()
	e.Execute(LimitOperation(LimitOrder{ID: id1, Price: 100, Quantity: 10, Side: Bid}))
	e.Execute(LimitOperation(LimitOrder{ID: id2, Price: 100, Quantity: 10, Side: Bid}))

	res := e.Execute(ModifyOperation(ModifyRequest{ID: id1, NewPrice: 100, NewQuantity: 3, Side: Bid}))

	executed, ok := res.(Executed)
	require.True(t, ok)
	_, ok = executed.Result.(Modified)
	require.True(t, ok)

	lvl := e.bids.levels[100]
	assert.Equal(t, id1, lvl.peekHead().ID, "same-price decrease must not lose queue position")
	assert.Equal(t, uint64(3), lvl.peekHead().Quantity)
}

func TestExecuteModifyPriceChangeLosesPriorityAndReusesID(t *testing.T) {
	e := NewMatchingEngine()
	id1 := NewOrderID()
	e.Execute(LimitOperation(LimitOrder{ID: id1, Price: 100, Quantity: 10, Side: Bid}))

	res := e.Execute(ModifyOperation(ModifyRequest{ID: id1, NewPrice: 101, NewQuantity: 10, Side: Bid}))

	executed, ok := res.(Executed)
	require.True(t, ok)
	created, ok := executed.Result.(Created)
	require.True(t, ok)
	assert.Equal(t, id1, created.Order.ID, "modify must reuse the same order id on reprice")
	assert.Equal(t, uint64(101), created.Order.Price)
}

func TestExecuteModifyQuantityIncreaseLosesPriority(t *testing.T) {
	e := NewMatchingEngine()
	id1 := NewOrderID()
	id2 := NewOrderID()
	e.Execute(LimitOperation(LimitOrder{ID: id1, Price: 100, Quantity: 10, Side: Bid}))
	e.Execute(LimitOperation(LimitOrder{ID: id2, Price: 100, Quantity: 10, Side: Bid}))

	e.Execute(ModifyOperation(ModifyRequest{ID: id1, NewPrice: 100, NewQuantity: 15, Side: Bid}))

	lvl := e.bids.levels[100]
	assert.Equal(t, id2, lvl.peekHead().ID, "quantity increase must lose queue position to the other resting order")
}

func TestExecuteModifyUnknownIDRejects(t *testing.T) {
	e := NewMatchingEngine()
	res := e.Execute(ModifyOperation(ModifyRequest{ID: NewOrderID(), NewPrice: 100, NewQuantity: 5, Side: Bid}))
	rejected, ok := res.(Rejected)
	require.True(t, ok)
	assert.Equal(t, UnknownOrderId, rejected.Reason)
}

func TestExecuteModifyCanTriggerMatchOnReprice(t *testing.T) {
	e := NewMatchingEngine()
	bidID := NewOrderID()
	e.Execute(LimitOperation(LimitOrder{ID: bidID, Price: 95, Quantity: 10, Side: Bid}))
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 100, Quantity: 10, Side: Ask}))

	res := e.Execute(ModifyOperation(ModifyRequest{ID: bidID, NewPrice: 100, NewQuantity: 10, Side: Bid}))

	executed, ok := res.(Executed)
	require.True(t, ok)
	filled, ok := executed.Result.(Filled)
	require.True(t, ok)
	assert.Equal(t, bidID, filled.Fills[0].TakerID)
}
