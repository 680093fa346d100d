package gemmy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookSideInsertRejectsDuplicateID(t *testing.T) {
	bs := newBookSide(Bid)
	o := LimitOrder{ID: NewOrderID(), Price: 100, Quantity: 5, Side: Bid}

	require.Equal(t, RejectReason(0), bs.insert(o))
	assert.Equal(t, DuplicateOrderId, bs.insert(o))
}

func TestBookSideRemoveUnknownID(t *testing.T) {
	bs := newBookSide(Bid)
	assert.Equal(t, UnknownOrderId, bs.remove(NewOrderID()))
}

func TestBookSideBestPriceBidIsHighest(t *testing.T) {
	bs := newBookSide(Bid)
	for _, p := range []uint64{100, 105, 95} {
		bs.insert(LimitOrder{ID: NewOrderID(), Price: p, Quantity: 1, Side: Bid})
	}
	p, ok := bs.bestPrice()
	require.True(t, ok)
	assert.Equal(t, uint64(105), p)
}

func TestBookSideBestPriceAskIsLowest(t *testing.T) {
	bs := newBookSide(Ask)
	for _, p := range []uint64{100, 105, 95} {
		bs.insert(LimitOrder{ID: NewOrderID(), Price: p, Quantity: 1, Side: Ask})
	}
	p, ok := bs.bestPrice()
	require.True(t, ok)
	assert.Equal(t, uint64(95), p)
}

func TestBookSideBestFirstPricesOrdering(t *testing.T) {
	bidSide := newBookSide(Bid)
	for _, p := range []uint64{100, 105, 95} {
		bidSide.insert(LimitOrder{ID: NewOrderID(), Price: p, Quantity: 1, Side: Bid})
	}
	assert.Equal(t, []uint64{105, 100, 95}, bidSide.bestFirstPrices())

	askSide := newBookSide(Ask)
	for _, p := range []uint64{100, 105, 95} {
		askSide.insert(LimitOrder{ID: NewOrderID(), Price: p, Quantity: 1, Side: Ask})
	}
	assert.Equal(t, []uint64{95, 100, 105}, askSide.bestFirstPrices())
}

func TestBookSideRemoveEmptiesLevelAndPriceIndex(t *testing.T) {
	bs := newBookSide(Bid)
	o := LimitOrder{ID: NewOrderID(), Price: 100, Quantity: 5, Side: Bid}
	bs.insert(o)

	require.Equal(t, RejectReason(0), bs.remove(o.ID))
	assert.True(t, bs.empty())
	_, ok := bs.levels[100]
	assert.False(t, ok)
}

func TestBookSideDecrementInPlacePreservesQueuePosition(t *testing.T) {
	bs := newBookSide(Bid)
	o1 := LimitOrder{ID: NewOrderID(), Price: 100, Quantity: 5, Side: Bid}
	o2 := LimitOrder{ID: NewOrderID(), Price: 100, Quantity: 5, Side: Bid}
	bs.insert(o1)
	bs.insert(o2)

	bs.decrementInPlace(o1.ID, 2)

	lvl := bs.levels[100]
	assert.Equal(t, o1.ID, lvl.peekHead().ID, "decrementing head order must not move it behind o2")
	assert.Equal(t, uint64(2), lvl.peekHead().Quantity)
	assert.Equal(t, uint64(7), lvl.Quantity())
}

func TestBookSideFillAgainstRespectsLimitPrice(t *testing.T) {
	asks := newBookSide(Ask)
	asks.insert(LimitOrder{ID: NewOrderID(), Price: 101, Quantity: 5, Side: Ask})
	asks.insert(LimitOrder{ID: NewOrderID(), Price: 103, Quantity: 5, Side: Ask})

	fills, fullyFilled := asks.fillAgainst(101, false, 10, NewOrderID(), Bid)

	require.Len(t, fills, 1)
	assert.Equal(t, uint64(101), fills[0].Price)
	assert.False(t, fullyFilled)
	assert.Equal(t, uint64(5), asks.levels[103].Quantity())
}

func TestBookSideFillAgainstUnboundedIgnoresLimitPrice(t *testing.T) {
	asks := newBookSide(Ask)
	asks.insert(LimitOrder{ID: NewOrderID(), Price: 101, Quantity: 5, Side: Ask})
	asks.insert(LimitOrder{ID: NewOrderID(), Price: 103, Quantity: 5, Side: Ask})

	fills, fullyFilled := asks.fillAgainst(0, true, 10, NewOrderID(), Bid)

	require.Len(t, fills, 2)
	assert.True(t, fullyFilled)
	assert.True(t, asks.empty())
}
