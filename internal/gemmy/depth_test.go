package gemmy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepthEmptyBookHasNoBestPricesOrLastTrade(t *testing.T) {
	e := NewMatchingEngine()

	d := e.Depth(P, 0)

	assert.False(t, d.HasMaxBid)
	assert.False(t, d.HasMinAsk)
	assert.False(t, d.HasLastTradePrice)
	assert.Empty(t, d.Bids)
	assert.Empty(t, d.Asks)
}

func TestDepthPGranularityIsUnbucketed(t *testing.T) {
	e := NewMatchingEngine()
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 101, Quantity: 5, Side: Ask}))
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 109, Quantity: 7, Side: Ask}))
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 110, Quantity: 3, Side: Ask}))

	d := e.Depth(P, 0)

	require.Len(t, d.Asks, 3)
	assert.Equal(t, Level{Price: 101, Quantity: 5}, d.Asks[0])
	assert.Equal(t, Level{Price: 109, Quantity: 7}, d.Asks[1])
	assert.Equal(t, Level{Price: 110, Quantity: 3}, d.Asks[2])
}

func TestDepthP10GranularityMergesBuckets(t *testing.T) {
	e := NewMatchingEngine()
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 101, Quantity: 5, Side: Ask}))
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 109, Quantity: 7, Side: Ask}))
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 110, Quantity: 3, Side: Ask}))

	d := e.Depth(P10, 0)

	require.Len(t, d.Asks, 2)
	assert.Equal(t, Level{Price: 100, Quantity: 12}, d.Asks[0])
	assert.Equal(t, Level{Price: 110, Quantity: 3}, d.Asks[1])
}

func TestDepthP100GranularityMergesWiderBuckets(t *testing.T) {
	e := NewMatchingEngine()
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 101, Quantity: 5, Side: Bid}))
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 150, Quantity: 3, Side: Bid}))
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 199, Quantity: 2, Side: Bid}))

	d := e.Depth(P100, 0)

	require.Len(t, d.Bids, 1)
	assert.Equal(t, Level{Price: 100, Quantity: 10}, d.Bids[0])
}

func TestDepthMaxLevelsTruncatesBestFirst(t *testing.T) {
	e := NewMatchingEngine()
	for _, p := range []uint64{100, 101, 102, 103} {
		e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: p, Quantity: 1, Side: Ask}))
	}

	d := e.Depth(P, 2)

	require.Len(t, d.Asks, 2)
	assert.Equal(t, uint64(100), d.Asks[0].Price)
	assert.Equal(t, uint64(101), d.Asks[1].Price)
}

func TestDepthReportsBestPricesAndLastTrade(t *testing.T) {
	e := NewMatchingEngine()
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 99, Quantity: 5, Side: Bid}))
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 101, Quantity: 5, Side: Ask}))
	e.Execute(LimitOperation(LimitOrder{ID: NewOrderID(), Price: 101, Quantity: 5, Side: Bid}))

	d := e.Depth(P, 0)

	require.True(t, d.HasMaxBid)
	assert.Equal(t, uint64(99), d.MaxBid)
	assert.False(t, d.HasMinAsk)
	require.True(t, d.HasLastTradePrice)
	assert.Equal(t, uint64(101), d.LastTradePrice)
}
