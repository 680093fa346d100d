package gemmy

// Granularity selects the bucket size a depth snapshot aggregates resting
// levels into. Ordinals are bit-exact with the wire protocol's
// Granularity enum (spec §6): P00=0, P0=1, P=2, P10=3, P100=4.
type Granularity uint8

const (
	P00 Granularity = iota
	P0
	P
	P10
	P100
)

// bucketSize returns the integer divisor a price is floored against.
// Prices in this engine are already the finest representable tick (a
// plain uint64, no implied decimal places), so the sub-unit granularities
// P00 (0.01) and P0 (0.1) have no bucketing effect of their own — they
// coincide with P (1), which is the correct behavior: a bucket finer
// than the book's own tick size degenerates to no bucketing at all.
func (g Granularity) bucketSize() uint64 {
	switch g {
	case P10:
		return 10
	case P100:
		return 100
	default:
		return 1
	}
}

// Level is one aggregated bucket in a depth snapshot.
type Level struct {
	Price    uint64
	Quantity uint64
}

// OrderbookData is a point-in-time depth snapshot: best prices, the last
// trade price, and bucketed levels on both sides, best-first.
type OrderbookData struct {
	MaxBid            uint64
	HasMaxBid         bool
	MinAsk            uint64
	HasMinAsk         bool
	LastTradePrice    uint64
	HasLastTradePrice bool
	Bids              []Level
	Asks              []Level
}

// Depth aggregates the current book into granularity-bucketed level
// snapshots, optionally capped to maxLevels per side (0 means
// unbounded). It takes a read lock for its full duration so it never
// observes a level mid-fillHead transition.
func (e *MatchingEngine) Depth(g Granularity, maxLevels int) OrderbookData {
	e.mu.RLock()
	defer e.mu.RUnlock()

	data := OrderbookData{}
	if p, ok := e.bids.bestPrice(); ok {
		data.MaxBid, data.HasMaxBid = p, true
	}
	if p, ok := e.asks.bestPrice(); ok {
		data.MinAsk, data.HasMinAsk = p, true
	}
	data.LastTradePrice, data.HasLastTradePrice = e.lastTradePrice, e.hasLastTradePrice

	bucket := g.bucketSize()
	data.Bids = bucketedLevels(e.bids, bucket, maxLevels)
	data.Asks = bucketedLevels(e.asks, bucket, maxLevels)
	return data
}

// bucketedLevels merges bs's resting levels into granularity buckets,
// best-first. Because bestFirstPrices is monotonic in price and bucket
// is a floor-division, the resulting bucket sequence is monotonic too —
// adjacent-merge is sufficient, no extra sort is needed.
func bucketedLevels(bs *BookSide, bucket uint64, maxLevels int) []Level {
	var out []Level
	for _, price := range bs.bestFirstPrices() {
		b := (price / bucket) * bucket
		qty := bs.levels[price].Quantity()
		if n := len(out); n > 0 && out[n-1].Price == b {
			out[n-1].Quantity += qty
		} else {
			out = append(out, Level{Price: b, Quantity: qty})
		}
	}
	if maxLevels > 0 && len(out) > maxLevels {
		out = out[:maxLevels]
	}
	return out
}
