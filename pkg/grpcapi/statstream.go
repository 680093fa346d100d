package grpcapi

import (
	"context"
	"time"

	"github.com/pepemon42069/gemmy/internal/gemmy"
)

// StatStream is the server-streaming counterpart to OrderDispatcher: it
// repeatedly samples RFQ quotes or depth snapshots onto a channel rather
// than returning a single response. A real gRPC service would drain
// these channels into its stream.Send calls.
type StatStream interface {
	// Rfq streams up to maxQuotes RfqResponse samples, one per interval,
	// until maxQuotes is reached or ctx is cancelled.
	Rfq(ctx context.Context, req RfqRequest, maxQuotes int, interval time.Duration) <-chan RfqResponse
	// Orderbook streams a DepthResponse snapshot every interval until ctx
	// is cancelled.
	Orderbook(ctx context.Context, req DepthRequest, interval time.Duration) <-chan DepthResponse
}

// EngineStatStream implements StatStream directly over a
// *gemmy.MatchingEngine, sharing the engine instance an EngineDispatcher
// also wraps.
type EngineStatStream struct {
	Engine *gemmy.MatchingEngine
}

// NewEngineStatStream returns a StatStream bound to engine.
func NewEngineStatStream(engine *gemmy.MatchingEngine) *EngineStatStream {
	return &EngineStatStream{Engine: engine}
}

func (s *EngineStatStream) Rfq(ctx context.Context, req RfqRequest, maxQuotes int, interval time.Duration) <-chan RfqResponse {
	out := make(chan RfqResponse)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for count := 0; maxQuotes <= 0 || count < maxQuotes; count++ {
			result := s.Engine.Rfq(req.Quantity, req.Side)
			resp := rfqResultToResponse(result)
			select {
			case <-ctx.Done():
				return
			case out <- resp:
			}
			if count+1 == maxQuotes {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}

func (s *EngineStatStream) Orderbook(ctx context.Context, req DepthRequest, interval time.Duration) <-chan DepthResponse {
	out := make(chan DepthResponse)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			data := s.Engine.Depth(req.Granularity, int(req.MaxLevels))
			resp := DepthResponse{
				MaxBid:            data.MaxBid,
				HasMaxBid:         data.HasMaxBid,
				MinAsk:            data.MinAsk,
				HasMinAsk:         data.HasMinAsk,
				LastTradePrice:    data.LastTradePrice,
				HasLastTradePrice: data.HasLastTradePrice,
				Bids:              data.Bids,
				Asks:              data.Asks,
			}
			select {
			case <-ctx.Done():
				return
			case out <- resp:
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}

func rfqResultToResponse(result gemmy.RfqResult) RfqResponse {
	var status RfqStatus
	switch result.Kind {
	case gemmy.RfqCompleteFill:
		status = RfqStatusCompleteFill
	case gemmy.RfqPartialFill:
		status = RfqStatusPartialFill
	case gemmy.RfqConvertLimit:
		status = RfqStatusConvertToLimit
	case gemmy.RfqNotPossible:
		status = RfqStatusNotPossible
	}
	return RfqResponse{Status: status, Price: result.Price, Quantity: result.Quantity}
}
