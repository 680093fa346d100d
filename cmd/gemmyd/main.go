// Command gemmyd hosts a single-symbol Gemmy matching engine: it wires
// together the engine core, metrics, the event bus publisher, an
// order-entry HTTP surface, and the WebSocket depth stream, then blocks
// until terminated. A bare gRPC listener is also started: the wire
// contract lives in pkg/grpcapi, but registering it against a concrete
// generated service is a transport-layer concern this binary leaves to
// whatever ships the .proto descriptors.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/pepemon42069/gemmy/internal/gemmy"
	"github.com/pepemon42069/gemmy/pkg/config"
	"github.com/pepemon42069/gemmy/pkg/eventbus"
	"github.com/pepemon42069/gemmy/pkg/grpcapi"
	"github.com/pepemon42069/gemmy/pkg/log"
	"github.com/pepemon42069/gemmy/pkg/metrics"
	"github.com/pepemon42069/gemmy/pkg/wsapi"
)

// server bundles the components an order-entry request touches: the
// dispatcher wrapping the engine, the metrics recorder, and the event
// publisher. It mirrors the teacher's one-struct-per-process shape.
type server struct {
	dispatcher *grpcapi.EngineDispatcher
	metrics    *metrics.Metrics
	publisher  *eventbus.Publisher
	logger     log.Logger
}

func (s *server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req grpcapi.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := s.dispatcher.PlaceOrder(r.Context(), req)
	s.recordAndPublish(resp.Status, err)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *server) handleDepth(w http.ResponseWriter, r *http.Request) {
	resp, _ := s.dispatcher.Depth(r.Context(), grpcapi.DepthRequest{Granularity: gemmy.P, MaxLevels: 0})
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *server) recordAndPublish(status grpcapi.OrderStatus, err error) {
	if err != nil {
		if rejectErr, ok := err.(grpcapi.RejectError); ok {
			s.metrics.RecordOrderRejected(rejectErr.Reason.String())
		}
		return
	}
	kind := "order"
	s.metrics.RecordOrderAccepted(kind)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishFillResult(statusToFillResultStub(status)); err != nil {
		s.metrics.RecordEventFailed()
		s.logger.Error("failed to publish order event", "error", err)
		return
	}
	s.metrics.RecordEventPublished()
}

// statusToFillResultStub lets the HTTP order-entry path publish a
// same-shaped event as the dispatcher's outcome without threading the
// full FillResult back out of EngineDispatcher, whose job is to
// translate to wire types, not to leak domain internals. A direct
// engine.Execute caller (e.g. the gRPC service this binary is ready to
// host) would publish the real FillResult instead.
func statusToFillResultStub(status grpcapi.OrderStatus) gemmy.FillResult {
	switch status {
	case grpcapi.OrderStatusCreated:
		return gemmy.Created{}
	case grpcapi.OrderStatusFilled:
		return gemmy.Filled{}
	case grpcapi.OrderStatusPartiallyFilled:
		return gemmy.PartiallyFilled{}
	case grpcapi.OrderStatusCancelled:
		return gemmy.Cancelled{}
	default:
		return gemmy.Modified{}
	}
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (defaults are used if omitted)")
	flag.Parse()

	logger := log.NewLogger("gemmyd")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal("failed to load config", "path", *configPath, "error", err)
		}
		cfg = loaded
	}
	logger = log.NewLogger(cfg.Log.Name)
	logger.Info("starting gemmy matching engine", "ticker", cfg.Server.Ticker)

	engine := gemmy.NewMatchingEngine()

	m, err := metrics.New(cfg.Server.Ticker)
	if err != nil {
		logger.Fatal("failed to initialize metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		m.StartServer(cfg.Server.MetricsAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.CollectRuntimeMetrics(ctx, 10*time.Second)

	publisher, err := eventbus.NewPublisher(cfg.EventBus.NatsURL, cfg.EventBus.SubjectPrefix, cfg.Server.Ticker)
	if err != nil {
		logger.Warn("event bus unavailable, continuing without publishing", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	srv := &server{
		dispatcher: grpcapi.NewEngineDispatcher(engine),
		metrics:    m,
		publisher:  publisher,
		logger:     logger,
	}

	grpcServer := grpc.NewServer()
	reflection.Register(grpcServer)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to bind gRPC listener", "addr", cfg.Server.GRPCAddr, "error", err)
	}
	go func() {
		logger.Info("gRPC listener started", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server stopped", "error", err)
		}
	}()

	hub := wsapi.NewDepthHub(engine, gemmy.P, cfg.Server.DepthLevels, time.Second)
	go hub.Run(ctx.Done())

	mux := http.NewServeMux()
	mux.Handle("/ws/depth", hub)
	mux.HandleFunc("/orders", srv.handlePlaceOrder)
	mux.HandleFunc("/depth", srv.handleDepth)
	httpServer := &http.Server{Addr: cfg.Server.WebsocketAddr, Handler: mux}
	go func() {
		logger.Info("http/websocket server started", "addr", cfg.Server.WebsocketAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", "error", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	cancel()
	grpcServer.GracefulStop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
}
