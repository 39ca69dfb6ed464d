// Command lobcore is the demonstration program: it wires a BookRunner, an
// order/trade store, and optionally a Prometheus metrics endpoint
// around the matching core, replays a scripted sequence of orders from
// stdin or a file, and prints each resulting trade plus the top of book.
//
// The demonstration program is explicitly a non-goal of the core's
// correctness surface; it exists only as runnable scaffolding, in the same
// spirit as this codebase's own cmd/server and cmd/client once did for the
// network surface this rework replaces.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lobcore/internal/config"
	"lobcore/internal/domain"
	"lobcore/internal/engine"
	"lobcore/internal/metrics"
	"lobcore/internal/runner"
	"lobcore/internal/store"
)

// scriptOrder is the line-delimited-JSON wire shape the demo reads from its
// input script. It mirrors domain.Order's fields in lower-case JSON form.
type scriptOrder struct {
	ID        uint64 `json:"id"`
	ClientID  string `json:"client_id"`
	Side      string `json:"side"`
	Kind      string `json:"kind"`
	Price     int64  `json:"price"`
	StopPrice int64  `json:"stop_price"`
	Quantity  uint64 `json:"quantity"`
	UserID    uint64 `json:"user_id"`
	Cancel    bool   `json:"cancel"`
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("failed parsing configuration")
	}

	orderLog, err := store.NewOrderLog(cfg.OrderLogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed opening order log")
	}
	defer orderLog.Close()

	tradeLog, err := store.NewTradeLog(cfg.TradeLogPath, 1000)
	if err != nil {
		log.Fatal().Err(err).Msg("failed opening trade log")
	}
	defer tradeLog.Close()

	var metricsCollector engine.Metrics = engine.NoopMetrics{}
	if cfg.MetricsEnable {
		collector := metrics.New("lobcore")
		metricsCollector = collector
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server exited")
			}
		}()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("serving prometheus metrics")
	}

	newEngine := func(symbol string) *engine.Engine {
		return engine.New(symbol,
			engine.WithOrderStore(orderLog),
			engine.WithTradeStore(tradeLog),
			engine.WithMetrics(metricsCollector),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := runner.New(newEngine)
	r.Start(ctx)
	defer r.Stop()

	input := os.Stdin
	if cfg.ScriptPath != "" {
		f, err := os.Open(cfg.ScriptPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ScriptPath).Msg("failed opening script")
		}
		defer f.Close()
		input = f
	}

	runScript(ctx, r, cfg.Symbol, cfg.DepthToPrint, input)
}

func runScript(ctx context.Context, r *runner.BookRunner, symbol string, depth int, in *os.File) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var so scriptOrder
		if err := json.Unmarshal(line, &so); err != nil {
			log.Error().Err(err).Msg("skipping malformed script line")
			continue
		}

		if so.Cancel {
			ok, err := r.Cancel(ctx, symbol, so.ID)
			if err != nil {
				log.Error().Err(err).Msg("cancel failed")
				continue
			}
			fmt.Printf("cancel id=%d ok=%v\n", so.ID, ok)
			continue
		}

		order, err := toDomainOrder(symbol, so)
		if err != nil {
			log.Error().Err(err).Msg("skipping invalid script order")
			continue
		}

		trades, err := r.Submit(ctx, symbol, order)
		if err != nil {
			fmt.Printf("order id=%d rejected: %v\n", so.ID, err)
			continue
		}
		for _, t := range trades {
			fmt.Printf("trade id=%d price=%d qty=%d maker=%d taker=%d\n", t.ID, t.Price, t.Quantity, t.MakerOrderID, t.TakerOrderID)
		}
		fmt.Println(r.Engine(symbol).Book.PrintBook(depth))
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		log.Error().Err(err).Msg("error reading script")
	}
}

func toDomainOrder(symbol string, so scriptOrder) (*domain.Order, error) {
	side, err := parseSide(so.Side)
	if err != nil {
		return nil, err
	}
	kind, err := parseKind(so.Kind)
	if err != nil {
		return nil, err
	}
	clientID := so.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
	}
	return &domain.Order{
		ID:                so.ID,
		ClientID:          clientID,
		Symbol:            symbol,
		Side:              side,
		Kind:              kind,
		Price:             so.Price,
		StopPrice:         so.StopPrice,
		OriginalQuantity:  so.Quantity,
		RemainingQuantity: so.Quantity,
		UserID:            so.UserID,
		Status:            domain.New,
	}, nil
}

func parseSide(s string) (domain.Side, error) {
	switch s {
	case "buy", "BUY":
		return domain.Buy, nil
	case "sell", "SELL":
		return domain.Sell, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}

func parseKind(s string) (domain.Kind, error) {
	switch s {
	case "limit", "LIMIT", "":
		return domain.Limit, nil
	case "market", "MARKET":
		return domain.Market, nil
	case "stop", "STOP":
		return domain.Stop, nil
	case "ioc", "IOC":
		return domain.IOC, nil
	case "fok", "FOK":
		return domain.FOK, nil
	default:
		return 0, fmt.Errorf("unknown order kind %q", s)
	}
}
