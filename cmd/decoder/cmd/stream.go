package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/lugondev/solana-decoder/internal/config"
	"github.com/lugondev/solana-decoder/internal/decoder/core"
	datasourcerpc "github.com/lugondev/solana-decoder/internal/datasource/rpc"
	"github.com/lugondev/solana-decoder/internal/decoder/pumpamm"
	"github.com/lugondev/solana-decoder/internal/decoder/pumpfun"
	"github.com/lugondev/solana-decoder/internal/decoder/raydium"
	"github.com/lugondev/solana-decoder/internal/metrics"
	"github.com/lugondev/solana-decoder/internal/sink/postgres"
	"github.com/lugondev/solana-decoder/pkg/solanatx"
)

// Metric names this command reports through metrics.Collection.
const (
	metricTransactionsSeen = "decoder_transactions_seen"
	metricDecodeErrors     = "decoder_decode_errors"
	metricEventsDecoded    = "decoder_events_decoded"
	metricEventsPersisted  = "decoder_events_persisted"
	metricPersistErrors    = "decoder_persist_errors"
	metricQueueDepth       = "decoder_queue_depth"
	metricDecodeLatencyMs  = "decoder_decode_latency_ms"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Stream and decode pump.fun and Raydium swap/pool events",
	Long: `stream polls the configured RPC endpoint for new confirmed transactions
touching pump.fun's AMM, pump.fun's bonding curve, and Raydium's legacy AMM,
decodes each into a buy/sell/swap/create_pool event, and prints it as JSON
(or, if postgres.enabled is set, persists it instead).`,
	RunE: runStream,
}

func init() {
	rootCmd.AddCommand(streamCmd)
}

func newRegistry(logger *slog.Logger) *core.Registry {
	pumpAmmDecoder := pumpamm.New()
	pumpAmmDecoder.SetLogger(logger)
	pumpFunDecoder := pumpfun.New()
	pumpFunDecoder.SetLogger(logger)
	raydiumDecoder := raydium.New()
	raydiumDecoder.SetLogger(logger)

	registry := core.NewRegistry()
	registry.Register(pumpAmmDecoder)
	registry.Register(pumpFunDecoder)
	registry.Register(raydiumDecoder)
	return registry
}

func runStream(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := newRegistry(logger)
	m := metrics.NewCollection(metrics.NewLogMetrics(logger))
	if err := m.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() { _ = m.Shutdown(context.Background()) }()

	var sink *postgres.Sink
	if cfg.Postgres.Enabled {
		sink, err = postgres.New(ctx, &cfg.Postgres)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer sink.Close()
		logger.Info("postgres sink enabled", "database", cfg.Postgres.Database)
	}

	accounts := []solana.PublicKey{
		solana.MustPublicKeyFromBase58(pumpamm.ProgramID),
		solana.MustPublicKeyFromBase58(pumpfun.ProgramID),
		solana.MustPublicKeyFromBase58(raydium.ProgramID),
	}

	dsConfig := datasourcerpc.DefaultConfig(cfg.Solana.RPCEndpoint())
	dsConfig.PollInterval = time.Duration(cfg.Solana.PollInterval) * time.Second
	dsConfig.MaxRetries = cfg.Solana.MaxRetries
	dsConfig.RetryDelay = time.Duration(cfg.Solana.RetryDelayMs) * time.Millisecond

	ds := datasourcerpc.NewTransactionDatasource(dsConfig, accounts).WithLogger(logger)

	txCh := make(chan *solanatx.RawTransaction, 64)
	errCh := make(chan error, 1)

	go func() {
		errCh <- ds.Run(ctx, txCh)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("datasource stopped: %w", err)
			}
			return nil
		case tx := <-txCh:
			_ = m.UpdateGauge(ctx, metricQueueDepth, float64(len(txCh)))
			handleTransaction(ctx, logger, registry, m, sink, tx)
		}
	}
}

func handleTransaction(ctx context.Context, logger *slog.Logger, registry *core.Registry, m *metrics.Collection, sink *postgres.Sink, tx *solanatx.RawTransaction) {
	_ = m.IncrementCounter(ctx, metricTransactionsSeen, 1)

	start := time.Now()
	events, err := core.DecodeTransaction(tx, registry)
	_ = m.RecordHistogram(ctx, metricDecodeLatencyMs, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		logger.Warn("failed to decode transaction", "slot", tx.Slot, "error", err)
		_ = m.IncrementCounter(ctx, metricDecodeErrors, 1)
		return
	}
	if len(events) == 0 {
		return
	}
	_ = m.IncrementCounter(ctx, metricEventsDecoded, uint64(len(events)))

	if sink != nil {
		records := make([]postgres.Record, len(events))
		for i, event := range events {
			records[i] = postgres.Record{
				Signature: tx.Signature,
				Platform:  event.Platform,
				EventType: eventType(event),
				Slot:      tx.Slot,
				Event:     event,
			}
		}
		if err := sink.Insert(ctx, records); err != nil {
			logger.Error("failed to persist events", "slot", tx.Slot, "error", err)
			_ = m.IncrementCounter(ctx, metricPersistErrors, 1)
			return
		}
		_ = m.IncrementCounter(ctx, metricEventsPersisted, uint64(len(events)))
		return
	}

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			logger.Error("failed to marshal event", "error", err)
			continue
		}
		fmt.Println(string(data))
	}
}

func eventType(event core.DecodedEvent) core.EventType {
	switch {
	case event.Swap != nil:
		return event.Swap.Type
	case event.CreatePool != nil:
		return core.EventTypeCreatePool
	default:
		return ""
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
