// Package rpc polls a Solana RPC endpoint for confirmed transactions
// touching a fixed set of program ids and converts each into the decoder's
// wire shape for handoff to core.DecodeTransaction.
package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/lugondev/solana-decoder/pkg/solanatx"
)

// DefaultPollInterval is the default interval between signature polls.
const DefaultPollInterval = 2 * time.Second

// DefaultMaxRetries is the default number of attempts made for each RPC call.
const DefaultMaxRetries = 3

// DefaultRetryDelay is the default delay between retries.
const DefaultRetryDelay = 500 * time.Millisecond

// Config holds the configuration for the RPC datasource.
type Config struct {
	// RPCURL is the URL of the Solana RPC endpoint.
	RPCURL string

	// PollInterval is the interval between signature polls.
	PollInterval time.Duration

	// MaxRetries is the total number of attempts made for each RPC call,
	// including the first one.
	MaxRetries int

	// RetryDelay is the delay between retries.
	RetryDelay time.Duration

	// CommitmentLevel is the commitment level for RPC calls.
	CommitmentLevel rpc.CommitmentType

	// SignatureLimit bounds how many signatures are fetched per account on
	// the first poll, before a cursor exists.
	SignatureLimit int
}

// DefaultConfig returns a default configuration.
func DefaultConfig(rpcURL string) *Config {
	return &Config{
		RPCURL:          rpcURL,
		PollInterval:    DefaultPollInterval,
		MaxRetries:      DefaultMaxRetries,
		RetryDelay:      DefaultRetryDelay,
		CommitmentLevel: rpc.CommitmentConfirmed,
		SignatureLimit:  20,
	}
}

// TransactionDatasource polls for transactions touching a fixed set of
// accounts (in practice, the tracked program ids), tracking a per-account
// signature cursor so a signature already listed for an account is not
// fetched again for that account. A transaction touching several watched
// accounts is sent once per account, and one whose fetch or conversion fails
// is skipped and not retried on a later poll.
type TransactionDatasource struct {
	config   *Config
	client   *rpc.Client
	accounts []solana.PublicKey
	logger   *slog.Logger

	cursor map[string]solana.Signature
}

// NewTransactionDatasource creates a TransactionDatasource polling
// config.RPCURL for transactions touching accounts.
func NewTransactionDatasource(config *Config, accounts []solana.PublicKey) *TransactionDatasource {
	return &TransactionDatasource{
		config:   config,
		client:   rpc.New(config.RPCURL),
		accounts: accounts,
		logger:   slog.Default(),
		cursor:   make(map[string]solana.Signature),
	}
}

// WithLogger replaces the default logger.
func (d *TransactionDatasource) WithLogger(logger *slog.Logger) *TransactionDatasource {
	d.logger = logger
	return d
}

// Run polls until ctx is cancelled, sending each newly observed transaction
// on out. Accounts are polled one after another, and each account's new
// transactions are sent oldest-first.
func (d *TransactionDatasource) Run(ctx context.Context, out chan<- *solanatx.RawTransaction) error {
	d.logger.Info("starting rpc transaction datasource",
		"num_accounts", len(d.accounts),
		"poll_interval", d.config.PollInterval,
	)

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	if err := d.poll(ctx, out); err != nil {
		d.logger.Error("initial poll failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("rpc transaction datasource shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := d.poll(ctx, out); err != nil {
				d.logger.Error("poll failed", "error", err)
			}
		}
	}
}

func (d *TransactionDatasource) poll(ctx context.Context, out chan<- *solanatx.RawTransaction) error {
	for _, account := range d.accounts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		opts := &rpc.GetSignaturesForAddressOpts{Commitment: d.config.CommitmentLevel}
		if until, ok := d.cursor[account.String()]; ok {
			opts.Until = until
		} else {
			limit := d.config.SignatureLimit
			opts.Limit = &limit
		}

		sigs, err := d.getSignaturesWithRetry(ctx, account, opts)
		if err != nil {
			d.logger.Warn("failed to list signatures", "account", account.String(), "error", err)
			continue
		}
		if len(sigs) == 0 {
			continue
		}

		// RPC returns newest-first; replay oldest-first so a consumer sees
		// transactions in chain order.
		for i := len(sigs) - 1; i >= 0; i-- {
			entry := sigs[i]
			if entry.Err != nil {
				continue
			}

			result, err := d.getTransactionWithRetry(ctx, entry.Signature)
			if err != nil {
				d.logger.Warn("failed to fetch transaction", "signature", entry.Signature.String(), "error", err)
				continue
			}

			raw, err := convertTransaction(result, entry.Signature)
			if err != nil {
				d.logger.Warn("failed to convert transaction", "signature", entry.Signature.String(), "error", err)
				continue
			}

			select {
			case out <- raw:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		d.cursor[account.String()] = sigs[0].Signature
	}

	return nil
}

func (d *TransactionDatasource) getSignaturesWithRetry(
	ctx context.Context,
	account solana.PublicKey,
	opts *rpc.GetSignaturesForAddressOpts,
) ([]*rpc.TransactionSignature, error) {
	var lastErr error
	for i := 0; i < d.config.MaxRetries; i++ {
		sigs, err := d.client.GetSignaturesForAddressWithOpts(ctx, account, opts)
		if err == nil {
			return sigs, nil
		}
		lastErr = err
		d.logger.Debug("rpc call failed, retrying", "attempt", i+1, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.config.RetryDelay):
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", d.config.MaxRetries, lastErr)
}

func (d *TransactionDatasource) getTransactionWithRetry(
	ctx context.Context,
	sig solana.Signature,
) (*rpc.GetTransactionResult, error) {
	var lastErr error
	maxVersion := uint64(0)
	for i := 0; i < d.config.MaxRetries; i++ {
		result, err := d.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Commitment:                     d.config.CommitmentLevel,
			MaxSupportedTransactionVersion: &maxVersion,
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		d.logger.Debug("rpc call failed, retrying", "attempt", i+1, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.config.RetryDelay):
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", d.config.MaxRetries, lastErr)
}

// convertTransaction converts an RPC transaction result into the decoder's
// own wire shape, flattening the parsed message and meta into
// solanatx.RawTransaction.
func convertTransaction(result *rpc.GetTransactionResult, sig solana.Signature) (*solanatx.RawTransaction, error) {
	if result == nil || result.Transaction == nil {
		return nil, fmt.Errorf("transaction is nil")
	}

	parsed, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction envelope: %w", err)
	}
	if parsed == nil || parsed.Message.AccountKeys == nil {
		return nil, fmt.Errorf("transaction message is empty")
	}

	accountKeys := make([][]byte, len(parsed.Message.AccountKeys))
	for i, key := range parsed.Message.AccountKeys {
		accountKeys[i] = key.Bytes()
	}

	instructions := make([]solanatx.CompiledInstruction, len(parsed.Message.Instructions))
	for i, ix := range parsed.Message.Instructions {
		instructions[i] = solanatx.CompiledInstruction{
			Accounts:       accountsAsUint8(ix.Accounts),
			Data:           []byte(ix.Data),
			ProgramIDIndex: uint32(ix.ProgramIDIndex),
		}
	}

	return &solanatx.RawTransaction{
		Slot:      result.Slot,
		Signature: sig.String(),
		Transaction: &solanatx.TransactionEnvelope{
			Transaction: &solanatx.Transaction{
				Message: &solanatx.Message{
					AccountKeys:  accountKeys,
					Instructions: instructions,
				},
			},
			Meta: convertMeta(result.Meta),
		},
	}, nil
}

func convertMeta(meta *rpc.TransactionMeta) *solanatx.TransactionMeta {
	if meta == nil {
		return &solanatx.TransactionMeta{}
	}

	result := &solanatx.TransactionMeta{
		PreBalances:  meta.PreBalances,
		PostBalances: meta.PostBalances,
	}

	for _, key := range meta.LoadedAddresses.Writable {
		result.LoadedWritableAddresses = append(result.LoadedWritableAddresses, key.Bytes())
	}
	for _, key := range meta.LoadedAddresses.ReadOnly {
		result.LoadedReadonlyAddresses = append(result.LoadedReadonlyAddresses, key.Bytes())
	}

	for _, inner := range meta.InnerInstructions {
		group := solanatx.InnerInstructionGroup{
			Index:        uint32(inner.Index),
			Instructions: make([]solanatx.InnerInstructionEntry, 0, len(inner.Instructions)),
		}
		for _, ix := range inner.Instructions {
			var stackHeight *uint32
			if ix.StackHeight != 0 {
				sh := uint32(ix.StackHeight)
				stackHeight = &sh
			}
			group.Instructions = append(group.Instructions, solanatx.InnerInstructionEntry{
				Accounts:       accountsAsUint8(ix.Accounts),
				Data:           []byte(ix.Data),
				ProgramIDIndex: uint32(ix.ProgramIDIndex),
				StackHeight:    stackHeight,
			})
		}
		result.InnerInstructions = append(result.InnerInstructions, group)
	}

	for _, tb := range meta.PreTokenBalances {
		result.PreTokenBalances = append(result.PreTokenBalances, convertTokenBalance(tb))
	}
	for _, tb := range meta.PostTokenBalances {
		result.PostTokenBalances = append(result.PostTokenBalances, convertTokenBalance(tb))
	}

	return result
}

func convertTokenBalance(tb rpc.TokenBalance) solanatx.TokenBalance {
	result := solanatx.TokenBalance{
		Mint:         tb.Mint.String(),
		AccountIndex: uint32(tb.AccountIndex),
	}
	if tb.Owner != nil {
		result.Owner = tb.Owner.String()
	}
	if tb.ProgramId != nil {
		result.ProgramID = tb.ProgramId.String()
	}
	if tb.UiTokenAmount != nil {
		result.UiTokenAmount = solanatx.UiTokenAmount{
			UiAmount:       tb.UiTokenAmount.UiAmount,
			Decimals:       uint32(tb.UiTokenAmount.Decimals),
			Amount:         tb.UiTokenAmount.Amount,
			UiAmountString: tb.UiTokenAmount.UiAmountString,
		}
	}
	return result
}

func accountsAsUint8(accounts []uint16) []uint8 {
	out := make([]uint8, len(accounts))
	for i, a := range accounts {
		out[i] = uint8(a)
	}
	return out
}
