// Package pumpamm decodes instructions issued by pump.fun's constant-product
// AMM program (referred to elsewhere as AMM-A).
package pumpamm

import (
	cerrors "github.com/lugondev/solana-decoder/internal/errors"
	"github.com/lugondev/solana-decoder/internal/decoder/core"
	"github.com/lugondev/solana-decoder/internal/logging"
	"github.com/lugondev/solana-decoder/pkg/solanatx"
)

// ProgramID is pump.fun AMM's on-chain program id.
const ProgramID = "pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"

var (
	discBuy        = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	discSell       = []byte{51, 230, 133, 164, 1, 127, 131, 173}
	discCreatePool = []byte{233, 146, 209, 142, 207, 104, 64, 188}
	discDeposit    = []byte{242, 35, 198, 137, 82, 225, 242, 182}
	discWithdraw   = []byte{183, 18, 70, 156, 148, 109, 161, 34}
)

// Decoder implements core.ProgramDecoder for pump.fun's AMM.
type Decoder struct {
	logging.Mixin
}

// New creates a pump.fun AMM decoder.
func New() *Decoder { return &Decoder{Mixin: logging.NewMixin()} }

func (d *Decoder) ProgramID() string { return ProgramID }

// Decode decodes every recognized instruction in instructions. Deposit and
// Withdraw are recognized discriminators but aren't decoded (spec §4.5.1
// Open Question (a)): they never fall through to the "unknown, silently
// ignored" path, but they also never produce an event.
//
// A decode failure on one instruction is logged and skipped; it never aborts
// decoding of the instructions that follow it.
func (d *Decoder) Decode(instructions []*core.Instruction, keys core.AccountKeys, _ *solanatx.RawTransaction) ([]core.DecodedEvent, error) {
	var events []core.DecodedEvent
	for _, ix := range instructions {
		event, err := d.decodeOne(ix, keys)
		if err != nil {
			d.GetLogger().Debug("pump_amm: skipping instruction", "error", err)
			continue
		}
		if event == nil {
			continue
		}
		events = append(events, *event)
	}
	return events, nil
}

func (d *Decoder) decodeOne(ix *core.Instruction, keys core.AccountKeys) (*core.DecodedEvent, error) {
	switch {
	case core.DiscriminatorMatches(ix.Data, discBuy):
		return decodeBuy(ix, keys)
	case core.DiscriminatorMatches(ix.Data, discSell):
		return decodeSell(ix, keys)
	case core.DiscriminatorMatches(ix.Data, discCreatePool):
		return decodeCreatePool(ix, keys)
	case core.DiscriminatorMatches(ix.Data, discDeposit), core.DiscriminatorMatches(ix.Data, discWithdraw):
		return nil, nil
	default:
		return nil, nil
	}
}

// swapLog is the self-logged CPI payload the program emits as its final
// inner instruction on a Buy or Sell. Buy and Sell lay the same four
// quantities out at different offsets (spec §4.5.1), so each gets its own
// parse function rather than sharing one layout.
type swapLog struct {
	baseAmount        uint64
	quoteAmount       uint64
	poolBaseReserves  uint64
	poolQuoteReserves uint64
	coinCreator       string
}

func decodeBuyLog(data []byte) (*swapLog, error) {
	offset := 24
	baseAmountOut, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 8 + 32 // skip 32
	poolBaseReserves, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 8
	poolQuoteReserves, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 8
	quoteAmountIn, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 8 + 248 // skip 248
	coinCreator, err := core.ReadPubkey(data, offset)
	if err != nil {
		return nil, err
	}

	return &swapLog{
		baseAmount:        baseAmountOut,
		quoteAmount:       quoteAmountIn,
		poolBaseReserves:  poolBaseReserves,
		poolQuoteReserves: poolQuoteReserves,
		coinCreator:       coinCreator,
	}, nil
}

func decodeSellLog(data []byte) (*swapLog, error) {
	offset := 24
	baseAmountIn, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 8 + 32 // skip 32
	poolBaseReserves, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 8
	poolQuoteReserves, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 8 + 56 // skip 56
	quoteAmountOut, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 8 + 200 // skip 200
	coinCreator, err := core.ReadPubkey(data, offset)
	if err != nil {
		return nil, err
	}

	return &swapLog{
		baseAmount:        baseAmountIn,
		quoteAmount:       quoteAmountOut,
		poolBaseReserves:  poolBaseReserves,
		poolQuoteReserves: poolQuoteReserves,
		coinCreator:       coinCreator,
	}, nil
}

func swapAccounts(ix *core.Instruction, keys core.AccountKeys) (pool, user, baseMint, quoteMint string, err error) {
	if len(ix.Accounts) < 5 {
		return "", "", "", "", cerrors.ShortPayload("pump_amm.swap.accounts", len(ix.Accounts), 5)
	}
	pool = keys.At(uint32(ix.Accounts[0]))
	user = keys.At(uint32(ix.Accounts[1]))
	baseMint = keys.At(uint32(ix.Accounts[3]))
	quoteMint = keys.At(uint32(ix.Accounts[4]))
	return pool, user, baseMint, quoteMint, nil
}

func decodeBuy(ix *core.Instruction, keys core.AccountKeys) (*core.DecodedEvent, error) {
	if len(ix.Children) == 0 {
		return nil, cerrors.Custom("pump_amm buy: missing self-logged inner instruction")
	}
	log, err := decodeBuyLog(ix.Children[len(ix.Children)-1].Data)
	if err != nil {
		return nil, err
	}
	pool, user, baseMint, quoteMint, err := swapAccounts(ix, keys)
	if err != nil {
		return nil, err
	}

	return &core.DecodedEvent{
		Platform: core.PlatformPumpAmm,
		Swap: &core.SwapEvent{
			Accounts: core.SwapAccounts{
				Pool:      pool,
				User:      user,
				BaseMint:  baseMint,
				QuoteMint: quoteMint,
			},
			MintIn:         quoteMint,
			MintOut:        baseMint,
			AmountIn:       log.quoteAmount,
			AmountOut:      log.baseAmount,
			MintInReserve:  log.poolBaseReserves,
			MintOutReserve: log.poolQuoteReserves,
			CoinCreator:    log.coinCreator,
			Type:           core.EventTypeBuy,
		},
	}, nil
}

func decodeSell(ix *core.Instruction, keys core.AccountKeys) (*core.DecodedEvent, error) {
	if len(ix.Children) == 0 {
		return nil, cerrors.Custom("pump_amm sell: missing self-logged inner instruction")
	}
	log, err := decodeSellLog(ix.Children[len(ix.Children)-1].Data)
	if err != nil {
		return nil, err
	}
	pool, user, baseMint, quoteMint, err := swapAccounts(ix, keys)
	if err != nil {
		return nil, err
	}

	return &core.DecodedEvent{
		Platform: core.PlatformPumpAmm,
		Swap: &core.SwapEvent{
			Accounts: core.SwapAccounts{
				Pool:      pool,
				User:      user,
				BaseMint:  baseMint,
				QuoteMint: quoteMint,
			},
			MintIn:         baseMint,
			MintOut:        quoteMint,
			AmountIn:       log.baseAmount,
			AmountOut:      log.quoteAmount,
			MintInReserve:  log.poolBaseReserves,
			MintOutReserve: log.poolQuoteReserves,
			CoinCreator:    log.coinCreator,
			Type:           core.EventTypeSell,
		},
	}, nil
}

// decodeCreatePool decodes a pool-creation instruction. The pool and mints sit
// at fixed account indices (spec §4.5.1); the creator, initial reserves, and
// pool index all come from the payload rather than the account list.
func decodeCreatePool(ix *core.Instruction, keys core.AccountKeys) (*core.DecodedEvent, error) {
	if len(ix.Accounts) < 11 {
		return nil, cerrors.ShortPayload("pump_amm.create_pool.accounts", len(ix.Accounts), 11)
	}

	pool := keys.At(uint32(ix.Accounts[0]))
	baseMint := keys.At(uint32(ix.Accounts[3]))
	quoteMint := keys.At(uint32(ix.Accounts[4]))
	poolBaseAccount := keys.At(uint32(ix.Accounts[9]))
	poolQuoteAccount := keys.At(uint32(ix.Accounts[10]))

	index, err := core.ReadU16LE(ix.Data, 8)
	if err != nil {
		return nil, err
	}
	baseAmountIn, err := core.ReadU64LE(ix.Data, 10)
	if err != nil {
		return nil, err
	}
	quoteAmountIn, err := core.ReadU64LE(ix.Data, 18)
	if err != nil {
		return nil, err
	}
	creator, err := core.ReadPubkey(ix.Data, 26)
	if err != nil {
		return nil, err
	}

	return &core.DecodedEvent{
		Platform: core.PlatformPumpAmm,
		CreatePool: &core.CreatePoolEvent{
			Pool:                  pool,
			Creator:               creator,
			BaseMint:              baseMint,
			QuoteMint:             quoteMint,
			PoolBaseTokenAccount:  poolBaseAccount,
			PoolQuoteTokenAccount: poolQuoteAccount,
			PoolBaseTokenReserve:  baseAmountIn,
			PoolQuoteTokenReserve: quoteAmountIn,
			Index:                 index,
		},
	}, nil
}
