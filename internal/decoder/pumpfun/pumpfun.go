// Package pumpfun decodes instructions issued by pump.fun's bonding-curve
// launchpad program (referred to elsewhere as Launchpad-L).
package pumpfun

import (
	cerrors "github.com/lugondev/solana-decoder/internal/errors"
	"github.com/lugondev/solana-decoder/internal/decoder/core"
	"github.com/lugondev/solana-decoder/internal/logging"
	"github.com/lugondev/solana-decoder/pkg/solanatx"
)

// ProgramID is pump.fun's bonding-curve program id.
const ProgramID = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

// WSOL is wrapped SOL's mint address, used as the implicit quote mint for
// every bonding-curve swap.
const WSOL = "So11111111111111111111111111111111111111112"

var (
	discBuy        = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	discSell       = []byte{51, 230, 133, 164, 1, 127, 131, 173}
	discCreatePool = []byte{24, 30, 200, 40, 5, 28, 7, 119}
)

// Decoder implements core.ProgramDecoder for pump.fun's bonding curve.
type Decoder struct {
	logging.Mixin
}

// New creates a pump.fun bonding-curve decoder.
func New() *Decoder { return &Decoder{Mixin: logging.NewMixin()} }

func (d *Decoder) ProgramID() string { return ProgramID }

func (d *Decoder) Decode(instructions []*core.Instruction, keys core.AccountKeys, _ *solanatx.RawTransaction) ([]core.DecodedEvent, error) {
	var events []core.DecodedEvent
	for _, ix := range instructions {
		event, err := d.decodeOne(ix, keys)
		if err != nil {
			d.GetLogger().Debug("pump_fun: skipping instruction", "error", err)
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
		return decodeBuy(ix)
	case core.DiscriminatorMatches(ix.Data, discSell):
		return decodeSell(ix)
	case core.DiscriminatorMatches(ix.Data, discCreatePool):
		return decodeCreatePool(ix, keys)
	default:
		return nil, nil
	}
}

type tradeLog struct {
	mint                 string
	solAmount            uint64
	tokenAmount          uint64
	user                 string
	virtualSolReserves   uint64
	virtualTokenReserves uint64
}

// decodeTradeLog decodes the bonding curve's self-logged trade event. Layout
// (spec §4.5.2): offset 16 holds the 32-byte mint, then sol_amount (u64),
// token_amount (u64), a 9-byte gap, the 32-byte user, a 40-byte gap, then
// virtual_sol_reserves (u64) and virtual_token_reserves (u64).
func decodeTradeLog(data []byte) (*tradeLog, error) {
	offset := 16
	mint, err := core.ReadPubkey(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 32
	solAmount, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 8
	tokenAmount, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 8 + 9
	user, err := core.ReadPubkey(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 32 + 40
	virtualSolReserves, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 8
	virtualTokenReserves, err := core.ReadU64LE(data, offset)
	if err != nil {
		return nil, err
	}

	return &tradeLog{
		mint:                 mint,
		solAmount:            solAmount,
		tokenAmount:          tokenAmount,
		user:                 user,
		virtualSolReserves:   virtualSolReserves,
		virtualTokenReserves: virtualTokenReserves,
	}, nil
}

// tradeLogInstruction picks the inner instruction that carries the trade
// log: normally the last CPI, but the program sometimes issues one more
// trailing instruction after the log whose payload is too short to be it
// (spec §4.5.2 edge case), in which case the log is the second-to-last.
func tradeLogInstruction(ix *core.Instruction) (*core.Instruction, error) {
	if len(ix.Children) == 0 {
		return nil, cerrors.Custom("pump_fun trade: missing self-logged inner instruction")
	}
	last := ix.Children[len(ix.Children)-1]
	if len(last.Data) >= 233 {
		return last, nil
	}
	if len(ix.Children) < 2 {
		return nil, cerrors.Custom("pump_fun trade: trailing instruction too short and no fallback log present")
	}
	return ix.Children[len(ix.Children)-2], nil
}

func decodeBuy(ix *core.Instruction) (*core.DecodedEvent, error) {
	logIx, err := tradeLogInstruction(ix)
	if err != nil {
		return nil, err
	}
	log, err := decodeTradeLog(logIx.Data)
	if err != nil {
		return nil, err
	}

	return &core.DecodedEvent{
		Platform: core.PlatformPumpFun,
		Swap: &core.SwapEvent{
			Accounts: core.SwapAccounts{
				Pool:      log.mint,
				User:      log.user,
				BaseMint:  log.mint,
				QuoteMint: WSOL,
			},
			MintIn:         WSOL,
			MintOut:        log.mint,
			AmountIn:       log.solAmount,
			AmountOut:      log.tokenAmount,
			MintInReserve:  log.virtualSolReserves,
			MintOutReserve: log.virtualTokenReserves,
			Type:           core.EventTypeBuy,
		},
	}, nil
}

func decodeSell(ix *core.Instruction) (*core.DecodedEvent, error) {
	logIx, err := tradeLogInstruction(ix)
	if err != nil {
		return nil, err
	}
	log, err := decodeTradeLog(logIx.Data)
	if err != nil {
		return nil, err
	}

	return &core.DecodedEvent{
		Platform: core.PlatformPumpFun,
		Swap: &core.SwapEvent{
			Accounts: core.SwapAccounts{
				Pool:      log.mint,
				User:      log.user,
				BaseMint:  log.mint,
				QuoteMint: WSOL,
			},
			MintIn:         log.mint,
			MintOut:        WSOL,
			AmountIn:       log.tokenAmount,
			AmountOut:      log.solAmount,
			MintInReserve:  log.virtualTokenReserves,
			MintOutReserve: log.virtualSolReserves,
			Type:           core.EventTypeSell,
		},
	}, nil
}

// decodeCreatePool decodes a bonding curve's pool-creation instruction: a
// length-prefixed name, symbol, and uri, followed by the 32-byte creator
// (spec §4.5.2). Accounts: [0]=mint, [2]=bonding_curve,
// [3]=associated_bonding_curve, [7]=user.
func decodeCreatePool(ix *core.Instruction, keys core.AccountKeys) (*core.DecodedEvent, error) {
	if len(ix.Accounts) < 8 {
		return nil, cerrors.ShortPayload("pump_fun.create_pool.accounts", len(ix.Accounts), 8)
	}

	offset := 8 // skip the 8-byte discriminator
	name, offset, err := core.ReadLengthPrefixedString(ix.Data, offset)
	if err != nil {
		return nil, err
	}
	symbol, offset, err := core.ReadLengthPrefixedString(ix.Data, offset)
	if err != nil {
		return nil, err
	}
	uri, offset, err := core.ReadLengthPrefixedString(ix.Data, offset)
	if err != nil {
		return nil, err
	}
	creator, err := core.ReadPubkey(ix.Data, offset)
	if err != nil {
		return nil, err
	}

	return &core.DecodedEvent{
		Platform: core.PlatformPumpFun,
		CreatePool: &core.CreatePoolEvent{
			Pool:                   keys.At(uint32(ix.Accounts[2])),
			Creator:                creator,
			BaseMint:               keys.At(uint32(ix.Accounts[0])),
			QuoteMint:              WSOL,
			Name:                   name,
			Symbol:                 symbol,
			URI:                    uri,
			BondingCurve:           keys.At(uint32(ix.Accounts[2])),
			AssociatedBondingCurve: keys.At(uint32(ix.Accounts[3])),
		},
	}, nil
}
