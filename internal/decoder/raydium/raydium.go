// Package raydium decodes instructions issued by Raydium's legacy
// constant-product AMM program (referred to elsewhere as AMM-R).
package raydium

import (
	cerrors "github.com/lugondev/solana-decoder/internal/errors"
	"github.com/lugondev/solana-decoder/internal/decoder/core"
	"github.com/lugondev/solana-decoder/internal/decoder/spltoken"
	"github.com/lugondev/solana-decoder/internal/logging"
	"github.com/lugondev/solana-decoder/pkg/solanatx"
)

// ProgramID is Raydium's legacy AMM program id.
const ProgramID = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"

const (
	discCreatePool byte = 1
	discSwapBaseIn byte = 9
)

// Decoder implements core.ProgramDecoder for Raydium's legacy AMM.
type Decoder struct {
	logging.Mixin
}

// New creates a Raydium legacy AMM decoder.
func New() *Decoder { return &Decoder{Mixin: logging.NewMixin()} }

func (d *Decoder) ProgramID() string { return ProgramID }

func (d *Decoder) Decode(instructions []*core.Instruction, keys core.AccountKeys, tx *solanatx.RawTransaction) ([]core.DecodedEvent, error) {
	var events []core.DecodedEvent
	for _, ix := range instructions {
		event, err := d.decodeOne(ix, keys, tx)
		if err != nil {
			d.GetLogger().Debug("raydium: skipping instruction", "error", err)
			continue
		}
		if event == nil {
			continue
		}
		events = append(events, *event)
	}
	return events, nil
}

func (d *Decoder) decodeOne(ix *core.Instruction, keys core.AccountKeys, tx *solanatx.RawTransaction) (*core.DecodedEvent, error) {
	if len(ix.Data) < 1 {
		return nil, nil
	}
	switch ix.Data[0] {
	case discSwapBaseIn:
		return decodeSwapBaseIn(ix, keys, tx)
	case discCreatePool:
		return decodeCreatePool(ix, keys)
	default:
		return nil, nil
	}
}

// decodeSwapBaseIn decodes a SwapBaseIn instruction. Raydium itself issues
// the two SPL Token transfers that make up a swap as its first two inner
// instructions, in (in, out) order; the mint on each side comes from the
// matching account's pre- or post-token-balance snapshot, since the token
// program's own Transfer instruction never carries the mint (spec §4.5.3).
func decodeSwapBaseIn(ix *core.Instruction, keys core.AccountKeys, tx *solanatx.RawTransaction) (*core.DecodedEvent, error) {
	if len(ix.Children) < 2 {
		return nil, cerrors.ShortPayload("raydium.swap_base_in.inner_instructions", len(ix.Children), 2)
	}
	if len(ix.Accounts) < 2 {
		return nil, cerrors.ShortPayload("raydium.swap_base_in.accounts", len(ix.Accounts), 2)
	}

	inTransfer, err := spltoken.DecodeTransfer(ix.Children[0], keys)
	if err != nil {
		return nil, err
	}
	outTransfer, err := spltoken.DecodeTransfer(ix.Children[1], keys)
	if err != nil {
		return nil, err
	}

	inAccountIdx := uint32(ix.Children[0].Accounts[1])
	outAccountIdx := uint32(ix.Children[1].Accounts[0])

	inBalance, err := lookupBalance(tx, inAccountIdx)
	if err != nil {
		return nil, cerrors.MissingBalance("in", inAccountIdx)
	}
	outBalance, err := lookupBalance(tx, outAccountIdx)
	if err != nil {
		return nil, cerrors.MissingBalance("out", outAccountIdx)
	}

	pool := keys.At(uint32(ix.Accounts[1]))

	return &core.DecodedEvent{
		Platform: core.PlatformRaydium,
		Swap: &core.SwapEvent{
			Accounts: core.SwapAccounts{
				Pool:      pool,
				User:      inTransfer.Authority,
				BaseMint:  inBalance.Mint,
				QuoteMint: outBalance.Mint,
			},
			MintIn:         inBalance.Mint,
			MintOut:        outBalance.Mint,
			AmountIn:       inTransfer.Amount,
			AmountOut:      outTransfer.Amount,
			MintInReserve:  parseAmount(inBalance),
			MintOutReserve: parseAmount(outBalance),
			Type:           core.EventTypeSwap,
		},
	}, nil
}

// decodeCreatePool decodes a pool-creation instruction: the token program's
// own index among the resolved account keys identifies which two inner
// instructions are the base/quote seed transfers (spec §4.5.3).
func decodeCreatePool(ix *core.Instruction, keys core.AccountKeys) (*core.DecodedEvent, error) {
	if len(ix.Accounts) < 10 {
		return nil, cerrors.ShortPayload("raydium.create_pool.accounts", len(ix.Accounts), 10)
	}

	tokenProgramIdx, ok := keys.IndexOf(spltoken.ProgramID)
	if !ok {
		return nil, cerrors.Custom("raydium.create_pool: token program not found in account keys")
	}

	var tokenTransfers []*core.Instruction
	for _, child := range ix.Children {
		if int(child.ProgramIDIndex) == tokenProgramIdx {
			tokenTransfers = append(tokenTransfers, child)
		}
	}
	if len(tokenTransfers) < 2 {
		return nil, cerrors.ShortPayload("raydium.create_pool.token_transfers", len(tokenTransfers), 2)
	}

	baseTransfer, err := spltoken.DecodeTransfer(tokenTransfers[0], keys)
	if err != nil {
		return nil, err
	}
	quoteTransfer, err := spltoken.DecodeTransfer(tokenTransfers[1], keys)
	if err != nil {
		return nil, err
	}

	return &core.DecodedEvent{
		Platform: core.PlatformRaydium,
		CreatePool: &core.CreatePoolEvent{
			Pool:                  keys.At(uint32(ix.Accounts[4])),
			Creator:               keys.At(uint32(ix.Accounts[0])),
			BaseMint:              keys.At(uint32(ix.Accounts[8])),
			QuoteMint:             keys.At(uint32(ix.Accounts[9])),
			PoolBaseTokenReserve:  baseTransfer.Amount,
			PoolQuoteTokenReserve: quoteTransfer.Amount,
		},
	}, nil
}

func lookupBalance(tx *solanatx.RawTransaction, accountIdx uint32) (*solanatx.TokenBalance, error) {
	if tx == nil || tx.Transaction == nil || tx.Transaction.Meta == nil {
		return nil, cerrors.ErrMissingMeta
	}
	meta := tx.Transaction.Meta

	for i := range meta.PostTokenBalances {
		if meta.PostTokenBalances[i].AccountIndex == accountIdx {
			return &meta.PostTokenBalances[i], nil
		}
	}
	for i := range meta.PreTokenBalances {
		if meta.PreTokenBalances[i].AccountIndex == accountIdx {
			return &meta.PreTokenBalances[i], nil
		}
	}
	return nil, cerrors.MissingBalance("unresolved", accountIdx)
}

func parseAmount(balance *solanatx.TokenBalance) uint64 {
	var amount uint64
	for _, c := range balance.UiTokenAmount.Amount {
		if c < '0' || c > '9' {
			return 0
		}
		amount = amount*10 + uint64(c-'0')
	}
	return amount
}
