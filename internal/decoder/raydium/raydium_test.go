package raydium

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/solana-decoder/internal/decoder/core"
	"github.com/lugondev/solana-decoder/internal/decoder/spltoken"
	"github.com/lugondev/solana-decoder/pkg/solanatx"
)

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func wallet() string { return solana.NewWallet().PublicKey().String() }

func transferIx(accounts []uint8, amount uint64) *core.Instruction {
	return &core.Instruction{
		Data:           append([]byte{3}, u64le(amount)...),
		Accounts:       accounts,
		ProgramIDIndex: 99, // not read by decodeSwapBaseIn, which takes the first two children as-is
	}
}

func TestDecodeSwapBaseIn(t *testing.T) {
	authority, pool, inSrc, inDst, outSrc, outDst, wsol, otherMint :=
		wallet(), wallet(), wallet(), wallet(), wallet(), wallet(), "So11111111111111111111111111111111111111112", wallet()
	keys := core.AccountKeys{authority, pool, inSrc, inDst, outSrc, outDst}

	inChild := transferIx([]uint8{2, 3, 0}, 1_000_000)
	outChild := transferIx([]uint8{4, 5, 0}, 498_211)
	ix := &core.Instruction{
		Data:     []byte{9},
		Accounts: []uint8{0, 1},
		Children: []*core.Instruction{inChild, outChild},
	}

	tx := &solanatx.RawTransaction{
		Transaction: &solanatx.TransactionEnvelope{
			Meta: &solanatx.TransactionMeta{
				PostTokenBalances: []solanatx.TokenBalance{
					{AccountIndex: 3, Mint: wsol, UiTokenAmount: solanatx.UiTokenAmount{Amount: "1000000"}},
					{AccountIndex: 4, Mint: otherMint, UiTokenAmount: solanatx.UiTokenAmount{Amount: "498211"}},
				},
			},
		},
	}

	event, err := decodeSwapBaseIn(ix, keys, tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Swap.AmountIn != 1_000_000 || event.Swap.AmountOut != 498_211 {
		t.Errorf("unexpected amounts: %+v", event.Swap)
	}
	if event.Swap.Accounts.Pool != pool {
		t.Errorf("expected pool %s, got %s", pool, event.Swap.Accounts.Pool)
	}
	if event.Swap.Accounts.User != authority {
		t.Errorf("expected user %s, got %s", authority, event.Swap.Accounts.User)
	}
	if event.Swap.MintIn != wsol || event.Swap.MintOut != otherMint {
		t.Errorf("unexpected mints: %+v", event.Swap)
	}
}

func TestDecodeSwapBaseInFallsBackToPreBalance(t *testing.T) {
	authority, pool, wsol := wallet(), wallet(), "So11111111111111111111111111111111111111112"
	keys := core.AccountKeys{authority, pool, wallet(), wallet(), wallet(), wallet()}

	inChild := transferIx([]uint8{2, 3, 0}, 500)
	outChild := transferIx([]uint8{4, 5, 0}, 200)
	ix := &core.Instruction{
		Data:     []byte{9},
		Accounts: []uint8{0, 1},
		Children: []*core.Instruction{inChild, outChild},
	}

	tx := &solanatx.RawTransaction{
		Transaction: &solanatx.TransactionEnvelope{
			Meta: &solanatx.TransactionMeta{
				// no post-balances at all; both sides must fall back to pre
				PreTokenBalances: []solanatx.TokenBalance{
					{AccountIndex: 3, Mint: wsol, UiTokenAmount: solanatx.UiTokenAmount{Amount: "500"}},
					{AccountIndex: 4, Mint: wallet(), UiTokenAmount: solanatx.UiTokenAmount{Amount: "200"}},
				},
			},
		},
	}

	event, err := decodeSwapBaseIn(ix, keys, tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Swap.MintIn != wsol {
		t.Errorf("expected fallback to pre-balance mint %s, got %s", wsol, event.Swap.MintIn)
	}
}

func TestDecodeSwapBaseInMissingBalance(t *testing.T) {
	keys := core.AccountKeys{wallet(), wallet(), wallet(), wallet(), wallet(), wallet()}
	inChild := transferIx([]uint8{2, 3, 0}, 500)
	outChild := transferIx([]uint8{4, 5, 0}, 200)
	ix := &core.Instruction{
		Data:     []byte{9},
		Accounts: []uint8{0, 1},
		Children: []*core.Instruction{inChild, outChild},
	}
	tx := &solanatx.RawTransaction{
		Transaction: &solanatx.TransactionEnvelope{Meta: &solanatx.TransactionMeta{}},
	}

	if _, err := decodeSwapBaseIn(ix, keys, tx); err == nil {
		t.Error("expected error when neither pre nor post balance resolves")
	}
}

func TestDecodeSwapBaseInTooFewChildren(t *testing.T) {
	ix := &core.Instruction{Data: []byte{9}, Accounts: []uint8{0, 1}}
	if _, err := decodeSwapBaseIn(ix, core.AccountKeys{"a", "b"}, &solanatx.RawTransaction{}); err == nil {
		t.Error("expected error for too few inner instructions")
	}
}

func TestDecodeCreatePool(t *testing.T) {
	user, pool, baseMint, quoteMint := wallet(), wallet(), wallet(), wallet()
	keys := core.AccountKeys{user, wallet(), wallet(), wallet(), pool, wallet(), wallet(), wallet(), baseMint, quoteMint}
	keys = append(keys, spltoken.ProgramID)
	tokenProgramIdx := len(keys) - 1

	baseTransfer := &core.Instruction{
		Data:           append([]byte{3}, u64le(10_000)...),
		Accounts:       []uint8{0, 1, 0},
		ProgramIDIndex: uint32(tokenProgramIdx),
	}
	quoteTransfer := &core.Instruction{
		Data:           append([]byte{3}, u64le(20_000)...),
		Accounts:       []uint8{0, 1, 0},
		ProgramIDIndex: uint32(tokenProgramIdx),
	}
	unrelated := &core.Instruction{ProgramIDIndex: 0}

	ix := &core.Instruction{
		Accounts: []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		Children: []*core.Instruction{unrelated, baseTransfer, quoteTransfer},
	}

	event, err := decodeCreatePool(ix, keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cp := event.CreatePool
	if cp.Pool != pool || cp.Creator != user {
		t.Errorf("unexpected pool/creator: %+v", cp)
	}
	if cp.BaseMint != baseMint || cp.QuoteMint != quoteMint {
		t.Errorf("unexpected mints: %+v", cp)
	}
	if cp.PoolBaseTokenReserve != 10_000 || cp.PoolQuoteTokenReserve != 20_000 {
		t.Errorf("unexpected initial deposits: %+v", cp)
	}
}

func TestDecodeCreatePoolTokenProgramNotFound(t *testing.T) {
	keys := core.AccountKeys{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	ix := &core.Instruction{Accounts: []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}}
	if _, err := decodeCreatePool(ix, keys); err == nil {
		t.Error("expected error when the token program id isn't in the key array")
	}
}

func TestDecodeCreatePoolTooFewTransfers(t *testing.T) {
	keys := core.AccountKeys{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", spltoken.ProgramID}
	ix := &core.Instruction{
		Accounts: []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		Children: []*core.Instruction{{ProgramIDIndex: 10}},
	}
	if _, err := decodeCreatePool(ix, keys); err == nil {
		t.Error("expected error for fewer than 2 token-program transfers")
	}
}
