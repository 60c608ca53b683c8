package pumpamm

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/solana-decoder/internal/decoder/core"
)

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func u16le(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func pubkeyBytes(s string) []byte {
	pk := solana.MustPublicKeyFromBase58(s)
	return pk[:]
}

func wallet() string { return solana.NewWallet().PublicKey().String() }

func sellLog(baseAmountIn, poolBase, poolQuote, quoteAmountOut uint64, creator string) []byte {
	buf := make([]byte, 376)
	copy(buf[24:], u64le(baseAmountIn))
	copy(buf[64:], u64le(poolBase))
	copy(buf[72:], u64le(poolQuote))
	copy(buf[136:], u64le(quoteAmountOut))
	copy(buf[344:], pubkeyBytes(creator))
	return buf
}

func buyLog(baseAmountOut, poolBase, poolQuote, quoteAmountIn uint64, creator string) []byte {
	buf := make([]byte, 368)
	copy(buf[24:], u64le(baseAmountOut))
	copy(buf[64:], u64le(poolBase))
	copy(buf[72:], u64le(poolQuote))
	copy(buf[80:], u64le(quoteAmountIn))
	copy(buf[336:], pubkeyBytes(creator))
	return buf
}

func swapIx(data []byte, children ...*core.Instruction) *core.Instruction {
	return &core.Instruction{
		Data:     data,
		Accounts: []uint8{0, 1, 2, 3, 4},
		Children: children,
	}
}

func TestDecodeBuy(t *testing.T) {
	pool, user, baseMint, quoteMint, creator := wallet(), wallet(), wallet(), wallet(), wallet()
	keys := core.AccountKeys{pool, user, wallet(), baseMint, quoteMint}

	log := buyLog(1_000, 2_000, 3_000, 4_000, creator)
	ix := swapIx(discBuy, &core.Instruction{Data: log})

	event, err := decodeBuy(ix, keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Swap.MintIn != quoteMint || event.Swap.MintOut != baseMint {
		t.Errorf("unexpected mint_in/mint_out: %+v", event.Swap)
	}
	if event.Swap.AmountIn != 4_000 || event.Swap.AmountOut != 1_000 {
		t.Errorf("unexpected amounts: %+v", event.Swap)
	}
	if event.Swap.MintInReserve != 2_000 || event.Swap.MintOutReserve != 3_000 {
		t.Errorf("unexpected reserves: %+v", event.Swap)
	}
	if event.Swap.CoinCreator != creator {
		t.Errorf("expected coin_creator %s, got %s", creator, event.Swap.CoinCreator)
	}
}

func TestDecodeSell(t *testing.T) {
	pool, user, baseMint, quoteMint, creator := wallet(), wallet(), wallet(), wallet(), wallet()
	keys := core.AccountKeys{pool, user, wallet(), baseMint, quoteMint}

	log := sellLog(5_000, 6_000, 7_000, 8_000, creator)
	ix := swapIx(discSell, &core.Instruction{Data: log})

	event, err := decodeSell(ix, keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Swap.MintIn != baseMint || event.Swap.MintOut != quoteMint {
		t.Errorf("unexpected mint_in/mint_out: %+v", event.Swap)
	}
	if event.Swap.AmountIn != 5_000 || event.Swap.AmountOut != 8_000 {
		t.Errorf("unexpected amounts: %+v", event.Swap)
	}
}

func TestDecodeBuyMissingChild(t *testing.T) {
	ix := &core.Instruction{Data: discBuy, Accounts: []uint8{0, 1, 2, 3, 4}}
	if _, err := decodeBuy(ix, core.AccountKeys{"a", "b", "c", "d", "e"}); err == nil {
		t.Error("expected error for missing self-logged inner instruction")
	}
}

func TestDecodeBuyShortLog(t *testing.T) {
	ix := swapIx(discBuy, &core.Instruction{Data: make([]byte, 40)})
	if _, err := decodeBuy(ix, core.AccountKeys{"a", "b", "c", "d", "e"}); err == nil {
		t.Error("expected error for truncated log payload")
	}
}

func TestDecodeCreatePool(t *testing.T) {
	pool, baseMint, quoteMint, poolBaseAcct, poolQuoteAcct, creator :=
		wallet(), wallet(), wallet(), wallet(), wallet(), wallet()
	keys := core.AccountKeys{pool, wallet(), wallet(), baseMint, quoteMint, wallet(), wallet(), wallet(), wallet(), poolBaseAcct, poolQuoteAcct}

	data := append([]byte{}, discCreatePool...)
	data = append(data, u16le(7)...)
	data = append(data, u64le(100_000)...)
	data = append(data, u64le(200_000)...)
	data = append(data, pubkeyBytes(creator)...)

	ix := &core.Instruction{Data: data, Accounts: []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}

	event, err := decodeCreatePool(ix, keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cp := event.CreatePool
	if cp.Pool != pool || cp.BaseMint != baseMint || cp.QuoteMint != quoteMint {
		t.Errorf("unexpected pool/mints: %+v", cp)
	}
	if cp.PoolBaseTokenAccount != poolBaseAcct || cp.PoolQuoteTokenAccount != poolQuoteAcct {
		t.Errorf("unexpected token accounts: %+v", cp)
	}
	if cp.Creator != creator {
		t.Errorf("expected creator %s, got %s", creator, cp.Creator)
	}
	if cp.PoolBaseTokenReserve != 100_000 || cp.PoolQuoteTokenReserve != 200_000 {
		t.Errorf("unexpected initial reserves: %+v", cp)
	}
	if cp.Index != 7 {
		t.Errorf("expected index 7, got %d", cp.Index)
	}
}

func TestDecodeCreatePoolShortAccounts(t *testing.T) {
	ix := &core.Instruction{Data: discCreatePool, Accounts: []uint8{0, 1}}
	if _, err := decodeCreatePool(ix, core.AccountKeys{"a", "b"}); err == nil {
		t.Error("expected error for too few accounts")
	}
}

// TestDecodeOneDepositWithdrawRecognizedButNoEvent covers the Open Question
// resolution: Deposit/Withdraw discriminators are recognized but never
// produce an event or an error.
func TestDecodeOneDepositWithdrawRecognizedButNoEvent(t *testing.T) {
	d := New()
	keys := core.AccountKeys{"a", "b", "c", "d", "e"}

	for _, disc := range [][]byte{discDeposit, discWithdraw} {
		ix := &core.Instruction{Data: disc}
		event, err := d.decodeOne(ix, keys)
		if err != nil {
			t.Errorf("unexpected error for recognized-but-unimplemented discriminator: %v", err)
		}
		if event != nil {
			t.Errorf("expected no event, got %+v", event)
		}
	}
}

func TestDecodeOneUnknownDiscriminator(t *testing.T) {
	d := New()
	ix := &core.Instruction{Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}}
	event, err := d.decodeOne(ix, core.AccountKeys{})
	if err != nil || event != nil {
		t.Errorf("expected (nil, nil) for unrecognized discriminator, got (%+v, %v)", event, err)
	}
}
