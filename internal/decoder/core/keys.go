package core

import (
	"github.com/gagliardetto/solana-go"

	cerrors "github.com/lugondev/solana-decoder/internal/errors"
	"github.com/lugondev/solana-decoder/pkg/solanatx"
)

// AccountKeys is the resolved, positional, base58-encoded account-key array
// for one transaction. Its concatenation order is
// static ⧺ loaded_writable ⧺ loaded_readonly; every account index elsewhere
// in the transaction (outer or inner instructions) refers into this array.
type AccountKeys []string

// At returns the key at idx, or "" if idx is out of range. Decoders treat an
// out-of-range account reference as an empty string rather than panicking;
// the owning decoder can then report a short-payload-style error for that
// instruction if the empty value breaks its own invariants.
func (k AccountKeys) At(idx uint32) string {
	i := int(idx)
	if i < 0 || i >= len(k) {
		return ""
	}
	return k[i]
}

// IndexOf returns the position of id in k, and whether it was found.
func (k AccountKeys) IndexOf(id string) (int, bool) {
	for i, key := range k {
		if key == id {
			return i, true
		}
	}
	return -1, false
}

// ResolveAccountKeys flattens a transaction's static message keys with its
// loaded writable and readonly address-table keys into one positional array,
// base58-encoding each 32-byte identifier (spec §4.1 / C1).
func ResolveAccountKeys(tx *solanatx.RawTransaction) (AccountKeys, error) {
	if tx == nil || tx.Transaction == nil {
		return nil, cerrors.ErrMissingTransaction
	}
	if tx.Transaction.Transaction == nil || tx.Transaction.Transaction.Message == nil {
		return nil, cerrors.ErrMissingMessage
	}
	msg := tx.Transaction.Transaction.Message

	var writable, readonly [][]byte
	if tx.Transaction.Meta != nil {
		writable = tx.Transaction.Meta.LoadedWritableAddresses
		readonly = tx.Transaction.Meta.LoadedReadonlyAddresses
	}

	total := len(msg.AccountKeys) + len(writable) + len(readonly)
	keys := make(AccountKeys, 0, total)

	encode := func(raw []byte) string {
		var pk solana.PublicKey
		copy(pk[:], raw)
		return pk.String()
	}

	for _, raw := range msg.AccountKeys {
		keys = append(keys, encode(raw))
	}
	for _, raw := range writable {
		keys = append(keys, encode(raw))
	}
	for _, raw := range readonly {
		keys = append(keys, encode(raw))
	}

	return keys, nil
}
