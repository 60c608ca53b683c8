// Package solanatx defines the wire-level shape of a decoded-transaction
// update as delivered by the upstream streaming ledger feed.
//
// Field names and nesting mirror the feed's own structure (a transaction
// envelope wrapping a message plus separately-reported metadata) so that
// this package stays a drop-in target for JSON or protobuf unmarshaling from
// that feed, without requiring a translation layer.
package solanatx

// RawTransaction is one committed transaction reported by the feed.
type RawTransaction struct {
	// Slot is the slot this transaction was processed in. Passed through;
	// not used by decoding logic.
	Slot uint64

	// Signature is the transaction's base58 signature. Passed through; not
	// used by decoding logic.
	Signature string

	Transaction *TransactionEnvelope
}

// TransactionEnvelope pairs the on-chain transaction with its execution meta.
type TransactionEnvelope struct {
	Transaction *Transaction
	Meta        *TransactionMeta
}

// Transaction carries the compiled message.
type Transaction struct {
	Message *Message
}

// Message is the compiled transaction message: a positional static account
// key array plus the outer instruction list.
type Message struct {
	// AccountKeys is the static account key array, each entry a 32-byte
	// identifier. Address-table-loaded keys are NOT included here; they
	// arrive separately on TransactionMeta.
	AccountKeys [][]byte

	Instructions []CompiledInstruction
}

// CompiledInstruction is an outer instruction as compiled into the message.
type CompiledInstruction struct {
	// Accounts holds indices into the resolved account-key array.
	Accounts []uint8
	// Data is the opaque instruction payload.
	Data []byte
	// ProgramIDIndex indexes the resolved account-key array.
	ProgramIDIndex uint32
}

// TransactionMeta carries everything about a transaction's execution that
// isn't part of the compiled message: address-table loads, inner
// instructions, and balance snapshots.
type TransactionMeta struct {
	LoadedWritableAddresses [][]byte
	LoadedReadonlyAddresses [][]byte

	InnerInstructions []InnerInstructionGroup

	PreBalances  []uint64
	PostBalances []uint64

	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
}

// InnerInstructionGroup is the flat list of CPIs issued, directly or
// transitively, by the outer instruction at Index.
type InnerInstructionGroup struct {
	// Index is the position of the parent outer instruction in
	// Message.Instructions.
	Index uint32

	Instructions []InnerInstructionEntry
}

// InnerInstructionEntry is one inner instruction, tagged with the call-stack
// depth at which it was invoked (the outer instruction itself is depth 1).
type InnerInstructionEntry struct {
	Accounts       []uint8
	Data           []byte
	ProgramIDIndex uint32
	// StackHeight is nil only for malformed input; see core.BuildForest.
	StackHeight *uint32
}

// TokenBalance is a pre- or post-execution snapshot of one token account's
// balance, as reported in TransactionMeta.
type TokenBalance struct {
	Mint          string
	Owner         string
	AccountIndex  uint32
	ProgramID     string
	UiTokenAmount UiTokenAmount
}

// UiTokenAmount is a token amount reported in both raw and human-readable form.
type UiTokenAmount struct {
	UiAmount       *float64
	Decimals       uint32
	Amount         string
	UiAmountString string
}
