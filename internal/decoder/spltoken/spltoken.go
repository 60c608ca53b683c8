// Package spltoken decodes SPL Token program Transfer instructions. The
// Raydium decoder resolves its swap legs and pool-seed amounts by reading the
// token-program CPIs the outer instruction issued; the two pump.fun decoders
// read their amounts from the program's own event log instead.
package spltoken

import (
	cerrors "github.com/lugondev/solana-decoder/internal/errors"
	"github.com/lugondev/solana-decoder/internal/decoder/core"
)

// ProgramID is the classic SPL Token program id. Token-2022 is out of scope;
// none of the three supported AMMs route through it.
const ProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// Transfer is a decoded SPL Token Transfer (or TransferChecked) instruction.
type Transfer struct {
	Source      string
	Destination string
	Authority   string
	Amount      uint64
}

// DecodeTransfer decodes ix as an SPL Token transfer, resolving its source,
// destination, and authority accounts against keys. The caller has already
// identified ix as a token-program instruction by its ProgramIDIndex, so the
// discriminator byte itself is skipped rather than validated against a
// specific Transfer/TransferChecked value — both share the same amount
// layout at offset 1.
//
// Fails if ix's data is too short to hold the discriminator and amount.
func DecodeTransfer(ix *core.Instruction, keys core.AccountKeys) (*Transfer, error) {
	if len(ix.Data) < 9 {
		return nil, cerrors.ShortPayload("spl_token.transfer", len(ix.Data), 9)
	}
	if len(ix.Accounts) < 3 {
		return nil, cerrors.ShortPayload("spl_token.transfer.accounts", len(ix.Accounts), 3)
	}

	amount, err := core.ReadU64LE(ix.Data, 1)
	if err != nil {
		return nil, err
	}

	return &Transfer{
		Source:      keys.At(uint32(ix.Accounts[0])),
		Destination: keys.At(uint32(ix.Accounts[1])),
		Authority:   keys.At(uint32(ix.Accounts[2])),
		Amount:      amount,
	}, nil
}
