package core

import (
	"github.com/lugondev/solana-decoder/pkg/solanatx"
)

// DecodeTransaction resolves a transaction's account keys, rebuilds its
// instruction forest, groups instructions by program id, and decodes each
// group with its registered decoder (spec §4.6 / C6).
//
// DecodeTransaction is pure, synchronous, and touches no shared mutable
// state beyond registry, which is read-only after construction; callers may
// invoke it concurrently across independent transactions.
//
// A malformed transaction envelope (missing message, meta, or stack height)
// aborts decoding of this transaction only and is returned as-is. A
// per-instruction decode failure is each ProgramDecoder's own responsibility
// to localize: it must skip the offending instruction and keep decoding the
// rest of its group rather than return early, so one bad instruction never
// suppresses events already produced by others in the same transaction.
func DecodeTransaction(tx *solanatx.RawTransaction, registry *Registry) ([]DecodedEvent, error) {
	keys, err := ResolveAccountKeys(tx)
	if err != nil {
		return nil, err
	}

	forest, err := BuildForest(tx)
	if err != nil {
		return nil, err
	}

	groups := GroupByProgram(forest, keys, registry.ProgramIDs())

	var events []DecodedEvent
	for _, programID := range groups.Order {
		decoder, ok := registry.Get(programID)
		if !ok {
			continue
		}
		decoded, err := decoder.Decode(groups.ByProgram[programID], keys, tx)
		if err != nil {
			return events, err
		}
		events = append(events, decoded...)
	}

	return events, nil
}
