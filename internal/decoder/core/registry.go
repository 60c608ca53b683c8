package core

import (
	"sync"

	"github.com/lugondev/solana-decoder/pkg/solanatx"
)

// ProgramDecoder decodes every instruction belonging to one on-chain program
// within a single transaction. Implementations receive the instructions
// already grouped and resolved keys; they return zero or more events, one
// per recognized instruction, skipping anything they don't recognize.
type ProgramDecoder interface {
	// ProgramID is the base58 program id this decoder handles.
	ProgramID() string

	// Decode decodes the given instructions, which all belong to ProgramID,
	// in the order they occur in the transaction. tx is provided so
	// decoders that need balance snapshots (e.g. Raydium's swap) can read
	// TransactionMeta directly.
	Decode(instructions []*Instruction, keys AccountKeys, tx *solanatx.RawTransaction) ([]DecodedEvent, error)
}

// Registry holds the set of program decoders a façade dispatches to.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]ProgramDecoder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]ProgramDecoder)}
}

// Register adds or replaces the decoder for its ProgramID.
func (r *Registry) Register(d ProgramDecoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[d.ProgramID()] = d
}

// ProgramIDs returns the set of registered program ids, for use as the
// GroupByProgram membership filter.
func (r *Registry) ProgramIDs() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make(map[string]bool, len(r.decoders))
	for id := range r.decoders {
		ids[id] = true
	}
	return ids
}

// Get returns the decoder registered for programID, if any.
func (r *Registry) Get(programID string) (ProgramDecoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decoders[programID]
	return d, ok
}
