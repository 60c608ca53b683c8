package core

import (
	cerrors "github.com/lugondev/solana-decoder/internal/errors"
	"github.com/lugondev/solana-decoder/pkg/solanatx"
)

// MaxInstructionStackDepth bounds the depth-indexed working stack used while
// rebuilding the instruction forest. The runtime's own call-stack limit is 5;
// see https://github.com/anza-xyz/agave/blob/master/program-runtime/src/execution_budget.rs
// Entries deeper than this are nested under the deepest tracked ancestor
// rather than dropped (spec §4.2 edge cases).
const MaxInstructionStackDepth = 5

// Instruction is the canonical, recursively-structured shape consumed by
// program decoders (spec §3 StructuredInstruction / C2 output).
//
// Invariants: a node at depth d holds only children at depth d+1; sibling
// order mirrors the source inner-instruction list order; every outer root has
// depth 1.
type Instruction struct {
	Accounts       []uint8
	ProgramIDIndex uint32
	Data           []byte
	Depth          uint32
	Children       []*Instruction
}

// BuildForest rebuilds the parent/child instruction tree from a transaction's
// flat outer instruction list and its per-parent flat inner-instruction
// groups (spec §4.2 / C2).
//
// One root Instruction is produced per outer instruction, in outer-index
// order, each carrying the reconstructed child tree for that outer index.
func BuildForest(tx *solanatx.RawTransaction) ([]*Instruction, error) {
	if tx == nil || tx.Transaction == nil {
		return nil, cerrors.ErrMissingTransaction
	}
	if tx.Transaction.Transaction == nil || tx.Transaction.Transaction.Message == nil {
		return nil, cerrors.ErrMissingMessage
	}
	if tx.Transaction.Meta == nil {
		return nil, cerrors.ErrMissingMeta
	}

	outer := tx.Transaction.Transaction.Message.Instructions
	groups := tx.Transaction.Meta.InnerInstructions

	roots := make([]*Instruction, len(outer))
	for i, ix := range outer {
		roots[i] = &Instruction{
			Accounts:       ix.Accounts,
			ProgramIDIndex: ix.ProgramIDIndex,
			Data:           ix.Data,
			Depth:          1,
			Children:       nil,
		}
	}

	if len(groups) == 0 {
		return roots, nil
	}

	byIndex := make(map[uint32]solanatx.InnerInstructionGroup, len(groups))
	for _, g := range groups {
		byIndex[g.Index] = g
	}

	for outerIdx := range roots {
		group, ok := byIndex[uint32(outerIdx)]
		if !ok {
			continue
		}
		if err := attachGroup(roots[outerIdx], group.Instructions); err != nil {
			return nil, err
		}
	}

	return roots, nil
}

// attachGroup reconstructs the child tree for one outer instruction's flat,
// depth-annotated inner-instruction list using a depth-indexed working stack:
// stack[d] holds the most recently seen node at depth d. Appending a node at
// depth d makes it the child of stack[d-1] and truncates any stale deeper
// slots, so a later entry at depth d+1 parents onto the node just added.
func attachGroup(root *Instruction, entries []solanatx.InnerInstructionEntry) error {
	const cap = MaxInstructionStackDepth + 2 // headroom for deeper-than-5 inputs
	var stack [cap]*Instruction
	stack[1] = root

	clampIdx := func(d uint32) uint32 {
		if d >= cap {
			return cap - 1
		}
		return d
	}

	for _, entry := range entries {
		if entry.StackHeight == nil {
			return cerrors.ErrMissingStackHeight
		}
		depth := *entry.StackHeight
		if depth < 2 {
			// An inner entry can't legally sit at the outer root's own
			// depth; treat it as a direct child of the root.
			depth = 2
		}

		// Find the nearest tracked ancestor at depth-1, walking down if the
		// declared depth jumps more than one level past anything observed
		// so far (spec §4.2 edge case).
		parentIdx := clampIdx(depth - 1)
		for parentIdx > 1 && stack[parentIdx] == nil {
			parentIdx--
		}
		parent := stack[parentIdx]
		if parent == nil {
			parent = root
		}

		node := &Instruction{
			Accounts:       entry.Accounts,
			ProgramIDIndex: entry.ProgramIDIndex,
			Data:           entry.Data,
			Depth:          parent.Depth + 1,
			Children:       nil,
		}
		parent.Children = append(parent.Children, node)

		// Index the working stack by the node's computed depth, not its raw
		// declared depth: when a jump forced parent to a shallower ancestor
		// than depth-1 implied, node.Depth trails depth, and a later entry
		// walking down from its own depth-1 must land on this node at the
		// slot matching its real position, not the slot its raw input depth
		// would occupy.
		slot := clampIdx(node.Depth)
		stack[slot] = node
		for d := slot + 1; d < cap; d++ {
			stack[d] = nil
		}
	}

	return nil
}
