package core

// ProgramGroups is the result of a depth-first instruction walk: the
// instructions belonging to each registered program id, plus Order, the
// program ids in the order each was first encountered so callers can produce
// deterministic output.
type ProgramGroups struct {
	ByProgram map[string][]*Instruction
	Order     []string
}

// GroupByProgram walks the instruction forest depth-first, pre-order, and
// buckets every instruction whose resolved program id is registered into
// that program's group, preserving visitation order within each bucket.
// Unregistered program ids are skipped entirely; their children are still
// visited, since a CPI into a registered program can be nested under an
// unrelated outer instruction (spec §4.3 / C3).
func GroupByProgram(roots []*Instruction, keys AccountKeys, registered map[string]bool) ProgramGroups {
	result := ProgramGroups{ByProgram: make(map[string][]*Instruction)}

	var walk func(ix *Instruction)
	walk = func(ix *Instruction) {
		programID := keys.At(ix.ProgramIDIndex)
		if registered[programID] {
			if _, seen := result.ByProgram[programID]; !seen {
				result.Order = append(result.Order, programID)
			}
			result.ByProgram[programID] = append(result.ByProgram[programID], ix)
		}
		for _, child := range ix.Children {
			walk(child)
		}
	}

	for _, root := range roots {
		walk(root)
	}

	return result
}
