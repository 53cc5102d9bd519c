// Package ledger defines the narrow view of the host ledger that the vote
// validation consumes, and an in-memory implementation of it.
package ledger

import "fmt"

// Source selects the group of cells an index refers to
type Source uint8

const (
	// SourceInput are the cells consumed by the transaction
	SourceInput Source = iota + 1
	// SourceOutput are the cells created by the transaction
	SourceOutput
	// SourceCellDep are the cells referenced read-only by the transaction
	SourceCellDep
	// SourceGroupInput are the input cells guarded by the running script
	SourceGroupInput
	// SourceGroupOutput are the output cells guarded by the running script
	SourceGroupOutput
)

func (s Source) String() string {
	switch s {
	case SourceInput:
		return "input"
	case SourceOutput:
		return "output"
	case SourceCellDep:
		return "cell_dep"
	case SourceGroupInput:
		return "group_input"
	case SourceGroupOutput:
		return "group_output"
	}
	return fmt.Sprintf("Source(%d)", uint8(s))
}
