package ledger

import (
	"github.com/aragon/cellvote/types"
)

// Cell is a cell as seen by a transaction
type Cell struct {
	Capacity uint64
	Lock     types.Script
	Type     *types.Script
	Data     []byte
}

// CellDep is a cell referenced read-only by a transaction, together with the
// OutPoint that locates it
type CellDep struct {
	OutPoint types.OutPoint
	Cell     Cell
}

// ensure that MemView implements the View interface
var _ View = (*MemView)(nil)

// MemView is a View over a transaction held in memory. The group sources are
// the cells whose type script is equal to Script.
type MemView struct {
	Script    types.Script
	Inputs    []Cell
	Outputs   []Cell
	CellDeps  []CellDep
	Witnesses [][]byte
}

// CurrentScript implements the View interface
func (m *MemView) CurrentScript() (types.Script, error) {
	return m.Script, nil
}

// group returns the absolute indexes of the cells of the group
func (m *MemView) group(cells []Cell) []int {
	var idx []int
	for i := 0; i < len(cells); i++ {
		if cells[i].Type != nil && cells[i].Type.Equal(m.Script) {
			idx = append(idx, i)
		}
	}
	return idx
}

// resolve returns the cell at index in source, and its absolute index in the
// inputs or outputs list
func (m *MemView) resolve(index int, source Source) (*Cell, int, error) {
	if index < 0 {
		return nil, 0, ErrIndexOutOfBound
	}
	var cells []Cell
	switch source {
	case SourceInput:
		cells = m.Inputs
	case SourceOutput:
		cells = m.Outputs
	case SourceCellDep:
		if index >= len(m.CellDeps) {
			return nil, 0, ErrIndexOutOfBound
		}
		return &m.CellDeps[index].Cell, index, nil
	case SourceGroupInput, SourceGroupOutput:
		cells = m.Inputs
		if source == SourceGroupOutput {
			cells = m.Outputs
		}
		g := m.group(cells)
		if index >= len(g) {
			return nil, 0, ErrIndexOutOfBound
		}
		return &cells[g[index]], g[index], nil
	default:
		return nil, 0, ErrOther
	}
	if index >= len(cells) {
		return nil, 0, ErrIndexOutOfBound
	}
	return &cells[index], index, nil
}

// CellType implements the View interface
func (m *MemView) CellType(index int, source Source) (*types.Script, error) {
	cell, _, err := m.resolve(index, source)
	if err != nil {
		return nil, err
	}
	return cell.Type, nil
}

// CellLockHash implements the View interface
func (m *MemView) CellLockHash(index int, source Source) ([types.HashLen]byte, error) {
	cell, _, err := m.resolve(index, source)
	if err != nil {
		return [types.HashLen]byte{}, err
	}
	return cell.Lock.Hash(), nil
}

// LoadCellData implements the View interface
func (m *MemView) LoadCellData(buf []byte, offset, index int, source Source) (int, error) {
	cell, _, err := m.resolve(index, source)
	if err != nil {
		return 0, err
	}
	return load(cell.Data, buf, offset)
}

// LoadWitness implements the View interface
func (m *MemView) LoadWitness(buf []byte, offset, index int, source Source) (int, error) {
	if source == SourceCellDep {
		return 0, ErrIndexOutOfBound
	}
	_, abs, err := m.resolve(index, source)
	if err != nil {
		return 0, err
	}
	if abs >= len(m.Witnesses) {
		return 0, ErrIndexOutOfBound
	}
	return load(m.Witnesses[abs], buf, offset)
}

// DependencyHandle implements the View interface
func (m *MemView) DependencyHandle(index int) ([]byte, error) {
	if index < 0 || index >= len(m.CellDeps) {
		return nil, ErrIndexOutOfBound
	}
	return m.CellDeps[index].OutPoint.Pack(), nil
}

func load(data, buf []byte, offset int) (int, error) {
	if offset > len(data) {
		return 0, ErrOther
	}
	copy(buf, data[offset:])
	return len(data) - offset, nil
}
