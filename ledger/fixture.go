package ledger

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/aragon/cellvote/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ScriptJSON is the JSON representation of a types.Script
type ScriptJSON struct {
	CodeHash hexutil.Bytes `json:"codeHash"`
	HashType uint8         `json:"hashType"`
	Args     hexutil.Bytes `json:"args"`
}

// CellJSON is the JSON representation of a Cell
type CellJSON struct {
	Capacity uint64        `json:"capacity"`
	Lock     ScriptJSON    `json:"lock"`
	Type     *ScriptJSON   `json:"type"`
	Data     hexutil.Bytes `json:"data"`
}

// OutPointJSON is the JSON representation of a types.OutPoint
type OutPointJSON struct {
	TxHash hexutil.Bytes `json:"txHash"`
	Index  uint32        `json:"index"`
}

// CellDepJSON is the JSON representation of a CellDep
type CellDepJSON struct {
	OutPoint OutPointJSON `json:"outPoint"`
	Cell     CellJSON     `json:"cell"`
}

// Fixture is the JSON representation of a MemView, used to feed transactions
// to the validator from files. Lock hashes and OutPoint digests are computed
// with types.Blake2b256, the unpersonalized BLAKE2b-256, so they are not the
// script hashes that a CKB node computes for the same scripts.
type Fixture struct {
	Script    ScriptJSON      `json:"script"`
	Inputs    []CellJSON      `json:"inputs"`
	Outputs   []CellJSON      `json:"outputs"`
	CellDeps  []CellDepJSON   `json:"cellDeps"`
	Witnesses []hexutil.Bytes `json:"witnesses"`
}

func hash32(b []byte, name string) ([types.HashLen]byte, error) {
	var h [types.HashLen]byte
	if len(b) != types.HashLen {
		return h, fmt.Errorf("%s: expected %d bytes, got %d", name, types.HashLen, len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (s ScriptJSON) script() (types.Script, error) {
	codeHash, err := hash32(s.CodeHash, "codeHash")
	if err != nil {
		return types.Script{}, err
	}
	return types.Script{
		CodeHash: codeHash,
		HashType: types.HashType(s.HashType),
		Args:     []byte(s.Args),
	}, nil
}

func scriptJSON(s types.Script) ScriptJSON {
	return ScriptJSON{
		CodeHash: append(hexutil.Bytes{}, s.CodeHash[:]...),
		HashType: uint8(s.HashType),
		Args:     hexutil.Bytes(s.Args),
	}
}

func (c CellJSON) cell() (Cell, error) {
	lock, err := c.Lock.script()
	if err != nil {
		return Cell{}, fmt.Errorf("lock: %w", err)
	}
	cell := Cell{Capacity: c.Capacity, Lock: lock, Data: []byte(c.Data)}
	if c.Type != nil {
		typ, err := c.Type.script()
		if err != nil {
			return Cell{}, fmt.Errorf("type: %w", err)
		}
		cell.Type = &typ
	}
	return cell, nil
}

func cellJSON(c Cell) CellJSON {
	j := CellJSON{Capacity: c.Capacity, Lock: scriptJSON(c.Lock), Data: hexutil.Bytes(c.Data)}
	if c.Type != nil {
		typ := scriptJSON(*c.Type)
		j.Type = &typ
	}
	return j
}

func cells(js []CellJSON, name string) ([]Cell, error) {
	out := make([]Cell, len(js))
	for i := 0; i < len(js); i++ {
		c, err := js[i].cell()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		out[i] = c
	}
	return out, nil
}

// View returns the MemView described by the Fixture
func (f *Fixture) View() (*MemView, error) {
	var err error
	m := &MemView{}
	if m.Script, err = f.Script.script(); err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	if m.Inputs, err = cells(f.Inputs, "inputs"); err != nil {
		return nil, err
	}
	if m.Outputs, err = cells(f.Outputs, "outputs"); err != nil {
		return nil, err
	}
	for i := 0; i < len(f.CellDeps); i++ {
		txHash, err := hash32(f.CellDeps[i].OutPoint.TxHash, "txHash")
		if err != nil {
			return nil, fmt.Errorf("cellDeps[%d]: %w", i, err)
		}
		cell, err := f.CellDeps[i].Cell.cell()
		if err != nil {
			return nil, fmt.Errorf("cellDeps[%d]: %w", i, err)
		}
		m.CellDeps = append(m.CellDeps, CellDep{
			OutPoint: types.OutPoint{TxHash: txHash, Index: f.CellDeps[i].OutPoint.Index},
			Cell:     cell,
		})
	}
	for i := 0; i < len(f.Witnesses); i++ {
		m.Witnesses = append(m.Witnesses, []byte(f.Witnesses[i]))
	}
	return m, nil
}

// Fixture returns the JSON representation of the MemView
func (m *MemView) Fixture() *Fixture {
	f := &Fixture{Script: scriptJSON(m.Script)}
	for i := 0; i < len(m.Inputs); i++ {
		f.Inputs = append(f.Inputs, cellJSON(m.Inputs[i]))
	}
	for i := 0; i < len(m.Outputs); i++ {
		f.Outputs = append(f.Outputs, cellJSON(m.Outputs[i]))
	}
	for i := 0; i < len(m.CellDeps); i++ {
		d := m.CellDeps[i]
		f.CellDeps = append(f.CellDeps, CellDepJSON{
			OutPoint: OutPointJSON{
				TxHash: append(hexutil.Bytes{}, d.OutPoint.TxHash[:]...),
				Index:  d.OutPoint.Index,
			},
			Cell: cellJSON(d.Cell),
		})
	}
	for i := 0; i < len(m.Witnesses); i++ {
		f.Witnesses = append(f.Witnesses, hexutil.Bytes(m.Witnesses[i]))
	}
	return f
}

// ParseFixture decodes a JSON Fixture into a MemView
func ParseFixture(b []byte) (*MemView, error) {
	var f Fixture
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return f.View()
}

// LoadFixture reads the JSON Fixture at path into a MemView
func LoadFixture(path string) (*MemView, error) {
	b, err := ioutil.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, err
	}
	return ParseFixture(b)
}
