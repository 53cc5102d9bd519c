package ledger

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aragon/cellvote/molecule"
	"github.com/aragon/cellvote/types"
	qt "github.com/frankban/quicktest"
)

// strictView behaves like the CKB syscalls: a buffer smaller than the
// available data is reported with a LengthNotEnough error
type strictView struct {
	*MemView
	loads int
}

func (s *strictView) LoadCellData(buf []byte, offset, index int, source Source) (int, error) {
	s.loads++
	n, err := s.MemView.LoadCellData(buf, offset, index, source)
	if err != nil {
		return 0, err
	}
	if n > len(buf) {
		return len(buf), LengthNotEnough(n)
	}
	return n, nil
}

func testView() *MemView {
	voteType := types.Script{CodeHash: [32]byte{1}, HashType: types.HashTypeType, Args: []byte{7}}
	otherType := types.Script{CodeHash: [32]byte{1}, HashType: types.HashTypeType, Args: []byte{8}}
	lock := types.Script{CodeHash: [32]byte{2}, HashType: types.HashTypeData}
	return &MemView{
		Script: voteType,
		Inputs: []Cell{{Lock: lock}},
		Outputs: []Cell{
			{Lock: lock, Type: &otherType, Data: []byte{0}},
			{Lock: lock, Type: &voteType, Data: []byte{1}},
			{Lock: lock},
			{Lock: lock, Type: &voteType, Data: []byte{3}},
		},
		CellDeps: []CellDep{
			{OutPoint: types.OutPoint{Index: 1}, Cell: Cell{Data: []byte("meta")}},
		},
		Witnesses: [][]byte{{0xa0}, {0xa1}, {0xa2}, {0xa3}},
	}
}

func TestMemViewGroups(t *testing.T) {
	c := qt.New(t)
	m := testView()

	// the group contains the outputs 1 and 3
	data, err := LoadCellData(m, 0, SourceGroupOutput)
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.DeepEquals, []byte{1})
	data, err = LoadCellData(m, 1, SourceGroupOutput)
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.DeepEquals, []byte{3})
	_, err = LoadCellData(m, 2, SourceGroupOutput)
	c.Assert(errors.Is(err, ErrIndexOutOfBound), qt.IsTrue)

	// the witness of a group cell is the one of its absolute index
	var buf [1]byte
	n, err := m.LoadWitness(buf[:], 0, 1, SourceGroupOutput)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 1)
	c.Assert(buf[0], qt.Equals, byte(0xa3))

	_, err = m.CellType(0, SourceGroupInput)
	c.Assert(errors.Is(err, ErrIndexOutOfBound), qt.IsTrue)

	typ, err := m.CellType(2, SourceOutput)
	c.Assert(err, qt.IsNil)
	c.Assert(typ, qt.IsNil)

	h, err := m.CellLockHash(0, SourceInput)
	c.Assert(err, qt.IsNil)
	c.Assert(h, qt.Equals, m.Inputs[0].Lock.Hash())

	handle, err := m.DependencyHandle(0)
	c.Assert(err, qt.IsNil)
	c.Assert(handle, qt.DeepEquals, m.CellDeps[0].OutPoint.Pack())
	_, err = m.DependencyHandle(1)
	c.Assert(errors.Is(err, ErrIndexOutOfBound), qt.IsTrue)
}

func TestSysErrorIs(t *testing.T) {
	c := qt.New(t)

	err := LengthNotEnough(10)
	c.Assert(errors.Is(err, ErrIndexOutOfBound), qt.IsFalse)
	var se *SysError
	c.Assert(errors.As(err, &se), qt.IsTrue)
	c.Assert(se.Len, qt.Equals, 10)
	c.Assert(err.Error(), qt.Equals, "host: LengthNotEnough (10)")

	c.Assert(errors.Is(&SysError{Kind: KindItemMissing}, ErrItemMissing), qt.IsTrue)
}

func TestCursorOverStrictHost(t *testing.T) {
	c := qt.New(t)

	rec := types.VoteMetaRecord{
		Candidates: [][]byte{[]byte("yes"), []byte("no")},
		Extra:      make([]byte, 100),
	}
	m := testView()
	m.CellDeps[0].Cell.Data = rec.Pack()
	v := &strictView{MemView: m}

	cur, err := CellDataCursor(v, 0, SourceCellDep, 16)
	c.Assert(err, qt.IsNil)
	c.Assert(cur.Size(), qt.Equals, len(m.CellDeps[0].Cell.Data))

	meta, err := types.NewVoteMeta(cur, false)
	c.Assert(err, qt.IsNil)
	n, err := meta.CandidateCount()
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 2)
	cand, err := meta.Candidate(1)
	c.Assert(err, qt.IsNil)
	c.Assert(string(cand), qt.Equals, "no")
	c.Assert(v.loads > 1, qt.IsTrue)

	// the whole data is loaded in one read after the size probe
	v.loads = 0
	data, err := LoadCellData(v, 0, SourceCellDep)
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.DeepEquals, m.CellDeps[0].Cell.Data)
	c.Assert(v.loads, qt.Equals, 2)

	// host failures while probing the size are returned as they are
	_, err = CellDataCursor(v, 5, SourceCellDep, 16)
	c.Assert(errors.Is(err, ErrIndexOutOfBound), qt.IsTrue)
}

func TestHostReaderFailure(t *testing.T) {
	c := qt.New(t)

	r := &hostReader{
		load: func(buf []byte, offset int) (int, error) {
			return 0, ErrWaitFailure
		},
		total: 10,
	}
	_, err := r.Read(make([]byte, 4), 0)
	var oob *molecule.OutOfBoundError
	c.Assert(errors.As(err, &oob), qt.IsTrue)
	c.Assert(oob.Offset, qt.Equals, 0)
	c.Assert(oob.Total, qt.Equals, 0)

	_, err = r.Read(make([]byte, 4), 10)
	c.Assert(errors.As(err, &oob), qt.IsTrue)
	c.Assert(oob.Offset, qt.Equals, 10)
}

func TestFixture(t *testing.T) {
	c := qt.New(t)
	m := testView()

	j, err := json.Marshal(m.Fixture())
	c.Assert(err, qt.IsNil)

	m2, err := ParseFixture(j)
	c.Assert(err, qt.IsNil)
	c.Assert(m2.Script.Equal(m.Script), qt.IsTrue)
	c.Assert(len(m2.Outputs), qt.Equals, len(m.Outputs))
	c.Assert(m2.Outputs[2].Type, qt.IsNil)
	c.Assert(m2.Outputs[3].Type.Equal(m.Script), qt.IsTrue)
	c.Assert(m2.CellDeps[0].OutPoint, qt.Equals, m.CellDeps[0].OutPoint)
	c.Assert(m2.Witnesses, qt.DeepEquals, m.Witnesses)

	_, err = ParseFixture([]byte(`{"script":{"codeHash":"0x01","hashType":1,"args":"0x"}}`))
	c.Assert(err, qt.ErrorMatches, "script: codeHash: expected 32 bytes, got 1")
}
