package types

import (
	"bytes"
	"fmt"

	"github.com/aragon/cellvote/molecule"
)

// HashType indicates how the CodeHash of a Script is matched against the
// code cells of a transaction
type HashType byte

const (
	// HashTypeData matches the hash of the code cell data
	HashTypeData HashType = 0
	// HashTypeType matches the hash of the code cell type script
	HashTypeType HashType = 1
	// HashTypeData1 matches the hash of the code cell data, run with the
	// VM version 1
	HashTypeData1 HashType = 2
	// HashTypeData2 matches the hash of the code cell data, run with the
	// VM version 2
	HashTypeData2 HashType = 4
)

func (h HashType) String() string {
	switch h {
	case HashTypeData:
		return "data"
	case HashTypeType:
		return "type"
	case HashTypeData1:
		return "data1"
	case HashTypeData2:
		return "data2"
	}
	return fmt.Sprintf("HashType(%d)", byte(h))
}

// Script identifies the code that governs a cell
type Script struct {
	CodeHash [HashLen]byte
	HashType HashType
	Args     []byte
}

// SameCode returns true when both scripts run the same code, regardless of
// their args
func (s Script) SameCode(o Script) bool {
	return s.CodeHash == o.CodeHash && s.HashType == o.HashType
}

// Equal returns true when both scripts are the same script
func (s Script) Equal(o Script) bool {
	return s.SameCode(o) && bytes.Equal(s.Args, o.Args)
}

// Pack returns the Molecule encoding of the Script
func (s Script) Pack() []byte {
	return molecule.PackTable(
		s.CodeHash[:],
		[]byte{byte(s.HashType)},
		molecule.PackBytes(s.Args),
	)
}

// Hash returns the script hash, which is the hash of its Molecule encoding.
// The lock script hash of a cell identifies its owner.
func (s Script) Hash() [HashLen]byte {
	return Blake2b256(s.Pack())
}

// OutPointSize is the size of the encoding of an OutPoint
const OutPointSize = HashLen + 4

// OutPoint references a cell created by a previous transaction
type OutPoint struct {
	TxHash [HashLen]byte
	Index  uint32
}

// Pack returns the Molecule encoding of the OutPoint. It is the locating
// handle of a dependency cell.
func (o OutPoint) Pack() []byte {
	b := make([]byte, 0, OutPointSize)
	b = append(b, o.TxHash[:]...)
	return append(b, molecule.PackUint32(o.Index)...)
}

// ShortID returns the short identity digest of the OutPoint, which is what
// the args of a vote type script commit to
func (o OutPoint) ShortID() [ShortDigestLen]byte {
	return Blake160(o.Pack())
}
