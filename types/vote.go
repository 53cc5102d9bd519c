package types

import (
	"errors"
	"fmt"

	"github.com/aragon/cellvote/molecule"
)

// ErrWrongHashSize is returned when a hash field does not have HashLen bytes
var ErrWrongHashSize = errors.New("wrong hash size")

// Layouts of the records read by the vote type script
var (
	// VoteMetaLayout is the layout of the ballot metadata, published in
	// the data of a dependency cell
	VoteMetaLayout = molecule.Table("VoteMeta",
		molecule.Optional("smt_root_hash", molecule.Byte32),
		molecule.Required("candidates", molecule.BytesVec),
		molecule.Required("start_time", molecule.Uint64),
		molecule.Required("end_time", molecule.Uint64),
		molecule.Optional("extra", molecule.Bytes),
	)
	// VoteProofLayout is the layout of the proof carried in the
	// output_type of the witness of a created vote cell
	VoteProofLayout = molecule.Table("VoteProof",
		molecule.Required("lock_script_hash", molecule.Byte32),
		molecule.Required("smt_proof", molecule.Bytes),
	)
	// WitnessArgsLayout is the layout of a witness envelope
	WitnessArgsLayout = molecule.Table("WitnessArgs",
		molecule.Optional("lock", molecule.Bytes),
		molecule.Optional("input_type", molecule.Bytes),
		molecule.Optional("output_type", molecule.Bytes),
	)
)

// hashField reads the field i of v as a 32 byte hash, reporting a field of
// another size as ErrWrongHashSize
func hashField(v molecule.Value, i int, optional bool) ([HashLen]byte, bool, error) {
	var f molecule.Value
	var ok bool
	var err error
	if optional {
		f, ok, err = v.OptionalField(i)
	} else {
		f, err = v.Field(i)
		ok = true
	}
	if errors.Is(err, molecule.ErrVerify) {
		return [HashLen]byte{}, false, fmt.Errorf("%w: %v", ErrWrongHashSize, err)
	}
	if err != nil || !ok {
		return [HashLen]byte{}, false, err
	}
	h, err := f.Array32()
	return h, err == nil, err
}

// VoteMeta is a lazy view over an encoded ballot metadata record
type VoteMeta struct {
	molecule.Value
}

// NewVoteMeta verifies the table envelope at c and returns the VoteMeta view
func NewVoteMeta(c molecule.Cursor, compatible bool) (VoteMeta, error) {
	v, err := molecule.NewValue(c, VoteMetaLayout, compatible)
	if err != nil {
		return VoteMeta{}, err
	}
	return VoteMeta{v}, nil
}

// SMTRootHash returns the root of the eligibility MerkleTree. ok is false for
// open ballots, which do not restrict who can vote.
func (m VoteMeta) SMTRootHash() (root [HashLen]byte, ok bool, err error) {
	return hashField(m.Value, 0, true)
}

// Candidates returns the vector of candidates
func (m VoteMeta) Candidates() (molecule.Value, error) {
	return m.Field(1)
}

// CandidateCount returns the number of candidates
func (m VoteMeta) CandidateCount() (int, error) {
	c, err := m.Candidates()
	if err != nil {
		return 0, err
	}
	return c.Len()
}

// Candidate returns the description of the candidate i
func (m VoteMeta) Candidate(i int) ([]byte, error) {
	c, err := m.Candidates()
	if err != nil {
		return nil, err
	}
	item, err := c.Index(i)
	if err != nil {
		return nil, err
	}
	raw, err := item.RawBytes()
	if err != nil {
		return nil, err
	}
	return raw.Bytes()
}

// StartTime returns the start_time of the ballot
func (m VoteMeta) StartTime() (uint64, error) {
	f, err := m.Field(2)
	if err != nil {
		return 0, err
	}
	return f.Uint64()
}

// EndTime returns the end_time of the ballot
func (m VoteMeta) EndTime() (uint64, error) {
	f, err := m.Field(3)
	if err != nil {
		return 0, err
	}
	return f.Uint64()
}

// Extra returns the opaque extra data of the ballot, if any
func (m VoteMeta) Extra() (molecule.Cursor, bool, error) {
	return rawBytesField(m.Value, 4)
}

// VoteProof is a lazy view over an encoded vote proof
type VoteProof struct {
	molecule.Value
}

// NewVoteProof verifies the table envelope at c and returns the VoteProof view
func NewVoteProof(c molecule.Cursor, compatible bool) (VoteProof, error) {
	v, err := molecule.NewValue(c, VoteProofLayout, compatible)
	if err != nil {
		return VoteProof{}, err
	}
	return VoteProof{v}, nil
}

// LockScriptHash returns the lock script hash of the voter
func (p VoteProof) LockScriptHash() ([HashLen]byte, error) {
	h, _, err := hashField(p.Value, 0, false)
	return h, err
}

// SMTProof returns the compiled MerkleProof of the voter in the eligibility
// MerkleTree
func (p VoteProof) SMTProof() ([]byte, error) {
	f, err := p.Field(1)
	if err != nil {
		return nil, err
	}
	raw, err := f.RawBytes()
	if err != nil {
		return nil, err
	}
	return raw.Bytes()
}

// WitnessArgs is a lazy view over an encoded witness envelope
type WitnessArgs struct {
	molecule.Value
}

// NewWitnessArgs verifies the table envelope at c and returns the WitnessArgs
// view
func NewWitnessArgs(c molecule.Cursor, compatible bool) (WitnessArgs, error) {
	v, err := molecule.NewValue(c, WitnessArgsLayout, compatible)
	if err != nil {
		return WitnessArgs{}, err
	}
	return WitnessArgs{v}, nil
}

// Lock returns the content of the lock slot
func (w WitnessArgs) Lock() (molecule.Cursor, bool, error) {
	return rawBytesField(w.Value, 0)
}

// InputType returns the content of the input_type slot
func (w WitnessArgs) InputType() (molecule.Cursor, bool, error) {
	return rawBytesField(w.Value, 1)
}

// OutputType returns the content of the output_type slot
func (w WitnessArgs) OutputType() (molecule.Cursor, bool, error) {
	return rawBytesField(w.Value, 2)
}

func rawBytesField(v molecule.Value, i int) (molecule.Cursor, bool, error) {
	f, ok, err := v.OptionalField(i)
	if err != nil || !ok {
		return molecule.Cursor{}, false, err
	}
	raw, err := f.RawBytes()
	if err != nil {
		return molecule.Cursor{}, false, err
	}
	return raw, true, nil
}

// VoteMetaRecord contains the fields of a ballot metadata record, to be
// encoded by the ballot organizer tooling
type VoteMetaRecord struct {
	// SMTRootHash is nil for open ballots
	SMTRootHash *[HashLen]byte
	Candidates  [][]byte
	StartTime   uint64
	EndTime     uint64
	Extra       []byte
}

// Pack returns the Molecule encoding of the record
func (r VoteMetaRecord) Pack() []byte {
	var root []byte
	if r.SMTRootHash != nil {
		root = r.SMTRootHash[:]
	}
	candidates := make([][]byte, len(r.Candidates))
	for i := 0; i < len(r.Candidates); i++ {
		candidates[i] = molecule.PackBytes(r.Candidates[i])
	}
	return molecule.PackTable(
		molecule.PackOption(root),
		molecule.PackDynVec(candidates...),
		molecule.PackUint64(r.StartTime),
		molecule.PackUint64(r.EndTime),
		molecule.PackOption(optBytes(r.Extra)),
	)
}

// VoteProofRecord contains the fields of a vote proof
type VoteProofRecord struct {
	LockScriptHash [HashLen]byte
	SMTProof       []byte
}

// Pack returns the Molecule encoding of the record
func (r VoteProofRecord) Pack() []byte {
	return molecule.PackTable(
		r.LockScriptHash[:],
		molecule.PackBytes(r.SMTProof),
	)
}

// WitnessArgsRecord contains the slots of a witness envelope, a nil slot
// being absent
type WitnessArgsRecord struct {
	Lock       []byte
	InputType  []byte
	OutputType []byte
}

// Pack returns the Molecule encoding of the record
func (r WitnessArgsRecord) Pack() []byte {
	return molecule.PackTable(
		molecule.PackOption(optBytes(r.Lock)),
		molecule.PackOption(optBytes(r.InputType)),
		molecule.PackOption(optBytes(r.OutputType)),
	)
}

func optBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return molecule.PackBytes(b)
}
