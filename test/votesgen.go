package test

import (
	"crypto/rand"

	"github.com/aragon/cellvote/census"
	"github.com/aragon/cellvote/ledger"
	"github.com/aragon/cellvote/types"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/pebbledb"
)

var (
	// VoteCodeHash is the code hash of the vote type script in the test
	// transactions
	VoteCodeHash = [types.HashLen]byte{0x76, 0x6f, 0x74, 0x65}
	// LockCodeHash is the code hash of the lock scripts of the test voters
	LockCodeHash = [types.HashLen]byte{0x6c, 0x6f, 0x63, 0x6b}
)

func randBytes(c *qt.C, n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	c.Assert(err, qt.IsNil)
	return b
}

// Voters contains the lock scripts of the test voters
type Voters struct {
	Locks []types.Script
}

// GenVoters returns n Voters
func GenVoters(c *qt.C, n int) Voters {
	var voters Voters
	for i := 0; i < n; i++ {
		voters.Locks = append(voters.Locks, types.Script{
			CodeHash: LockCodeHash,
			HashType: types.HashTypeType,
			Args:     randBytes(c, types.ShortDigestLen),
		})
	}
	return voters
}

// LockHashes returns the lock script hashes of the Voters
func (v Voters) LockHashes() [][types.HashLen]byte {
	hashes := make([][types.HashLen]byte, len(v.Locks))
	for i := 0; i < len(v.Locks); i++ {
		hashes[i] = v.Locks[i].Hash()
	}
	return hashes
}

// Census contains the test Voters and their closed census.Census
type Census struct {
	Voters Voters
	Census *census.Census
	Root   [types.HashLen]byte
}

// GenCensus returns a closed test Census containing the given Voters
func GenCensus(c *qt.C, voters Voters) *Census {
	optsDB := db.Options{Path: c.TempDir()}
	database, err := pebbledb.New(optsDB)
	c.Assert(err, qt.IsNil)

	optsCensus := census.Options{DB: database}
	cens, err := census.New(optsCensus)
	c.Assert(err, qt.IsNil)

	invalids, err := cens.AddVoters(voters.LockHashes())
	c.Assert(err, qt.IsNil)
	c.Assert(len(invalids), qt.Equals, 0)
	c.Assert(cens.Close(), qt.IsNil)

	root, err := cens.Root()
	c.Assert(err, qt.IsNil)
	return &Census{Voters: voters, Census: cens, Root: root}
}

// Proof returns the MerkleProof of the voter i
func (cens *Census) Proof(c *qt.C, i int) []byte {
	proof, err := cens.Census.GenProof(cens.Voters.Locks[i].Hash())
	c.Assert(err, qt.IsNil)
	return proof
}

// Ballot is a test ballot: its metadata, the OutPoint of the cell that holds
// it, and the vote type script bound to it
type Ballot struct {
	Meta     types.VoteMetaRecord
	OutPoint types.OutPoint
	Script   types.Script
}

// GenBallot returns a Ballot with the given metadata, published in a cell of
// a random transaction
func GenBallot(c *qt.C, meta types.VoteMetaRecord) *Ballot {
	var out types.OutPoint
	copy(out.TxHash[:], randBytes(c, types.HashLen))
	id := out.ShortID()
	return &Ballot{
		Meta:     meta,
		OutPoint: out,
		Script: types.Script{
			CodeHash: VoteCodeHash,
			HashType: types.HashTypeType,
			Args:     id[:],
		},
	}
}

// MetaDep returns the cell dependency that holds the Ballot metadata
func (b *Ballot) MetaDep() ledger.CellDep {
	return ledger.CellDep{
		OutPoint: b.OutPoint,
		Cell:     ledger.Cell{Data: b.Meta.Pack()},
	}
}

// Vote describes a vote cell to be created
type Vote struct {
	// Lock is the lock script of the vote cell
	Lock types.Script
	// LockHash is the voter claimed in the VoteProof
	LockHash [types.HashLen]byte
	Proof    []byte
	Data     []byte
}

// Witness returns the witness of the vote cell, carrying its VoteProof
func (v Vote) Witness() []byte {
	proof := types.VoteProofRecord{LockScriptHash: v.LockHash, SMTProof: v.Proof}
	return types.WitnessArgsRecord{OutputType: proof.Pack()}.Pack()
}

// GenVotes returns the votes of all the voters of the Census for the given
// candidate
func GenVotes(c *qt.C, cens *Census, candidate byte) []Vote {
	var votes []Vote
	for i := 0; i < len(cens.Voters.Locks); i++ {
		votes = append(votes, Vote{
			Lock:     cens.Voters.Locks[i],
			LockHash: cens.Voters.Locks[i].Hash(),
			Proof:    cens.Proof(c, i),
			Data:     []byte{candidate},
		})
	}
	return votes
}

// GenTx returns a transaction that spends one cell of each of the given
// locks and creates the given vote cells of the Ballot. The first output is
// a change cell without type script, so the vote cells are not at the
// beginning of the outputs.
func GenTx(b *Ballot, inputs []types.Script, votes []Vote) *ledger.MemView {
	tx := &ledger.MemView{
		Script:   b.Script,
		CellDeps: []ledger.CellDep{b.MetaDep()},
	}
	for i := 0; i < len(inputs); i++ {
		tx.Inputs = append(tx.Inputs, ledger.Cell{Capacity: 1000, Lock: inputs[i]})
	}

	tx.Outputs = append(tx.Outputs, ledger.Cell{Capacity: 1000})
	tx.Witnesses = append(tx.Witnesses, types.WitnessArgsRecord{}.Pack())
	for i := 0; i < len(votes); i++ {
		typ := b.Script
		tx.Outputs = append(tx.Outputs, ledger.Cell{
			Capacity: 100,
			Lock:     votes[i].Lock,
			Type:     &typ,
			Data:     votes[i].Data,
		})
		tx.Witnesses = append(tx.Witnesses, votes[i].Witness())
	}
	return tx
}

// GenConsumeTx returns a transaction that consumes the vote cells created by
// tx, without any cell dependency
func GenConsumeTx(tx *ledger.MemView) *ledger.MemView {
	consume := &ledger.MemView{Script: tx.Script}
	for i := 0; i < len(tx.Outputs); i++ {
		if tx.Outputs[i].Type == nil {
			continue
		}
		consume.Inputs = append(consume.Inputs, tx.Outputs[i])
		consume.Outputs = append(consume.Outputs, ledger.Cell{
			Capacity: tx.Outputs[i].Capacity,
			Lock:     tx.Outputs[i].Lock,
		})
	}
	return consume
}
