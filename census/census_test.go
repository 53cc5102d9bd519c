package census

import (
	"errors"
	"testing"

	"github.com/aragon/cellvote/types"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/pebbledb"
)

// NOTE: the tree operations are wrappers over https://github.com/vocdoni/arbo.
// The tests here check the Census lifecycle and the membership proofs with
// the HashVote hash function.

func newTestDB(c *qt.C) db.Database {
	opts := db.Options{Path: c.TempDir()}
	database, err := pebbledb.New(opts)
	c.Assert(err, qt.IsNil)
	return database
}

func newTestCensus(c *qt.C) *Census {
	census, err := New(Options{DB: newTestDB(c)})
	c.Assert(err, qt.IsNil)
	return census
}

func genLockHashes(n int) [][types.HashLen]byte {
	hashes := make([][types.HashLen]byte, n)
	for i := 0; i < n; i++ {
		lock := types.Script{HashType: types.HashTypeType, Args: []byte{byte(i), byte(i >> 8)}}
		hashes[i] = lock.Hash()
	}
	return hashes
}

func TestHashVote(t *testing.T) {
	c := qt.New(t)

	h, err := HashFunctionVote.Hash([]byte("a"), []byte("b"))
	c.Assert(err, qt.IsNil)
	c.Assert(len(h), qt.Equals, HashFunctionVote.Len())

	// the hash is over the concatenation
	h2, err := HashFunctionVote.Hash([]byte("ab"))
	c.Assert(err, qt.IsNil)
	c.Assert(h2, qt.DeepEquals, h)

	// and it is domain separated from the plain BLAKE2b-256
	plain := types.Blake2b256([]byte("ab"))
	c.Assert(h, qt.Not(qt.DeepEquals), plain[:])
}

func TestCensusLifecycle(t *testing.T) {
	c := qt.New(t)
	census := newTestCensus(c)

	info, err := census.Info()
	c.Assert(err, qt.IsNil)
	c.Assert(info.Size, qt.Equals, uint64(0))
	c.Assert(info.Closed, qt.IsFalse)
	c.Assert(info.Root, qt.DeepEquals, types.EmptyRoot)

	hashes := genLockHashes(30)
	invalids, err := census.AddVoters(hashes[:20])
	c.Assert(err, qt.IsNil)
	c.Assert(len(invalids), qt.Equals, 0)
	invalids, err = census.AddVoters(hashes[20:])
	c.Assert(err, qt.IsNil)
	c.Assert(len(invalids), qt.Equals, 0)

	size, err := census.Size()
	c.Assert(err, qt.IsNil)
	c.Assert(size, qt.Equals, uint64(30))

	// proofs and root are only available once closed
	_, err = census.Root()
	c.Assert(err, qt.Equals, ErrCensusNotClosed)
	_, err = census.GenProof(hashes[0])
	c.Assert(err, qt.Equals, ErrCensusNotClosed)

	c.Assert(census.Close(), qt.IsNil)
	c.Assert(census.Close(), qt.Not(qt.IsNil))
	_, err = census.AddVoters(genLockHashes(31)[30:])
	c.Assert(err, qt.Equals, ErrCensusClosed)

	root, err := census.Root()
	c.Assert(err, qt.IsNil)
	info, err = census.Info()
	c.Assert(err, qt.IsNil)
	c.Assert(info.Closed, qt.IsTrue)
	c.Assert(info.Root, qt.DeepEquals, root[:])

	// adding an existing voter again is rejected
	census2 := newTestCensus(c)
	_, err = census2.AddVoters(hashes[:2])
	c.Assert(err, qt.IsNil)
	invalids, err = census2.AddVoters(hashes[1:3])
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(len(invalids), qt.Equals, 1)
}

func TestGenProofAndCheckProof(t *testing.T) {
	c := qt.New(t)
	census := newTestCensus(c)

	nVoters := 50
	hashes := genLockHashes(nVoters + 1)
	members, outsider := hashes[:nVoters], hashes[nVoters]

	_, err := census.AddVoters(members)
	c.Assert(err, qt.IsNil)
	c.Assert(census.Close(), qt.IsNil)
	root, err := census.Root()
	c.Assert(err, qt.IsNil)

	for i := 0; i < nVoters; i++ {
		proof, err := census.GenProof(members[i])
		c.Assert(err, qt.IsNil)

		valid, err := CheckProof(root, proof, members[i])
		c.Assert(err, qt.IsNil)
		c.Assert(valid, qt.IsTrue)

		// the same proof does not prove a non member
		valid, err = CheckProof(root, proof, outsider)
		c.Assert(err, qt.IsNil)
		c.Assert(valid, qt.IsFalse)

		// nor the member against another root
		otherRoot := root
		otherRoot[0] ^= 1
		valid, err = CheckProof(otherRoot, proof, members[i])
		c.Assert(err, qt.IsNil)
		c.Assert(valid, qt.IsFalse)
	}

	_, err = census.GenProof(outsider)
	c.Assert(errors.Is(err, ErrVoterNotFound), qt.IsTrue)
}

func TestCheckProofMalformed(t *testing.T) {
	c := qt.New(t)
	census := newTestCensus(c)

	hashes := genLockHashes(4)
	_, err := census.AddVoters(hashes)
	c.Assert(err, qt.IsNil)
	c.Assert(census.Close(), qt.IsNil)
	root, err := census.Root()
	c.Assert(err, qt.IsNil)
	proof, err := census.GenProof(hashes[0])
	c.Assert(err, qt.IsNil)

	malformed := [][]byte{
		nil,
		{},
		{4, 0},
		// declared length does not match
		append(append([]byte{}, proof...), 0),
		// bitmap length bigger than the proof
		{8, 0, 200, 0, 1, 1, 1, 1},
	}
	for _, p := range malformed {
		valid, err := CheckProof(root, p, hashes[0])
		c.Assert(valid, qt.IsFalse)
		c.Assert(err, qt.Not(qt.IsNil))
	}
}
