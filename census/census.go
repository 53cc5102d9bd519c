// Package census builds the eligibility MerkleTree of a closed ballot, and
// verifies the membership proofs of its voters. A voter is identified by the
// hash of its lock script, which is the key of its leaf, and every leaf has
// the value types.SMTValue.
package census

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/aragon/cellvote/types"
	"github.com/vocdoni/arbo"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/log"
)

var (
	dbKeySize         = []byte("size")
	dbKeyCensusClosed = []byte("censusClosed")
)

var (
	// ErrCensusNotClosed is used when trying to do some action with the Census
	// that needs the Census to be closed
	ErrCensusNotClosed = errors.New("Census not closed yet")
	// ErrCensusClosed is used when trying to add voters to a census and the
	// census is already closed
	ErrCensusClosed = errors.New("Census closed, can not add more voters")
	// ErrVoterNotFound is used when asking for the proof of a voter that is
	// not in the census
	ErrVoterNotFound = errors.New("voter does not exist in the census")
)

// Info contains metadata about a Census
type Info struct {
	Size   uint64 `json:"size"`
	Closed bool   `json:"closed"`
	Root   []byte `json:"root,omitempty"`
}

// Census contains the eligibility MerkleTree of a ballot
type Census struct {
	tree *arbo.Tree
	db   db.Database
}

// Options is used to pass the parameters to load a new Census
type Options struct {
	// DB defines the database that will be used for the census
	DB db.Database
}

// New loads the census
func New(opts Options) (*Census, error) {
	arboConfig := arbo.Config{
		Database:     opts.DB,
		MaxLevels:    types.MaxLevels,
		HashFunction: HashFunctionVote,
	}

	wTx := opts.DB.WriteTx()
	defer wTx.Discard()

	tree, err := arbo.NewTreeWithTx(wTx, arboConfig)
	if err != nil {
		return nil, err
	}

	c := &Census{
		tree: tree,
		db:   opts.DB,
	}

	// if size is not set in the db, initialize it to 0
	if _, err = c.getSize(wTx); err != nil {
		if err = c.setSize(wTx, 0); err != nil {
			return nil, err
		}
		if err := wTx.Set(dbKeyCensusClosed, []byte{0}); err != nil {
			return nil, err
		}
	}

	// commit the db.WriteTx
	if err := wTx.Commit(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Census) setSize(wTx db.WriteTx, size uint64) error {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, size)
	return wTx.Set(dbKeySize, b)
}

func (c *Census) getSize(rTx db.ReadTx) (uint64, error) {
	b, err := rTx.Get(dbKeySize)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Size returns the number of voters added to the Census
func (c *Census) Size() (uint64, error) {
	rTx := c.db.ReadTx()
	defer rTx.Discard()
	return c.getSize(rTx)
}

// Close closes the census. Once closed no more voters can be added, and its
// Root is final.
func (c *Census) Close() error {
	isClosed, err := c.IsClosed()
	if err != nil {
		return err
	}
	if isClosed {
		return fmt.Errorf("Census already closed")
	}
	wTx := c.db.WriteTx()
	defer wTx.Discard()
	if err := wTx.Set(dbKeyCensusClosed, []byte{1}); err != nil {
		return err
	}
	return wTx.Commit()
}

// IsClosed returns true if the census is closed, and false if the census is
// still open
func (c *Census) IsClosed() (bool, error) {
	rTx := c.db.ReadTx()
	defer rTx.Discard()

	b, err := rTx.Get(dbKeyCensusClosed)
	if err != nil {
		return false, err
	}
	return bytes.Equal(b, []byte{1}), nil
}

// Root returns the root of the eligibility MerkleTree if the Census is
// closed. It is the smt_root_hash to publish in the ballot metadata.
func (c *Census) Root() ([types.HashLen]byte, error) {
	var root [types.HashLen]byte
	isClosed, err := c.IsClosed()
	if err != nil {
		return root, err
	}
	if !isClosed {
		return root, ErrCensusNotClosed
	}
	r, err := c.tree.Root()
	if err != nil {
		return root, err
	}
	copy(root[:], r)
	return root, nil
}

// Info returns metadata about the Census
func (c *Census) Info() (*Info, error) {
	size, err := c.Size()
	if err != nil {
		return nil, err
	}
	isClosed, err := c.IsClosed()
	if err != nil {
		return nil, err
	}

	root := types.EmptyRoot
	if isClosed {
		r, err := c.Root()
		if err != nil {
			return nil, err
		}
		root = r[:]
	}

	return &Info{
		Size:   size,
		Closed: isClosed,
		Root:   root,
	}, nil
}

// AddVoters adds the batch of given lock script hashes to the Census
func (c *Census) AddVoters(lockHashes [][types.HashLen]byte) ([]arbo.Invalid, error) {
	isClosed, err := c.IsClosed()
	if err != nil {
		return nil, err
	}
	if isClosed {
		return nil, ErrCensusClosed
	}
	wTx := c.db.WriteTx()
	defer wTx.Discard()

	size, err := c.getSize(wTx)
	if err != nil {
		return nil, err
	}

	keys := make([][]byte, len(lockHashes))
	values := make([][]byte, len(lockHashes))
	for i := 0; i < len(lockHashes); i++ {
		keys[i] = append([]byte{}, lockHashes[i][:]...)
		values[i] = types.SMTValue[:]
	}

	invalids, err := c.tree.AddBatchWithTx(wTx, keys, values)
	if err != nil {
		return invalids, err
	}
	if len(invalids) != 0 {
		return invalids, fmt.Errorf("Can not add %d voters", len(invalids))
	}

	if err = c.setSize(wTx, size+uint64(len(lockHashes))); err != nil {
		return nil, err
	}
	if err := wTx.Commit(); err != nil {
		return nil, err
	}
	log.Debugf("census: added %d voters, size %d", len(lockHashes),
		size+uint64(len(lockHashes)))
	return nil, nil
}

// GenProof returns the compiled MerkleProof of the given voter, to be carried
// in its VoteProof
func (c *Census) GenProof(lockHash [types.HashLen]byte) ([]byte, error) {
	isClosed, err := c.IsClosed()
	if err != nil {
		return nil, err
	}
	if !isClosed {
		// MerkleProofs are generated once the Census is closed for the
		// final root
		return nil, ErrCensusNotClosed
	}

	_, leafV, s, existence, err := c.tree.GenProof(lockHash[:])
	if err != nil {
		return nil, err
	}
	if !existence {
		return nil, fmt.Errorf("%w (%x)", ErrVoterNotFound, lockHash[:])
	}
	if !bytes.Equal(leafV, types.SMTValue[:]) {
		return nil, fmt.Errorf("leafV!=SMTValue: %x!=%x", leafV, types.SMTValue[:])
	}
	return s, nil
}

// minProofLen is the length of the header of a packed list of siblings
const minProofLen = 4

// CheckProof checks that the given compiled MerkleProof proves that lockHash
// maps to types.SMTValue in the tree of the given root. Malformed proofs are
// reported as not valid.
func CheckProof(root [types.HashLen]byte, proof []byte,
	lockHash [types.HashLen]byte) (valid bool, err error) {
	if len(proof) < minProofLen {
		return false, fmt.Errorf("proof of %d bytes", len(proof))
	}
	defer func() {
		// arbo can panic unpacking the siblings of a malformed proof
		if r := recover(); r != nil {
			valid, err = false, fmt.Errorf("malformed proof: %v", r)
		}
	}()
	return arbo.CheckProof(HashFunctionVote, lockHash[:], types.SMTValue[:],
		root[:], proof)
}
