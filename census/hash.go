package census

import (
	"github.com/aragon/cellvote/types"
	"github.com/dchest/blake2b"
	"github.com/vocdoni/arbo"
)

// Personalization is the domain separation string of the hash used in the
// eligibility MerkleTree
const Personalization = "ckb-default-hash"

var (
	// TypeHashVote represents the label for the HashFunction of HashVote
	TypeHashVote = []byte("blake2b-ckb")
	// HashFunctionVote contains the HashVote struct which implements the
	// arbo.HashFunction interface
	HashFunctionVote HashVote

	// ensure that HashVote implements the arbo.HashFunction interface
	_ arbo.HashFunction = HashVote{}
)

// HashVote implements the arbo.HashFunction interface with BLAKE2b-256
// personalized with Personalization. The personalization keeps the nodes of
// the eligibility MerkleTree apart from any other BLAKE2b-256 digest.
type HashVote struct{}

// Type returns the type of HashFunction for the HashVote
func (f HashVote) Type() []byte {
	return TypeHashVote
}

// Len returns the length of the Hash output
func (f HashVote) Len() int {
	return types.HashLen
}

// Hash implements the hash method for the HashFunction HashVote
func (f HashVote) Hash(b ...[]byte) ([]byte, error) {
	h, err := blake2b.New(&blake2b.Config{
		Size:   types.HashLen,
		Person: []byte(Personalization),
	})
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(b); i++ {
		if _, err = h.Write(b[i]); err != nil {
			return nil, err
		}
	}
	return h.Sum(nil), nil
}
