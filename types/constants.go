package types

const (
	// HashLen is the length of the hashes used for scripts, roots and SMT
	// keys
	HashLen = 32
	// ShortDigestLen is the length of the short identity digest that a
	// vote type script carries in its args
	ShortDigestLen = 20
	// MaxLevels indicates the maximum number of levels of the eligibility
	// MerkleTree, where keys are 256 bit lock script hashes
	MaxLevels = 256
)

var (
	// SMTValue is the value that every member of the eligibility
	// MerkleTree maps to: the integer 1, little-endian
	SMTValue = [HashLen]byte{1}
	// EmptyRoot is the root of an empty eligibility MerkleTree
	EmptyRoot = make([]byte, HashLen)
)
