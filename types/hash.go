package types

import "golang.org/x/crypto/blake2b"

// Blake2b256 returns the BLAKE2b-256 hash of the concatenation of the given
// byte slices
func Blake2b256(data ...[]byte) [HashLen]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		// only fails with a key longer than 64 bytes
		panic(err)
	}
	for _, d := range data {
		h.Write(d) //nolint:errcheck
	}
	var out [HashLen]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Blake160 returns the short identity digest of b: the first 20 bytes of its
// BLAKE2b-256 hash
func Blake160(b []byte) [ShortDigestLen]byte {
	h := Blake2b256(b)
	var out [ShortDigestLen]byte
	copy(out[:], h[:ShortDigestLen])
	return out
}
