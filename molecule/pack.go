package molecule

import "encoding/binary"

// PackUint32 encodes v as a little-endian Uint32
func PackUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// PackUint64 encodes v as a little-endian Uint64
func PackUint64(v uint64) []byte {
	b := make([]byte, 8) //nolint:gomnd
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// PackBytes encodes b as Bytes (a fixvec of bytes)
func PackBytes(b []byte) []byte {
	return PackFixVec(len(b), b)
}

// PackFixVec encodes a fixvec of n items, given the concatenation of the
// encoded items
func PackFixVec(n int, items []byte) []byte {
	out := make([]byte, 0, NumberSize+len(items))
	out = append(out, PackUint32(uint32(n))...)
	return append(out, items...)
}

// PackOption encodes an option: a nil b is None, any other value is encoded
// as is
func PackOption(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// PackDynVec encodes a dynvec with the given encoded items
func PackDynVec(items ...[]byte) []byte {
	return packOffsets(items)
}

// PackTable encodes a table with the given encoded fields
func PackTable(fields ...[]byte) []byte {
	return packOffsets(fields)
}

func packOffsets(items [][]byte) []byte {
	header := NumberSize * (len(items) + 1)
	size := header
	for _, it := range items {
		size += len(it)
	}
	out := make([]byte, 0, size)
	out = append(out, PackUint32(uint32(size))...)
	off := header
	for _, it := range items {
		out = append(out, PackUint32(uint32(off))...)
		off += len(it)
	}
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}
