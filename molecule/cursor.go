package molecule

import (
	"encoding/binary"
	"fmt"
)

// Cursor is a window (offset and size) over the data of a source. Cursors are
// cheap to copy, and slicing a Cursor does not read any data.
type Cursor struct {
	offset int
	size   int
	src    *source
}

// NewCursor returns a Cursor over the first total bytes of r, reading through
// a window of cacheSize bytes
func NewCursor(r Reader, total, cacheSize int) Cursor {
	return Cursor{
		offset: 0,
		size:   total,
		src:    newSource(r, total, cacheSize),
	}
}

// FromBytes returns a Cursor over the given bytes
func FromBytes(b []byte) Cursor {
	return NewCursor(SliceReader(b), len(b), 0)
}

// Size returns the number of bytes in the Cursor
func (c Cursor) Size() int {
	return c.size
}

// IsNone returns true when the Cursor is empty, which is how an absent
// option is encoded
func (c Cursor) IsNone() bool {
	return c.size == 0
}

// Slice returns the sub Cursor of the given size starting at the relative
// offset
func (c Cursor) Slice(offset, size int) (Cursor, error) {
	if offset < 0 || size < 0 || offset+size > c.size {
		return Cursor{}, &OutOfBoundError{Offset: offset + size, Total: c.size}
	}
	return Cursor{offset: c.offset + offset, size: size, src: c.src}, nil
}

// ReadAt fills buf with the bytes of the Cursor starting at the relative
// offset
func (c Cursor) ReadAt(buf []byte, offset int) error {
	if offset < 0 || offset+len(buf) > c.size {
		return &OutOfBoundError{Offset: offset + len(buf), Total: c.size}
	}
	return c.src.read(buf, c.offset+offset)
}

// Uint32At reads the little-endian uint32 at the relative offset
func (c Cursor) Uint32At(offset int) (uint32, error) {
	var b [NumberSize]byte
	if err := c.ReadAt(b[:], offset); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// Bytes returns the content of the Cursor. When the Cursor reads from a
// SliceReader the result shares memory with it and must not be modified.
func (c Cursor) Bytes() ([]byte, error) {
	if c.size == 0 {
		return []byte{}, nil
	}
	return c.src.slice(c.offset, c.size)
}

// Byte returns the single byte of a Cursor of size 1
func (c Cursor) Byte() (byte, error) {
	if err := c.expectSize(1); err != nil {
		return 0, err
	}
	var b [1]byte
	if err := c.ReadAt(b[:], 0); err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint32 decodes a Cursor of size 4 as a little-endian uint32
func (c Cursor) Uint32() (uint32, error) {
	if err := c.expectSize(4); err != nil {
		return 0, err
	}
	return c.Uint32At(0)
}

// Uint64 decodes a Cursor of size 8 as a little-endian uint64
func (c Cursor) Uint64() (uint64, error) {
	if err := c.expectSize(8); err != nil { //nolint:gomnd
		return 0, err
	}
	var b [8]byte
	if err := c.ReadAt(b[:], 0); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Array32 returns the content of a Cursor of size 32
func (c Cursor) Array32() ([32]byte, error) {
	var a [32]byte
	if err := c.expectSize(len(a)); err != nil {
		return a, err
	}
	err := c.ReadAt(a[:], 0)
	return a, err
}

func (c Cursor) expectSize(n int) error {
	if c.size != n {
		return fmt.Errorf("%w: expected size %d, got %d", ErrVerify, n, c.size)
	}
	return nil
}

// fixVecLen returns the item count of a fixvec
func (c Cursor) fixVecLen() (int, error) {
	if c.size < NumberSize {
		return 0, fmt.Errorf("%w: fixvec header of %d bytes", ErrVerify, c.size)
	}
	n, err := c.Uint32At(0)
	return int(n), err
}

// offsetsHeader reads the full size and the item count of a dynvec or a
// table. It does not check the offsets themselves.
func (c Cursor) offsetsHeader() (int, error) {
	if c.size < NumberSize {
		return 0, fmt.Errorf("%w: header of %d bytes", ErrVerify, c.size)
	}
	fullSize, err := c.Uint32At(0)
	if err != nil {
		return 0, err
	}
	if int(fullSize) != c.size {
		return 0, fmt.Errorf("%w: full size %d, available %d", ErrVerify,
			fullSize, c.size)
	}
	if c.size == NumberSize {
		return 0, nil
	}
	first, err := c.Uint32At(NumberSize)
	if err != nil {
		return 0, err
	}
	if first%NumberSize != 0 || first < 2*NumberSize || int(first) > c.size {
		return 0, fmt.Errorf("%w: first offset %d", ErrVerify, first)
	}
	return int(first)/NumberSize - 1, nil
}

// itemByOffsets slices the item i of a dynvec or table with count items
func (c Cursor) itemByOffsets(i, count int) (Cursor, error) {
	if i < 0 || i >= count {
		return Cursor{}, &OutOfBoundError{Offset: i, Total: count}
	}
	start, err := c.Uint32At(NumberSize * (i + 1))
	if err != nil {
		return Cursor{}, err
	}
	end := uint32(c.size)
	if i+1 < count {
		end, err = c.Uint32At(NumberSize * (i + 2))
		if err != nil {
			return Cursor{}, err
		}
	}
	if start > end {
		return Cursor{}, fmt.Errorf("%w: offset %d after %d", ErrVerify, start, end)
	}
	return c.Slice(int(start), int(end-start))
}
