// Package molecule implements a lazy, zero-copy reader for the Molecule binary
// format. Values are read through a Reader on demand, and only the parts of a
// record that are accessed are fetched and verified.
package molecule

import (
	"errors"
	"fmt"
)

const (
	// NumberSize is the size in bytes of the length, size and offset words
	// of the format
	NumberSize = 4
	// DefaultCacheSize is the size of the read window shared by all the
	// Cursors of a source
	DefaultCacheSize = 2048
)

var (
	// ErrVerify is returned when a value does not match the Layout it is
	// read with
	ErrVerify = errors.New("molecule: verification failed")
	// ErrShortRead is returned when a Reader returns less bytes than the
	// ones that the source declared to have
	ErrShortRead = errors.New("molecule: short read")
)

// OutOfBoundError is returned when a slice or an index exceeds the bounds of
// the value it refers to
type OutOfBoundError struct {
	Offset int
	Total  int
}

func (e *OutOfBoundError) Error() string {
	return fmt.Sprintf("molecule: out of bound, offset: %d, total size: %d",
		e.Offset, e.Total)
}

// Reader is implemented by the data sources that a Cursor reads from. Read
// copies into buf the bytes starting at offset, and returns the number of
// bytes available from offset. The returned number can be bigger than len(buf)
// when buf is not big enough to hold the remaining data; that is not an error,
// and only len(buf) bytes are copied in that case.
type Reader interface {
	Read(buf []byte, offset int) (int, error)
}

// SliceReader is a Reader over an in-memory byte slice. Cursors over a
// SliceReader return sub-slices of it instead of copies.
type SliceReader []byte

// Read implements the Reader interface
func (s SliceReader) Read(buf []byte, offset int) (int, error) {
	if offset > len(s) {
		return 0, &OutOfBoundError{Offset: offset, Total: len(s)}
	}
	copy(buf, s[offset:])
	return len(s) - offset, nil
}

// source holds the Reader shared by the Cursors derived from the same root
// Cursor, together with a bounded read window
type source struct {
	r     Reader
	total int

	cache      []byte
	cacheStart int
	cacheLen   int
}

func newSource(r Reader, total, cacheSize int) *source {
	if cacheSize < 0 {
		cacheSize = 0
	}
	if _, ok := r.(SliceReader); ok {
		// in-memory data does not need a window
		cacheSize = 0
	}
	return &source{
		r:     r,
		total: total,
		cache: make([]byte, cacheSize),
	}
}

// read fills buf with the bytes at the given absolute offset
func (s *source) read(buf []byte, offset int) error {
	if len(buf) == 0 {
		return nil
	}
	if offset >= s.total || offset+len(buf) > s.total {
		return &OutOfBoundError{Offset: offset, Total: s.total}
	}
	if offset >= s.cacheStart && offset+len(buf) <= s.cacheStart+s.cacheLen {
		copy(buf, s.cache[offset-s.cacheStart:])
		return nil
	}
	if len(buf) > len(s.cache) {
		return s.fetch(buf, offset)
	}

	// move the window to start at offset
	n := len(s.cache)
	if offset+n > s.total {
		n = s.total - offset
	}
	if err := s.fetch(s.cache[:n], offset); err != nil {
		s.cacheLen = 0
		return err
	}
	s.cacheStart = offset
	s.cacheLen = n
	copy(buf, s.cache[:n])
	return nil
}

func (s *source) fetch(buf []byte, offset int) error {
	n, err := s.r.Read(buf, offset)
	if err != nil {
		return err
	}
	if n < len(buf) {
		return fmt.Errorf("%w: wanted %d bytes at offset %d, got %d",
			ErrShortRead, len(buf), offset, n)
	}
	return nil
}

// slice returns the bytes at the given absolute offset. For a SliceReader the
// returned slice aliases the underlying data.
func (s *source) slice(offset, size int) ([]byte, error) {
	if sr, ok := s.r.(SliceReader); ok {
		if offset+size > len(sr) {
			return nil, &OutOfBoundError{Offset: offset + size, Total: len(sr)}
		}
		return sr[offset : offset+size : offset+size], nil
	}
	b := make([]byte, size)
	if err := s.read(b, offset); err != nil {
		return nil, err
	}
	return b, nil
}
