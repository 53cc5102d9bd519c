package ledger

import "fmt"

// ErrorKind is the closed set of failures of the host accessors
type ErrorKind uint8

const (
	// KindIndexOutOfBound is returned when the index is past the end of
	// the source. It is how iterations over a source end.
	KindIndexOutOfBound ErrorKind = iota + 1
	// KindItemMissing is returned when the requested item does not exist
	KindItemMissing
	// KindLengthNotEnough is returned when the buffer is smaller than the
	// data. It reports the real length, and it is not a failure for the
	// readers of this package.
	KindLengthNotEnough
	// KindEncoding is returned when the host data is not well encoded
	KindEncoding
	// KindWaitFailure is returned when the host fails waiting on a child
	KindWaitFailure
	// KindOther is any other host failure
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindIndexOutOfBound:
		return "IndexOutOfBound"
	case KindItemMissing:
		return "ItemMissing"
	case KindLengthNotEnough:
		return "LengthNotEnough"
	case KindEncoding:
		return "Encoding"
	case KindWaitFailure:
		return "WaitFailure"
	case KindOther:
		return "Other"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// SysError is a failure reported by the host
type SysError struct {
	Kind ErrorKind
	// Len is the real length of the data for KindLengthNotEnough
	Len int
}

func (e *SysError) Error() string {
	if e.Kind == KindLengthNotEnough {
		return fmt.Sprintf("host: %s (%d)", e.Kind, e.Len)
	}
	return fmt.Sprintf("host: %s", e.Kind)
}

// Is matches SysErrors by Kind
func (e *SysError) Is(target error) bool {
	t, ok := target.(*SysError)
	return ok && t.Kind == e.Kind
}

var (
	// ErrIndexOutOfBound matches the errors of KindIndexOutOfBound
	ErrIndexOutOfBound = &SysError{Kind: KindIndexOutOfBound}
	// ErrItemMissing matches the errors of KindItemMissing
	ErrItemMissing = &SysError{Kind: KindItemMissing}
	// ErrEncoding matches the errors of KindEncoding
	ErrEncoding = &SysError{Kind: KindEncoding}
	// ErrWaitFailure matches the errors of KindWaitFailure
	ErrWaitFailure = &SysError{Kind: KindWaitFailure}
	// ErrOther matches the errors of KindOther
	ErrOther = &SysError{Kind: KindOther}
)

// LengthNotEnough returns the KindLengthNotEnough error for data of length n
func LengthNotEnough(n int) error {
	return &SysError{Kind: KindLengthNotEnough, Len: n}
}
