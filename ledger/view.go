package ledger

import (
	"errors"

	"github.com/aragon/cellvote/molecule"
	"github.com/aragon/cellvote/types"
)

// View is the access to the transaction being validated, and to the cells it
// consumes, creates and references. Every accessor returns ErrIndexOutOfBound
// for an index past the end of the source.
type View interface {
	// CurrentScript returns the script that is running
	CurrentScript() (types.Script, error)
	// CellType returns the type script of the cell, or nil when the cell
	// has none
	CellType(index int, source Source) (*types.Script, error)
	// CellLockHash returns the hash of the lock script of the cell
	CellLockHash(index int, source Source) ([types.HashLen]byte, error)
	// LoadCellData copies the data of the cell starting at offset into
	// buf, and returns the length of the data available from offset,
	// which is bigger than len(buf) when buf is too small
	LoadCellData(buf []byte, offset, index int, source Source) (int, error)
	// LoadWitness works as LoadCellData, over the witness at the given
	// index. For group sources the index is translated to the witness of
	// the cell at that index in the group.
	LoadWitness(buf []byte, offset, index int, source Source) (int, error)
	// DependencyHandle returns the bytes that locate the cell dependency
	// at the given index: its encoded OutPoint
	DependencyHandle(index int) ([]byte, error)
}

type loadFunc func(buf []byte, offset int) (int, error)

// loadSize probes the length of a host resource. A host failure here keeps
// its kind, so a missing witness or cell ends with the host exit code instead
// of the decode error of a failure in the middle of a read.
func loadSize(load loadFunc) (int, error) {
	var buf [molecule.NumberSize]byte
	n, err := load(buf[:], 0)
	var se *SysError
	if errors.As(err, &se) && se.Kind == KindLengthNotEnough {
		return se.Len, nil
	}
	return n, err
}

// hostReader adapts a host accessor to a molecule.Reader
type hostReader struct {
	load  loadFunc
	total int
}

// Read implements the molecule.Reader interface. A LengthNotEnough from the
// host means that buf was filled, and any other host failure in the middle
// of a decode is an out of bound read.
func (r *hostReader) Read(buf []byte, offset int) (int, error) {
	if offset >= r.total {
		return 0, &molecule.OutOfBoundError{Offset: offset, Total: r.total}
	}
	n, err := r.load(buf, offset)
	if err != nil {
		var se *SysError
		if errors.As(err, &se) && se.Kind == KindLengthNotEnough {
			return len(buf), nil
		}
		return 0, &molecule.OutOfBoundError{Offset: 0, Total: 0}
	}
	return n, nil
}

func newCursor(load loadFunc, cacheSize int) (molecule.Cursor, error) {
	total, err := loadSize(load)
	if err != nil {
		return molecule.Cursor{}, err
	}
	return molecule.NewCursor(&hostReader{load: load, total: total}, total, cacheSize), nil
}

// CellDataCursor returns a molecule.Cursor over the data of the cell, reading
// it lazily through the View
func CellDataCursor(v View, index int, source Source, cacheSize int) (molecule.Cursor, error) {
	return newCursor(func(buf []byte, offset int) (int, error) {
		return v.LoadCellData(buf, offset, index, source)
	}, cacheSize)
}

// WitnessCursor returns a molecule.Cursor over the witness, reading it lazily
// through the View
func WitnessCursor(v View, index int, source Source, cacheSize int) (molecule.Cursor, error) {
	return newCursor(func(buf []byte, offset int) (int, error) {
		return v.LoadWitness(buf, offset, index, source)
	}, cacheSize)
}

// LoadCellData returns the whole data of the cell. It is meant for small
// payloads; records should be read through CellDataCursor.
func LoadCellData(v View, index int, source Source) ([]byte, error) {
	load := func(buf []byte, offset int) (int, error) {
		return v.LoadCellData(buf, offset, index, source)
	}
	size, err := loadSize(load)
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	if size == 0 {
		return data, nil
	}
	n, err := load(data, 0)
	var se *SysError
	if errors.As(err, &se) && se.Kind == KindLengthNotEnough {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if n < size {
		return data[:n], nil
	}
	return data, nil
}
