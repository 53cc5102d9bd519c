package validator

import (
	"errors"
	"fmt"

	"github.com/aragon/cellvote/ledger"
	"github.com/aragon/cellvote/types"
)

// LocateMeta returns the index of the first cell dependency whose short
// digest of its OutPoint is equal to args
func LocateMeta(v ledger.View, args []byte) (int, error) {
	if len(args) != types.ShortDigestLen {
		return 0, fmt.Errorf("%w: %d bytes", ErrWrongArgs, len(args))
	}
	var id [types.ShortDigestLen]byte
	copy(id[:], args)
	for i := 0; ; i++ {
		handle, err := v.DependencyHandle(i)
		if errors.Is(err, ledger.ErrIndexOutOfBound) {
			return 0, fmt.Errorf("%w (%x)", ErrNoMetaCell, args)
		}
		if err != nil {
			return 0, fmt.Errorf("cell_dep %d: %w", i, err)
		}
		if types.Blake160(handle) == id {
			return i, nil
		}
	}
}

// LoadMeta locates the ballot metadata of the script args and returns the
// verified view over it
func LoadMeta(v ledger.View, args []byte, cacheSize int) (types.VoteMeta, error) {
	i, err := LocateMeta(v, args)
	if err != nil {
		return types.VoteMeta{}, err
	}
	cur, err := ledger.CellDataCursor(v, i, ledger.SourceCellDep, cacheSize)
	if err != nil {
		return types.VoteMeta{}, fmt.Errorf("vote meta: %w", err)
	}
	meta, err := types.NewVoteMeta(cur, false)
	if err != nil {
		return types.VoteMeta{}, decodeErr("vote meta", err)
	}
	return meta, nil
}
