package validator

import (
	"errors"
	"fmt"

	"github.com/aragon/cellvote/ledger"
	"github.com/aragon/cellvote/types"
)

// TxKind is the role of a transaction for the vote cells of the script
type TxKind uint8

const (
	// TxCreation creates vote cells, which is a vote cast
	TxCreation TxKind = iota
	// TxConsumption consumes vote cells
	TxConsumption
)

func (k TxKind) String() string {
	if k == TxConsumption {
		return "consumption"
	}
	return "creation"
}

// countCode returns the number of cells of the source whose type script runs
// the code of script
func countCode(v ledger.View, script types.Script, source ledger.Source) (int, error) {
	n := 0
	for i := 0; ; i++ {
		typ, err := v.CellType(i, source)
		if errors.Is(err, ledger.ErrIndexOutOfBound) {
			return n, nil
		}
		if err != nil {
			return 0, fmt.Errorf("%s %d type: %w", source, i, err)
		}
		if typ != nil && typ.SameCode(script) {
			n++
		}
	}
}

// Classify returns the kind of the transaction for the running script. A
// transaction that both consumes and creates cells of the script is rejected
// with ErrWrongTxType.
func Classify(v ledger.View, script types.Script) (TxKind, error) {
	inputs, err := countCode(v, script, ledger.SourceInput)
	if err != nil {
		return 0, err
	}
	outputs, err := countCode(v, script, ledger.SourceOutput)
	if err != nil {
		return 0, err
	}
	switch {
	case inputs > 0 && outputs > 0:
		return 0, fmt.Errorf("%w (%d inputs, %d outputs)", ErrWrongTxType, inputs, outputs)
	case inputs > 0:
		return TxConsumption, nil
	}
	return TxCreation, nil
}
