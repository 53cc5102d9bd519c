// Package validator implements the vote type script: the predicate that
// decides whether a transaction may consume or create vote cells.
//
// A transaction that consumes vote cells is always valid. A transaction that
// creates vote cells has to reference the ballot metadata as a cell
// dependency, whose OutPoint short digest is the args of the script, and each
// created vote cell is checked against it: the voter has to be in the census
// of the ballot when it has one, the voter lock has to be in the inputs, and
// the vote has to select valid candidates. The first failing vote cell
// rejects the whole transaction.
package validator

import (
	"errors"
	"fmt"

	"github.com/aragon/cellvote/ledger"
	"github.com/aragon/cellvote/molecule"
	"go.vocdoni.io/dvote/log"
)

// Options is used to pass the parameters to the Validator
type Options struct {
	// Encoding is the encoding of the votes
	Encoding Encoding
	// CacheSize is the size of the read window of the record decoders. If
	// 0, molecule.DefaultCacheSize is used.
	CacheSize int
}

// Validator validates a transaction through its ledger.View. A Validator
// holds no state between validations.
type Validator struct {
	view ledger.View
	opts Options
}

// New returns a Validator over the given view
func New(view ledger.View, opts Options) *Validator {
	if opts.CacheSize <= 0 {
		opts.CacheSize = molecule.DefaultCacheSize
	}
	return &Validator{view: view, opts: opts}
}

// Validate runs the validation of the transaction, returning nil when it is
// valid. ExitCode maps the returned error to the exit code of the script.
func (v *Validator) Validate() error {
	script, err := v.view.CurrentScript()
	if err != nil {
		return fmt.Errorf("current script: %w", err)
	}
	kind, err := Classify(v.view, script)
	if err != nil {
		return err
	}
	log.Debugf("transaction kind: %s", kind)
	if kind == TxConsumption {
		return nil
	}

	meta, err := LoadMeta(v.view, script.Args, v.opts.CacheSize)
	if err != nil {
		return err
	}
	root, closed, err := meta.SMTRootHash()
	if err != nil {
		return decodeErr("smt_root_hash", err)
	}
	log.Debugf("ballot: closed census %t, root %x", closed, root[:])

	for i := 0; ; i++ {
		if _, err := v.view.CellType(i, ledger.SourceGroupOutput); err != nil {
			if errors.Is(err, ledger.ErrIndexOutOfBound) {
				log.Debugf("%d votes validated", i)
				return nil
			}
			return fmt.Errorf("vote %d: %w", i, err)
		}
		if err := v.checkVote(i, meta, root, closed); err != nil {
			return err
		}
	}
}

// Validate validates the transaction of the view with the given options
func Validate(view ledger.View, opts Options) error {
	return New(view, opts).Validate()
}
