package validator

import (
	"errors"
	"fmt"

	"github.com/aragon/cellvote/ledger"
	"github.com/aragon/cellvote/types"
)

var (
	// ErrDecode is returned when a record read by the validator is not well
	// encoded
	ErrDecode = errors.New("decode error")
	// ErrWrongTxType is returned when the transaction both consumes and
	// creates vote cells
	ErrWrongTxType = errors.New("transaction consumes and creates vote cells")
	// ErrWrongArgs is returned when the script args are not a short digest
	ErrWrongArgs = errors.New("script args are not a short digest")
	// ErrNoMetaCell is returned when no cell dependency matches the script
	// args
	ErrNoMetaCell = errors.New("no vote metadata cell dependency")
	// ErrWrongHashSize is returned when a hash of a record does not have
	// types.HashLen bytes
	ErrWrongHashSize = types.ErrWrongHashSize
	// ErrVerifySmtFail is returned when the voter is not proven to be in the
	// eligibility MerkleTree
	ErrVerifySmtFail = errors.New("membership proof verification failed")
	// ErrNoLockFound is returned when no input is locked by the voter
	ErrNoLockFound = errors.New("voter lock not found in the inputs")
	// ErrWrongVoteCandidate is returned when the vote does not select a
	// valid candidate
	ErrWrongVoteCandidate = errors.New("wrong vote candidate")
)

// Exit codes of the validation, which are read by the off-chain tooling
const (
	CodeSuccess            int8 = 0
	CodeIndexOutOfBound    int8 = 21
	CodeItemMissing        int8 = 22
	CodeLengthNotEnough    int8 = 23
	CodeEncoding           int8 = 24
	CodeWaitFailure        int8 = 25
	CodeOther              int8 = 27
	CodeDecode             int8 = 51
	CodeWrongTxType        int8 = 52
	CodeWrongArgs          int8 = 53
	CodeNoMetaCell         int8 = 54
	CodeWrongHashSize      int8 = 55
	CodeVerifySmtFail      int8 = 56
	CodeNoLockFound        int8 = 57
	CodeWrongVoteCandidate int8 = 58
)

var codes = []struct {
	err  error
	code int8
}{
	{ErrDecode, CodeDecode},
	{ErrWrongTxType, CodeWrongTxType},
	{ErrWrongArgs, CodeWrongArgs},
	{ErrNoMetaCell, CodeNoMetaCell},
	{ErrWrongHashSize, CodeWrongHashSize},
	{ErrVerifySmtFail, CodeVerifySmtFail},
	{ErrNoLockFound, CodeNoLockFound},
	{ErrWrongVoteCandidate, CodeWrongVoteCandidate},
}

var hostCodes = map[ledger.ErrorKind]int8{
	ledger.KindIndexOutOfBound: CodeIndexOutOfBound,
	ledger.KindItemMissing:     CodeItemMissing,
	ledger.KindLengthNotEnough: CodeLengthNotEnough,
	ledger.KindEncoding:        CodeEncoding,
	ledger.KindWaitFailure:     CodeWaitFailure,
	ledger.KindOther:           CodeOther,
}

// ExitCode returns the exit code of the result of a validation
func ExitCode(err error) int8 {
	if err == nil {
		return CodeSuccess
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	var se *ledger.SysError
	if errors.As(err, &se) {
		if code, ok := hostCodes[se.Kind]; ok {
			return code
		}
	}
	return CodeOther
}

// decodeErr classifies an error returned while reading a record. Host
// failures and hash size errors keep their own kind, anything else is a
// decode error.
func decodeErr(what string, err error) error {
	var se *ledger.SysError
	if errors.As(err, &se) || errors.Is(err, ErrWrongHashSize) {
		return fmt.Errorf("%s: %w", what, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrDecode, what, err)
}
