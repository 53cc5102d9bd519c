package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aragon/cellvote/census"
	"github.com/aragon/cellvote/ledger"
	"github.com/aragon/cellvote/types"
	"go.vocdoni.io/dvote/log"
)

// Encoding is the interpretation of the data of a vote cell
type Encoding uint8

const (
	// SingleChoice votes are one byte with the index of the candidate
	SingleChoice Encoding = iota
	// Bitmask votes are ceil(candidates/8) bytes where the bit i, in little
	// endian order, selects the candidate i. At least one candidate has to
	// be selected.
	Bitmask
)

func (e Encoding) String() string {
	switch e {
	case SingleChoice:
		return "single"
	case Bitmask:
		return "bitmask"
	}
	return fmt.Sprintf("Encoding(%d)", uint8(e))
}

// ParseEncoding returns the Encoding of the given name
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "single", "":
		return SingleChoice, nil
	case "bitmask":
		return Bitmask, nil
	}
	return 0, fmt.Errorf("unknown vote encoding %q", s)
}

// checkVoteSize checks the payload length that does not depend on the number
// of candidates
func checkVoteSize(vote []byte, enc Encoding) error {
	if enc == SingleChoice && len(vote) != 1 {
		return fmt.Errorf("%w: vote of %d bytes", ErrWrongVoteCandidate, len(vote))
	}
	return nil
}

// CheckCandidate checks that the vote payload selects valid candidates out of
// count
func CheckCandidate(vote []byte, count int, enc Encoding) error {
	switch enc {
	case SingleChoice:
		if err := checkVoteSize(vote, enc); err != nil {
			return err
		}
		if int(vote[0]) >= count {
			return fmt.Errorf("%w: candidate %d, %d candidates",
				ErrWrongVoteCandidate, vote[0], count)
		}
		return nil
	case Bitmask:
		if len(vote) != (count+7)/8 { //nolint:gomnd
			return fmt.Errorf("%w: vote of %d bytes, %d candidates",
				ErrWrongVoteCandidate, len(vote), count)
		}
		selected := 0
		for i := 0; i < len(vote)*8; i++ {
			if vote[i/8]&(1<<(uint(i)%8)) == 0 {
				continue
			}
			if i >= count {
				return fmt.Errorf("%w: candidate %d, %d candidates",
					ErrWrongVoteCandidate, i, count)
			}
			selected++
		}
		if selected == 0 {
			return fmt.Errorf("%w: no candidate selected", ErrWrongVoteCandidate)
		}
		return nil
	}
	return fmt.Errorf("unknown vote encoding %d", enc)
}

// loadVoteProof returns the VoteProof carried in the output_type of the
// witness of the vote cell i of the group
func (v *Validator) loadVoteProof(i int) (types.VoteProof, error) {
	cur, err := ledger.WitnessCursor(v.view, i, ledger.SourceGroupOutput, v.opts.CacheSize)
	if err != nil {
		return types.VoteProof{}, fmt.Errorf("witness %d: %w", i, err)
	}
	witness, err := types.NewWitnessArgs(cur, false)
	if err != nil {
		return types.VoteProof{}, decodeErr(fmt.Sprintf("witness %d", i), err)
	}
	outputType, ok, err := witness.OutputType()
	if err != nil {
		return types.VoteProof{}, decodeErr(fmt.Sprintf("witness %d", i), err)
	}
	if !ok {
		return types.VoteProof{}, fmt.Errorf("%w: witness %d: no output_type", ErrDecode, i)
	}
	proof, err := types.NewVoteProof(outputType, false)
	if err != nil {
		return types.VoteProof{}, decodeErr(fmt.Sprintf("vote proof %d", i), err)
	}
	return proof, nil
}

// hasInputLock returns true when some input of the transaction is locked by
// the lock script of the given hash
func (v *Validator) hasInputLock(lockHash [types.HashLen]byte) (bool, error) {
	for i := 0; ; i++ {
		h, err := v.view.CellLockHash(i, ledger.SourceInput)
		if errors.Is(err, ledger.ErrIndexOutOfBound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("input %d lock: %w", i, err)
		}
		if h == lockHash {
			return true, nil
		}
	}
}

// checkVote validates the vote cell i of the group: the membership of the
// voter when the ballot has a census, the presence of the voter lock in the
// inputs, and the selected candidates. The candidates of the ballot are only
// read once the vote payload has the expected size.
func (v *Validator) checkVote(i int, meta types.VoteMeta, root [types.HashLen]byte,
	closed bool) error {
	proof, err := v.loadVoteProof(i)
	if err != nil {
		return err
	}
	lockHash, err := proof.LockScriptHash()
	if err != nil {
		return decodeErr(fmt.Sprintf("vote proof %d", i), err)
	}

	if closed {
		smtProof, err := proof.SMTProof()
		if err != nil {
			return decodeErr(fmt.Sprintf("vote proof %d", i), err)
		}
		valid, err := census.CheckProof(root, smtProof, lockHash)
		if err != nil {
			return fmt.Errorf("%w: vote %d, voter %x: %v", ErrVerifySmtFail, i,
				lockHash[:], err)
		}
		if !valid {
			return fmt.Errorf("%w: vote %d, voter %x", ErrVerifySmtFail, i, lockHash[:])
		}
	}

	found, err := v.hasInputLock(lockHash)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: vote %d, voter %x", ErrNoLockFound, i, lockHash[:])
	}

	vote, err := ledger.LoadCellData(v.view, i, ledger.SourceGroupOutput)
	if err != nil {
		return fmt.Errorf("vote %d data: %w", i, err)
	}
	if err := checkVoteSize(vote, v.opts.Encoding); err != nil {
		return fmt.Errorf("vote %d: %w", i, err)
	}
	candidates, err := meta.CandidateCount()
	if err != nil {
		return decodeErr("candidates", err)
	}
	if err := CheckCandidate(vote, candidates, v.opts.Encoding); err != nil {
		return fmt.Errorf("vote %d: %w", i, err)
	}
	log.Debugf("vote %d: voter %x, vote %x", i, lockHash[:], vote)
	return nil
}
