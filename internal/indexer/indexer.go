// Copyright 2023 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package indexer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/powd/internal/header"
	"github.com/blinklabs-io/powd/internal/logging"
	"github.com/blinklabs-io/powd/internal/metrics"
	"github.com/blinklabs-io/powd/internal/state"
	"github.com/blinklabs-io/powd/pow"
)

var (
	ErrBadProofOfWork    = errors.New("header hash does not satisfy its target")
	ErrUnexpectedBits    = errors.New("header bits differ from the required bits")
	ErrIllegalTransition = errors.New("illegal difficulty transition")
	ErrNotConnected      = errors.New("header does not connect to the chain tip")
	ErrGenesisMismatch   = errors.New("genesis header hash mismatch")
)

// RejectError carries the metrics reason for a rejected header alongside
// the underlying error
type RejectError struct {
	Height int64
	Reason string
	Err    error
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("rejected header at height %d: %s", e.Height, e.Err)
}

func (e *RejectError) Unwrap() error {
	return e.Err
}

type Indexer struct {
	sync.Mutex
	state   *state.State
	params  pow.Params
	metrics *metrics.Metrics
}

func New(s *state.State, params pow.Params, m *metrics.Metrics) *Indexer {
	return &Indexer{
		state:   s,
		params:  params,
		metrics: m,
	}
}

func (i *Indexer) Params() pow.Params {
	return i.params
}

// Accept validates a header against the chain tip and stores it. It returns
// the height the header was stored at.
func (i *Indexer) Accept(hdr *header.BlockHeader) (int64, error) {
	i.Lock()
	defer i.Unlock()
	height, err := i.accept(hdr)
	if err != nil {
		var rejectErr *RejectError
		if errors.As(err, &rejectErr) {
			i.metrics.HeaderRejected(rejectErr.Reason)
		}
		return 0, err
	}
	i.metrics.HeaderAccepted(height)
	logging.GetLogger().Debugf(
		"accepted header %s at height %d (bits %08x)",
		hdr.Hash(),
		height,
		hdr.Bits,
	)
	return height, nil
}

func (i *Indexer) accept(hdr *header.BlockHeader) (int64, error) {
	tipHeight, tip, err := i.state.Tip()
	if err != nil {
		if !errors.Is(err, state.ErrHeaderNotFound) {
			return 0, err
		}
		if err := i.checkGenesis(hdr); err != nil {
			return 0, err
		}
		if err := i.state.PutHeader(0, hdr); err != nil {
			return 0, err
		}
		return 0, nil
	}
	height := tipHeight + 1
	if pow.Hash(hdr.PrevBlock) != tip.Hash() {
		return 0, &RejectError{
			Height: height,
			Reason: metrics.ReasonNotConnect,
			Err: fmt.Errorf(
				"%w: prev block %s, tip %s",
				ErrNotConnected,
				pow.Hash(hdr.PrevBlock),
				tip.Hash(),
			),
		}
	}
	last, err := i.state.Chain(tipHeight)
	if err != nil {
		return 0, err
	}
	if err := i.checkHeader(last, hdr); err != nil {
		return 0, err
	}
	if err := i.state.PutHeader(height, hdr); err != nil {
		return 0, err
	}
	return height, nil
}

func (i *Indexer) checkGenesis(hdr *header.BlockHeader) error {
	hash := hdr.Hash()
	if i.params.GenesisHash != "" {
		expected, err := pow.NewHashFromString(i.params.GenesisHash)
		if err != nil {
			return fmt.Errorf("invalid genesis hash: %w", err)
		}
		if hash != expected {
			return &RejectError{
				Reason: metrics.ReasonGenesis,
				Err: fmt.Errorf(
					"%w: got %s, want %s",
					ErrGenesisMismatch,
					hash,
					expected,
				),
			}
		}
	}
	return i.checkProofOfWork(0, hdr)
}

func (i *Indexer) checkProofOfWork(height int64, hdr *header.BlockHeader) error {
	hash := hdr.Hash()
	ok := pow.CheckProofOfWork(hash, hdr.Bits, &i.params)
	i.metrics.ObserveProofOfWork(ok)
	if !ok {
		return &RejectError{
			Height: height,
			Reason: metrics.ReasonPow,
			Err: fmt.Errorf(
				"%w: hash %s, bits %08x",
				ErrBadProofOfWork,
				hash,
				hdr.Bits,
			),
		}
	}
	return nil
}

// checkHeader runs the consensus difficulty checks for a header following
// last
func (i *Indexer) checkHeader(last pow.HeaderChain, hdr *header.BlockHeader) error {
	height := last.Height() + 1
	if err := i.checkProofOfWork(height, hdr); err != nil {
		return err
	}
	algorithm := pow.AlgorithmAt(last.Height(), &i.params)
	i.metrics.ObserveRetarget(algorithm)
	required := pow.NextRequiredBits(last, hdr.Timestamp(), &i.params)
	if hdr.Bits != required {
		return &RejectError{
			Height: height,
			Reason: metrics.ReasonBits,
			Err: fmt.Errorf(
				"%w: got %08x, want %08x (%s)",
				ErrUnexpectedBits,
				hdr.Bits,
				required,
				algorithm,
			),
		}
	}
	// The transition bounds only describe the legacy schedule
	if algorithm == pow.AlgorithmLegacy &&
		!pow.IsPermittedTransition(&i.params, height, last.Bits(), hdr.Bits) {
		return &RejectError{
			Height: height,
			Reason: metrics.ReasonTransition,
			Err: fmt.Errorf(
				"%w: %08x to %08x",
				ErrIllegalTransition,
				last.Bits(),
				hdr.Bits,
			),
		}
	}
	return nil
}

// NextRequiredBits returns the bits required of a block following the chain
// tip with the given timestamp
func (i *Indexer) NextRequiredBits(candidateTime int64) (uint32, pow.Algorithm, error) {
	i.Lock()
	defer i.Unlock()
	tipHeight, _, err := i.state.Tip()
	if err != nil {
		return 0, 0, err
	}
	last, err := i.state.Chain(tipHeight)
	if err != nil {
		return 0, 0, err
	}
	algorithm := pow.AlgorithmAt(tipHeight, &i.params)
	i.metrics.ObserveRetarget(algorithm)
	return pow.NextRequiredBits(last, candidateTime, &i.params), algorithm, nil
}
