// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package state

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/blinklabs-io/powd/arith"
	"github.com/blinklabs-io/powd/internal/config"
	"github.com/blinklabs-io/powd/internal/header"
	"github.com/blinklabs-io/powd/internal/logging"
	"github.com/blinklabs-io/powd/pow"
)

const (
	chainTipKey     = "chain_tip"
	headerKeyPrefix = "header_"
	// Serialized header followed by the big-endian cumulative chain work
	headerRecordSize = header.BlockHeaderSize + 32
)

var ErrHeaderNotFound = errors.New("header not found")

type State struct {
	db *badger.DB
}

var globalState = &State{}

// Load opens the header index in the configured state directory
func (s *State) Load() error {
	cfg := config.GetConfig()
	return s.open(
		badger.DefaultOptions(cfg.State.Directory),
	)
}

// Open returns a header index stored in the given directory
func Open(dir string) (*State, error) {
	s := &State{}
	if err := s.open(badger.DefaultOptions(dir)); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenInMemory returns a header index that is discarded on Close
func OpenInMemory() (*State, error) {
	s := &State{}
	if err := s.open(badger.DefaultOptions("").WithInMemory(true)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *State) open(badgerOpts badger.Options) error {
	badgerOpts = badgerOpts.
		WithLogger(NewBadgerLogger()).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return fmt.Errorf("open header index: %w", err)
	}
	s.db = db
	return nil
}

func (s *State) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func headerKey(height int64) []byte {
	// Zero padded so that keys sort by height
	return fmt.Appendf(nil, "%s%020d", headerKeyPrefix, height)
}

// PutHeader stores a header at the next height of the chain and moves the
// tip to it. Cumulative chain work is computed from the stored parent.
func (s *State) PutHeader(height int64, hdr *header.BlockHeader) error {
	return s.db.Update(func(txn *badger.Txn) error {
		tipHeight, err := getTipHeight(txn)
		if err != nil && !errors.Is(err, ErrHeaderNotFound) {
			return err
		}
		var parentWork arith.Uint256
		if errors.Is(err, ErrHeaderNotFound) {
			if height != 0 {
				return fmt.Errorf(
					"cannot store header at height %d in empty index",
					height,
				)
			}
		} else {
			if height != tipHeight+1 {
				return fmt.Errorf(
					"cannot store header at height %d on tip at height %d",
					height,
					tipHeight,
				)
			}
			_, parentWork, err = getRecord(txn, tipHeight)
			if err != nil {
				return err
			}
		}
		work := parentWork.Add(pow.CalcWork(hdr.Bits))
		var record bytes.Buffer
		if err := hdr.Encode(&record); err != nil {
			return err
		}
		workBytes := work.Bytes32()
		record.Write(workBytes[:])
		if err := txn.Set(headerKey(height), record.Bytes()); err != nil {
			return err
		}
		return txn.Set(
			[]byte(chainTipKey),
			[]byte(strconv.FormatInt(height, 10)),
		)
	})
}

// Header returns the stored header at the given height
func (s *State) Header(height int64) (*header.BlockHeader, error) {
	var ret *header.BlockHeader
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		ret, _, err = getRecord(txn, height)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ChainWork returns the cumulative work of the chain up to and including the
// given height
func (s *State) ChainWork(height int64) (arith.Uint256, error) {
	var ret arith.Uint256
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		_, ret, err = getRecord(txn, height)
		return err
	})
	return ret, err
}

// Tip returns the height and header of the chain tip, or ErrHeaderNotFound
// for an empty index
func (s *State) Tip() (int64, *header.BlockHeader, error) {
	var height int64
	var hdr *header.BlockHeader
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		height, err = getTipHeight(txn)
		if err != nil {
			return err
		}
		hdr, _, err = getRecord(txn, height)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return height, hdr, nil
}

// Chain returns a pow.HeaderChain rooted at the stored header at the given
// height
func (s *State) Chain(height int64) (pow.HeaderChain, error) {
	hdr, err := s.Header(height)
	if err != nil {
		return nil, err
	}
	return &chainView{
		state:  s,
		height: height,
		header: hdr,
	}, nil
}

func getTipHeight(txn *badger.Txn) (int64, error) {
	item, err := txn.Get([]byte(chainTipKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, ErrHeaderNotFound
		}
		return 0, err
	}
	var height int64
	err = item.Value(func(v []byte) error {
		var err error
		height, err = strconv.ParseInt(string(v), 10, 64)
		return err
	})
	return height, err
}

func getRecord(
	txn *badger.Txn,
	height int64,
) (*header.BlockHeader, arith.Uint256, error) {
	var hdr *header.BlockHeader
	var work arith.Uint256
	item, err := txn.Get(headerKey(height))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, work, fmt.Errorf(
				"%w: height %d",
				ErrHeaderNotFound,
				height,
			)
		}
		return nil, work, err
	}
	err = item.Value(func(v []byte) error {
		if len(v) != headerRecordSize {
			return fmt.Errorf(
				"corrupt header record at height %d: length %d",
				height,
				len(v),
			)
		}
		var err error
		hdr, err = header.NewBlockHeaderFromReader(
			bytes.NewReader(v[:header.BlockHeaderSize]),
		)
		if err != nil {
			return err
		}
		work = arith.FromBytes(v[header.BlockHeaderSize:])
		return nil
	})
	if err != nil {
		return nil, work, err
	}
	return hdr, work, nil
}

func GetState() *State {
	return globalState
}

// BadgerLogger is a wrapper type to give our logger the expected interface
type BadgerLogger struct {
	*logging.Logger
}

func NewBadgerLogger() *BadgerLogger {
	return &BadgerLogger{
		Logger: logging.GetLogger(),
	}
}

func (b *BadgerLogger) Warningf(msg string, args ...any) {
	b.Logger.Warnf(msg, args...)
}
