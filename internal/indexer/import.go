// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package indexer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blinklabs-io/powd/internal/header"
	"github.com/blinklabs-io/powd/internal/logging"
	"github.com/blinklabs-io/powd/internal/metrics"
	"github.com/blinklabs-io/powd/internal/state"
	"github.com/blinklabs-io/powd/pow"
)

const importProgressInterval = 1000

// ImportFile imports hex-encoded headers from a file, one per line
func (i *Indexer) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return i.ImportReader(ctx, f)
}

// ImportReader imports hex-encoded headers, one per line. Blank lines and
// lines starting with '#' are skipped. Import stops at the first rejected
// header and returns the number of headers accepted before it.
func (i *Indexer) ImportReader(ctx context.Context, r io.Reader) (int, error) {
	logger := logging.GetLogger()
	scanner := bufio.NewScanner(r)
	var lineNum, count int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hdr, err := header.NewBlockHeaderFromHex(line)
		if err != nil {
			i.metrics.HeaderRejected(metrics.ReasonMalformed)
			return count, fmt.Errorf("line %d: %w", lineNum, err)
		}
		height, err := i.Accept(hdr)
		if err != nil {
			return count, fmt.Errorf("line %d: %w", lineNum, err)
		}
		count++
		if count%importProgressInterval == 0 {
			logger.Infof("imported %d headers, tip at height %d", count, height)
		}
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}
	return count, nil
}

// Verify replays the stored chain through the consensus checks
func (i *Indexer) Verify(ctx context.Context) (int64, error) {
	i.Lock()
	defer i.Unlock()
	tipHeight, _, err := i.state.Tip()
	if err != nil {
		if errors.Is(err, state.ErrHeaderNotFound) {
			return -1, nil
		}
		return 0, err
	}
	genesis, err := i.state.Header(0)
	if err != nil {
		return 0, err
	}
	if err := i.checkGenesis(genesis); err != nil {
		return 0, err
	}
	for height := int64(1); height <= tipHeight; height++ {
		if err := ctx.Err(); err != nil {
			return height - 1, err
		}
		last, err := i.state.Chain(height - 1)
		if err != nil {
			return height - 1, err
		}
		hdr, err := i.state.Header(height)
		if err != nil {
			return height - 1, err
		}
		prev, err := i.state.Header(height - 1)
		if err != nil {
			return height - 1, err
		}
		if pow.Hash(hdr.PrevBlock) != prev.Hash() {
			return height - 1, fmt.Errorf(
				"%w: height %d",
				ErrNotConnected,
				height,
			)
		}
		if err := i.checkHeader(last, hdr); err != nil {
			return height - 1, err
		}
		if height%importProgressInterval == 0 {
			logging.GetLogger().Infof("verified headers up to height %d", height)
		}
	}
	return tipHeight, nil
}
