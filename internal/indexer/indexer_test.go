// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package indexer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/powd/arith"
	"github.com/blinklabs-io/powd/internal/header"
	"github.com/blinklabs-io/powd/internal/indexer"
	"github.com/blinklabs-io/powd/internal/metrics"
	"github.com/blinklabs-io/powd/internal/state"
	"github.com/blinklabs-io/powd/pow"
)

const testSpacing = 600

// Legacy retargets every 4 blocks until the parent reaches height 6, with a
// 3 block averaging window after that
func testParams() pow.Params {
	return pow.Params{
		Name: "test",
		PowLimit: arith.MustFromHex(
			"7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		),
		TargetSpacing:   testSpacing,
		TargetTimespan:  4 * testSpacing,
		AveragingWindow: 3,
		SwitchHeight:    6,
		GenesisTime:     1_700_000_000,
		GenesisBits:     0x207fffff,
	}
}

func newTestIndexer(t *testing.T, params pow.Params) *indexer.Indexer {
	t.Helper()
	s, err := state.OpenInMemory()
	if err != nil {
		t.Fatalf("unexpected error opening state: %s", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %s", err)
	}
	return indexer.New(s, params, m)
}

// mineHeader searches for a nonce whose hash passes (or fails) the PoW check
func mineHeader(
	t *testing.T,
	params pow.Params,
	prev pow.Hash,
	timestamp uint32,
	bits uint32,
	wantPass bool,
) *header.BlockHeader {
	t.Helper()
	hdr := &header.BlockHeader{
		Version:   1,
		PrevBlock: prev,
		Time:      timestamp,
		Bits:      bits,
	}
	for nonce := uint32(0); nonce < 1<<20; nonce++ {
		hdr.Nonce = nonce
		if pow.CheckProofOfWork(hdr.Hash(), bits, &params) == wantPass {
			return hdr
		}
	}
	t.Fatalf("could not mine header with bits %08x", bits)
	return nil
}

// buildChain mines and accepts count headers on an empty indexer
func buildChain(
	t *testing.T,
	idx *indexer.Indexer,
	count int,
) ([]*header.BlockHeader, map[pow.Algorithm]int) {
	t.Helper()
	params := idx.Params()
	algorithms := make(map[pow.Algorithm]int)
	headers := make([]*header.BlockHeader, 0, count)
	var prev pow.Hash
	bits := params.GenesisBits
	for i := 0; i < count; i++ {
		timestamp := uint32(params.GenesisTime) + uint32(i*testSpacing) // nolint:gosec
		if i > 0 {
			var algorithm pow.Algorithm
			var err error
			bits, algorithm, err = idx.NextRequiredBits(int64(timestamp))
			if err != nil {
				t.Fatalf("unexpected error getting required bits: %s", err)
			}
			algorithms[algorithm]++
		}
		hdr := mineHeader(t, params, prev, timestamp, bits, true)
		height, err := idx.Accept(hdr)
		if err != nil {
			t.Fatalf("unexpected error accepting header %d: %s", i, err)
		}
		if height != int64(i) {
			t.Fatalf("did not get expected height: got %d, want %d", height, i)
		}
		headers = append(headers, hdr)
		prev = hdr.Hash()
	}
	return headers, algorithms
}

func TestAcceptChain(t *testing.T) {
	idx := newTestIndexer(t, testParams())
	_, algorithms := buildChain(t, idx, 12)
	// Parents 0-1 bootstrap, 2-5 legacy, 6-10 weighted
	expected := map[pow.Algorithm]int{
		pow.AlgorithmBootstrap: 2,
		pow.AlgorithmLegacy:    4,
		pow.AlgorithmWeighted:  5,
	}
	for algorithm, count := range expected {
		if algorithms[algorithm] != count {
			t.Fatalf(
				"did not get expected %s count: got %d, want %d",
				algorithm,
				algorithms[algorithm],
				count,
			)
		}
	}
	tip, err := idx.Verify(context.Background())
	if err != nil {
		t.Fatalf("unexpected error verifying chain: %s", err)
	}
	if tip != 11 {
		t.Fatalf("did not get expected verified tip: got %d, want 11", tip)
	}
}

func TestAcceptLegacyRetarget(t *testing.T) {
	idx := newTestIndexer(t, testParams())
	headers, _ := buildChain(t, idx, 5)
	// On-schedule blocks keep the bits between boundaries and tighten by
	// 3/4 at the boundary, since only 3 spacings are measured
	for i := 0; i < 4; i++ {
		if headers[i].Bits != 0x207fffff {
			t.Fatalf("header %d: got bits %08x, want %08x", i, headers[i].Bits, 0x207fffff)
		}
	}
	if headers[4].Bits != 0x205fffff {
		t.Fatalf("boundary header: got bits %08x, want %08x", headers[4].Bits, 0x205fffff)
	}
}

func TestAcceptRejects(t *testing.T) {
	params := testParams()
	idx := newTestIndexer(t, params)
	headers, _ := buildChain(t, idx, 2)
	tip := headers[1].Hash()
	timestamp := headers[1].Time + testSpacing
	testDefs := []struct {
		name   string
		header *header.BlockHeader
		err    error
		reason string
	}{
		{
			name:   "not connected",
			header: mineHeader(t, params, pow.Hash{}, timestamp, 0x207fffff, true),
			err:    indexer.ErrNotConnected,
			reason: metrics.ReasonNotConnect,
		},
		{
			name:   "unexpected bits",
			header: mineHeader(t, params, tip, timestamp, 0x1f7fffff, true),
			err:    indexer.ErrUnexpectedBits,
			reason: metrics.ReasonBits,
		},
		{
			name:   "bad proof of work",
			header: mineHeader(t, params, tip, timestamp, 0x207fffff, false),
			err:    indexer.ErrBadProofOfWork,
			reason: metrics.ReasonPow,
		},
		{
			name:   "bits above power limit",
			header: mineHeader(t, params, tip, timestamp, 0x21010000, false),
			err:    indexer.ErrBadProofOfWork,
			reason: metrics.ReasonPow,
		},
	}
	for _, td := range testDefs {
		_, err := idx.Accept(td.header)
		if !errors.Is(err, td.err) {
			t.Fatalf("%s: did not get expected error: got %v, want %v", td.name, err, td.err)
		}
		var rejectErr *indexer.RejectError
		if !errors.As(err, &rejectErr) {
			t.Fatalf("%s: error is not a RejectError: %v", td.name, err)
		}
		if rejectErr.Reason != td.reason {
			t.Fatalf("%s: got reason %s, want %s", td.name, rejectErr.Reason, td.reason)
		}
	}
	// The tip did not move
	if _, err := idx.Accept(mineHeader(t, params, tip, timestamp, 0x207fffff, true)); err != nil {
		t.Fatalf("unexpected error accepting valid header: %s", err)
	}
}

func TestAcceptGenesisMismatch(t *testing.T) {
	params := testParams()
	params.GenesisHash = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	idx := newTestIndexer(t, params)
	hdr := mineHeader(t, params, pow.Hash{}, uint32(params.GenesisTime), params.GenesisBits, true) // nolint:gosec
	if _, err := idx.Accept(hdr); !errors.Is(err, indexer.ErrGenesisMismatch) {
		t.Fatalf("did not get expected error: got %v, want %v", err, indexer.ErrGenesisMismatch)
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := newTestIndexer(t, testParams())
	if _, _, err := idx.NextRequiredBits(0); !errors.Is(err, state.ErrHeaderNotFound) {
		t.Fatalf("did not get expected error: got %v, want %v", err, state.ErrHeaderNotFound)
	}
	tip, err := idx.Verify(context.Background())
	if err != nil {
		t.Fatalf("unexpected error verifying empty chain: %s", err)
	}
	if tip != -1 {
		t.Fatalf("did not get expected verified tip: got %d, want -1", tip)
	}
}

func TestImportReader(t *testing.T) {
	src := newTestIndexer(t, testParams())
	headers, _ := buildChain(t, src, 9)
	var lines []string
	lines = append(lines, "# test headers", "")
	for _, hdr := range headers {
		lines = append(lines, hdr.Hex())
	}
	dst := newTestIndexer(t, testParams())
	count, err := dst.ImportReader(
		context.Background(),
		strings.NewReader(strings.Join(lines, "\n")),
	)
	if err != nil {
		t.Fatalf("unexpected error importing headers: %s", err)
	}
	if count != len(headers) {
		t.Fatalf("did not get expected count: got %d, want %d", count, len(headers))
	}
	bits, _, err := dst.NextRequiredBits(int64(headers[8].Time) + testSpacing)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	expectedBits, _, err := src.NextRequiredBits(int64(headers[8].Time) + testSpacing)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if bits != expectedBits {
		t.Fatalf("required bits mismatch: got %08x, want %08x", bits, expectedBits)
	}
}

func TestImportReaderMalformed(t *testing.T) {
	src := newTestIndexer(t, testParams())
	headers, _ := buildChain(t, src, 2)
	input := strings.Join(
		[]string{headers[0].Hex(), headers[1].Hex(), "abcd"},
		"\n",
	)
	dst := newTestIndexer(t, testParams())
	count, err := dst.ImportReader(context.Background(), strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error importing malformed header")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("error does not name the failing line: %s", err)
	}
	if count != 2 {
		t.Fatalf("did not get expected count: got %d, want 2", count)
	}
}

func TestImportFile(t *testing.T) {
	src := newTestIndexer(t, testParams())
	headers, _ := buildChain(t, src, 4)
	var buf strings.Builder
	for _, hdr := range headers {
		buf.WriteString(hdr.Hex() + "\n")
	}
	headerFile := filepath.Join(t.TempDir(), "headers.txt")
	if err := os.WriteFile(headerFile, []byte(buf.String()), 0o600); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	dst := newTestIndexer(t, testParams())
	count, err := dst.ImportFile(context.Background(), headerFile)
	if err != nil {
		t.Fatalf("unexpected error importing headers: %s", err)
	}
	if count != 4 {
		t.Fatalf("did not get expected count: got %d, want 4", count)
	}
	if _, err := dst.ImportFile(context.Background(), headerFile+".missing"); err == nil {
		t.Fatal("expected error importing missing file")
	}
}
