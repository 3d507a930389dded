// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package header_test

import (
	"bytes"
	"encoding/hex"
	"reflect"
	"testing"

	"github.com/blinklabs-io/powd/internal/header"
	"github.com/blinklabs-io/powd/pow"
)

func decodeHex(hexData string) []byte {
	ret, _ := hex.DecodeString(hexData)
	return ret
}

// Bitcoin block 1
const testHeaderHex = "010000006fe28c0ab6f1b372c1a6a246ae63f74f931e8365e15a089c68d6190000000000982051fd1e4ba744bbbe680e1fee14677ba1a3c3540bf7b1cdb606e857233e0e61bc6649ffff001d01e36299"

func TestDecodeBlockHeader(t *testing.T) {
	h, err := header.NewBlockHeaderFromHex(testHeaderHex)
	if err != nil {
		t.Fatalf("unexpected error decoding header: %s", err)
	}
	expected := header.BlockHeader{
		Version: 1,
		PrevBlock: [32]byte(
			decodeHex(
				"6fe28c0ab6f1b372c1a6a246ae63f74f931e8365e15a089c68d6190000000000",
			),
		),
		MerkleRoot: [32]byte(
			decodeHex(
				"982051fd1e4ba744bbbe680e1fee14677ba1a3c3540bf7b1cdb606e857233e0e",
			),
		),
		Time:  1231469665,
		Bits:  0x1d00ffff,
		Nonce: 2573394689,
	}
	if !reflect.DeepEqual(*h, expected) {
		t.Fatalf("did not get expected header:\n     got: %#v\n  wanted: %#v", *h, expected)
	}
	if h.Hex() != testHeaderHex {
		t.Fatalf("re-encoded header mismatch: got %s, want %s", h.Hex(), testHeaderHex)
	}
}

func TestBlockHeaderHash(t *testing.T) {
	h, err := header.NewBlockHeaderFromHex(testHeaderHex)
	if err != nil {
		t.Fatalf("unexpected error decoding header: %s", err)
	}
	const expectedHash = "00000000839a8e6886ab5951d76f411475428afc90947ee320161bbf18eb6048"
	if got := h.Hash().String(); got != expectedHash {
		t.Fatalf("hash mismatch: got %s, want %s", got, expectedHash)
	}
	// The previous block hash is stored in the same byte order as Hash()
	genesis, _ := pow.NewHashFromString(
		"000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
	)
	if pow.Hash(h.PrevBlock) != genesis {
		t.Fatalf("prev block mismatch: got %x", h.PrevBlock)
	}
}

func TestDecodeBlockHeaderErrors(t *testing.T) {
	testDefs := []string{
		"zz",
		testHeaderHex[:len(testHeaderHex)-2],
		testHeaderHex + "00",
	}
	for _, td := range testDefs {
		if _, err := header.NewBlockHeaderFromHex(td); err == nil {
			t.Fatalf("expected error decoding %q", td)
		}
	}
	if _, err := header.NewBlockHeaderFromReader(bytes.NewReader(nil)); err == nil {
		t.Fatal("expected error decoding empty input")
	}
}
