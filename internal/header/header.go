// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package header

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/minio/sha256-simd"

	"github.com/blinklabs-io/powd/pow"
)

// BlockHeaderSize is the size of a serialized block header
const BlockHeaderSize = 80

type BlockHeader struct {
	Version    uint32
	PrevBlock  [32]byte
	MerkleRoot [32]byte
	Time       uint32
	Bits       uint32
	Nonce      uint32
}

func NewBlockHeaderFromReader(r io.Reader) (*BlockHeader, error) {
	var h BlockHeader
	if err := h.Decode(r); err != nil {
		return nil, err
	}
	return &h, nil
}

// NewBlockHeaderFromHex decodes a hex-encoded serialized header
func NewBlockHeaderFromHex(hexData string) (*BlockHeader, error) {
	buf, err := hex.DecodeString(strings.TrimSpace(hexData))
	if err != nil {
		return nil, fmt.Errorf("invalid header hex: %w", err)
	}
	if len(buf) != BlockHeaderSize {
		return nil, fmt.Errorf(
			"invalid header length %d, expected %d",
			len(buf),
			BlockHeaderSize,
		)
	}
	return NewBlockHeaderFromReader(bytes.NewReader(buf))
}

func (h *BlockHeader) Decode(r io.Reader) error {
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return err
	}
	return nil
}

func (h *BlockHeader) Encode(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, h)
}

// Bytes returns the serialized header
func (h *BlockHeader) Bytes() []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail
	_ = h.Encode(&buf)
	return buf.Bytes()
}

// Hex returns the hex-encoded serialized header
func (h *BlockHeader) Hex() string {
	return hex.EncodeToString(h.Bytes())
}

// Hash returns the double SHA-256 of the serialized header
func (h *BlockHeader) Hash() pow.Hash {
	first := sha256.Sum256(h.Bytes())
	return pow.Hash(sha256.Sum256(first[:]))
}

// Timestamp returns the header time as a signed value for difficulty math
func (h *BlockHeader) Timestamp() int64 {
	return int64(h.Time)
}
