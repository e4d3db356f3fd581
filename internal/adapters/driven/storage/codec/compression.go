package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// compression identifiers as stored in the file header.
const (
	compressionNone byte = 0
	compressionLZ4  byte = 1
	compressionZstd byte = 2
)

const blockHeaderSize = 8

// minSavings is the compressed/raw ratio above which a block is stored raw.
const minSavings = 0.9

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

func compressionID(c domain.Compression) (byte, error) {
	switch c {
	case domain.CompressionNone:
		return compressionNone, nil
	case domain.CompressionLZ4:
		return compressionLZ4, nil
	case domain.CompressionZstd, "":
		return compressionZstd, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression %q", domain.ErrInvalidInput, c)
	}
}

// compressBlock frames data with a block header, compressing it when that saves space.
func compressBlock(data []byte, id byte) ([]byte, error) {
	if uint64(len(data)) > uint64(^uint32(0)) {
		return nil, errors.New("index body exceeds 4 GiB")
	}

	var compressed []byte
	switch id {
	case compressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		compressed = buf[:n]
	case compressionZstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	out := make([]byte, blockHeaderSize, blockHeaderSize+len(data))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data))) //nolint:gosec // Checked above.

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*minSavings {
		binary.LittleEndian.PutUint32(out[4:], 0)
		return append(out, data...), nil
	}
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed))) //nolint:gosec // Smaller than data.
	return append(out, compressed...), nil
}

// decompressBlock reverses compressBlock.
func decompressBlock(block []byte, id byte) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, errors.New("block too small for header")
	}
	rawSize := binary.LittleEndian.Uint32(block[0:])
	storedSize := binary.LittleEndian.Uint32(block[4:])
	payload := block[blockHeaderSize:]

	if storedSize == 0 {
		if uint64(len(payload)) < uint64(rawSize) {
			return nil, errors.New("block data truncated")
		}
		return payload[:rawSize], nil
	}
	if uint64(len(payload)) < uint64(storedSize) {
		return nil, errors.New("compressed block truncated")
	}
	payload = payload[:storedSize]

	switch id {
	case compressionLZ4:
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if uint32(n) != rawSize { //nolint:gosec // n <= len(out).
			return nil, errors.New("decompressed size mismatch")
		}
		return out, nil
	case compressionZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(payload, make([]byte, 0, rawSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if uint32(len(out)) != rawSize { //nolint:gosec // Bounded by rawSize check.
			return nil, errors.New("decompressed size mismatch")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("compressed block with compression id %d", id)
	}
}
