package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// IndexMagic identifies an index file.
const IndexMagic = "RAGX"

// IndexVersion is the current index file format version.
const IndexVersion = 1

const indexHeaderSize = 20

// ErrCorrupt is returned for index files that cannot be decoded.
var ErrCorrupt = errors.New("corrupt index file")

// EncodeIndex serialises vectors of width dim using the given compression.
func EncodeIndex(dim int, vectors [][]float32, c domain.Compression) ([]byte, error) {
	id, err := compressionID(c)
	if err != nil {
		return nil, err
	}
	if dim < 0 || uint64(dim) > math.MaxUint32 || uint64(len(vectors)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: index shape %dx%d", domain.ErrInvalidInput, len(vectors), dim)
	}

	body := make([]byte, 0, len(vectors)*dim*4)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, &domain.DimensionMismatchError{Expected: dim, Actual: len(v)}
		}
		for _, f := range v {
			body = binary.LittleEndian.AppendUint32(body, math.Float32bits(f))
		}
	}

	block, err := compressBlock(body, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(indexHeaderSize + len(block))
	buf.WriteString(IndexMagic)
	buf.WriteByte(IndexVersion)
	buf.WriteByte(id)
	buf.Write([]byte{0, 0})
	header := make([]byte, 12)
	binary.LittleEndian.PutUint32(header[0:], uint32(dim))          //nolint:gosec // Checked above.
	binary.LittleEndian.PutUint32(header[4:], uint32(len(vectors))) //nolint:gosec // Checked above.
	binary.LittleEndian.PutUint32(header[8:], crc32.ChecksumIEEE(body))
	buf.Write(header)
	buf.Write(block)
	return buf.Bytes(), nil
}

// DecodeIndex parses an index file and returns its dimension and vectors.
func DecodeIndex(data []byte) (int, [][]float32, error) {
	if len(data) < indexHeaderSize {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	if string(data[:4]) != IndexMagic {
		return 0, nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if data[4] != IndexVersion {
		return 0, nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, data[4])
	}
	id := data[5]
	dim := int(binary.LittleEndian.Uint32(data[8:]))
	count := int(binary.LittleEndian.Uint32(data[12:]))
	checksum := binary.LittleEndian.Uint32(data[16:])
	if dim == 0 && count > 0 {
		return 0, nil, fmt.Errorf("%w: %d vectors with zero dimension", ErrCorrupt, count)
	}
	if dim > 0 && count > math.MaxInt/(dim*4) {
		return 0, nil, fmt.Errorf("%w: %d vectors of dimension %d overflow", ErrCorrupt, count, dim)
	}

	body, err := decompressBlock(data[indexHeaderSize:], id)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if len(body) != count*dim*4 {
		return 0, nil, fmt.Errorf("%w: body is %d bytes, want %d", ErrCorrupt, len(body), count*dim*4)
	}
	if crc32.ChecksumIEEE(body) != checksum {
		return 0, nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		row := make([]float32, dim)
		off := i * dim * 4
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(body[off+j*4:]))
		}
		vectors[i] = row
	}
	return dim, vectors, nil
}
