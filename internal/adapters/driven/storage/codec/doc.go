// Package codec encodes the persisted vector store: a binary index file and
// a JSON metadata file.
//
// Index file layout (little-endian):
//
//	magic       [4]byte  "RAGX"
//	version     uint8
//	compression uint8    0 = none, 1 = lz4, 2 = zstd
//	reserved    uint16
//	dimension   uint32
//	count       uint32
//	checksum    uint32   CRC-32 (IEEE) of the uncompressed body
//	block       [uncompressed uint32][stored uint32][data]
//
// The body is count*dimension float32 values in position order. A stored
// size of zero means the data is kept uncompressed because compression did
// not pay off.
//
// The metadata file is a JSON array with one record per vector, in the
// same order as the index body.
package codec
