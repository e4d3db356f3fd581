// Package chunker provides a recursive character text splitter.
//
// Text is split on the first separator from the list "\n\n", "\n", " ", ""
// that occurs in it. Pieces that are still too long are split again with the
// remaining separators, and short pieces are merged back into windows of at
// most the chunk size, with adjacent windows sharing up to the overlap.
// Lengths are counted in runes.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 300

// DefaultSeparators are tried in order, from paragraph breaks down to single characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Processor splits document content into overlapping chunks.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// It fails when the overlap is negative or not smaller than the chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 || p.overlap < 0 || p.chunkSize <= p.overlap {
		return nil, fmt.Errorf("%w: chunk size %d must be positive and greater than overlap %d",
			domain.ErrInvalidInput, p.chunkSize, p.overlap)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits every document and assigns derived chunk identities.
// Documents with blank content produce no chunks.
func (p *Processor) Chunk(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}

		texts := p.Split(doc.Content)
		docID := doc.ID()
		for i, text := range texts {
			chunks = append(chunks, domain.Chunk{
				ID:         domain.ChunkID(docID, i),
				DocumentID: docID,
				Source:     doc.Source,
				Text:       text,
				Index:      i,
				Total:      len(texts),
			})
		}
	}

	return chunks, nil
}

// Split returns the chunk texts for a single text, in order.
func (p *Processor) Split(text string) []string {
	return p.splitRecursive(text, p.separators)
}

func (p *Processor) splitRecursive(text string, separators []string) []string {
	var chunks []string

	separator := separators[len(separators)-1]
	var remaining []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			remaining = separators[i+1:]
			break
		}
	}

	var short []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if utf8.RuneCountInString(piece) < p.chunkSize {
			short = append(short, piece)
			continue
		}
		if len(short) > 0 {
			chunks = append(chunks, p.merge(short)...)
			short = nil
		}
		if len(remaining) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, p.splitRecursive(piece, remaining)...)
		}
	}
	if len(short) > 0 {
		chunks = append(chunks, p.merge(short)...)
	}

	return chunks
}

// merge packs pieces into windows of at most chunkSize runes. When a window
// is emitted, pieces are dropped from its front until at most overlap runes
// remain to carry into the next window.
func (p *Processor) merge(pieces []string) []string {
	var (
		windows []string
		current []string
		lengths []int
		total   int
	)

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n > p.chunkSize && len(current) > 0 {
			if w := strings.TrimSpace(strings.Join(current, "")); w != "" {
				windows = append(windows, w)
			}
			for total > p.overlap || (total+n > p.chunkSize && total > 0) {
				total -= lengths[0]
				current = current[1:]
				lengths = lengths[1:]
			}
		}
		current = append(current, piece)
		lengths = append(lengths, n)
		total += n
	}

	if w := strings.TrimSpace(strings.Join(current, "")); w != "" {
		windows = append(windows, w)
	}
	return windows
}

// splitKeepingSeparator splits text on sep, attaching each separator to the
// start of the piece that follows it. Empty pieces are dropped. An empty
// separator splits into single characters.
func splitKeepingSeparator(text, sep string) []string {
	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, sep)
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}
