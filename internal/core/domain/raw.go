package domain

// RawDocument represents opaque bytes read by a loader.
// It is the loader's output before normalisation.
type RawDocument struct {
	// Source is the path the bytes were read from. It becomes Document.Source.
	Source string

	// MIMEType is the content type (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
