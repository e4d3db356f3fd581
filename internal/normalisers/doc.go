// Package normalisers provides implementations of the Normaliser interface
// for the document formats ragstore ingests. Each normaliser knows how to
// extract text content from a specific MIME type.
//
// The filesystem loader picks the highest-priority normaliser for a file's
// MIME type.
package normalisers
