// Package ocr defines the interface to the text recognition engine.
//
// The engine itself is a black box external to this server: all the core
// needs from it is an ordered sequence of text lines, one per detected line,
// top to bottom, with no layout or column information guaranteed.
package ocr

import "context"

// Recognizer extracts text lines from a receipt image. Recognition errors
// surface verbatim to the caller; the core never retries.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, contentType string) ([]string, error)
}
