package textextract

import (
	"context"
	"path/filepath"
	"strings"

	"corpora/src/log"
)

// Partitioner converts a binary document into plain text. The
// Unstructured API integration satisfies this.
type Partitioner interface {
	Partition(ctx context.Context, filename string, content []byte) (string, error)
}

// Extractor maps a document's raw bytes to plain text, dispatching on
// file extension. Failures never propagate: a corrupt document must not
// abort indexing of the rest of a corpus, so the outcome is an explicit
// (text, ok) pair and failures are logged here.
type Extractor struct {
	partitioner Partitioner
}

func NewExtractor(partitioner Partitioner) *Extractor {
	return &Extractor{partitioner: partitioner}
}

// Supported reports whether the filename's extension maps to a known
// document format.
func (e *Extractor) Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".pdf", ".docx", ".doc":
		return true
	}
	return false
}

// Extract returns the plain text of a document. ok is false when the
// format is unsupported or extraction failed; the returned text is then
// empty.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (text string, ok bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return string(content), true

	case ".pdf", ".docx", ".doc":
		if e.partitioner == nil {
			log.Warn("no partitioner configured for binary document", "filename", filename)
			return "", false
		}
		text, err := e.partitioner.Partition(ctx, filename, content)
		if err != nil {
			log.Error(err, "document extraction failed", "filename", filename)
			return "", false
		}
		return text, true

	default:
		log.Warn("unsupported document format", "filename", filename)
		return "", false
	}
}
