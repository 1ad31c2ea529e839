package llm

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"corpora/src/log"
)

// Stream is a finite, non-restartable sequence of answer fragments.
// Recv returns io.EOF after the last fragment. Close releases the
// underlying connection and is safe to call at any point, including
// before the stream is exhausted.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// textStream replays a fixed set of fragments. Adapters use it to turn
// a missing key or request failure into a well-formed terminal stream.
type textStream struct {
	chunks []string
	pos    int
}

// NewTextStream returns a stream that yields the given fragments.
func NewTextStream(chunks ...string) Stream {
	return &textStream{chunks: chunks}
}

func (s *textStream) Recv() (string, error) {
	if s.pos >= len(s.chunks) {
		return "", io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *textStream) Close() error {
	s.pos = len(s.chunks)
	return nil
}

const doneSentinel = "[DONE]"

// deltaFunc extracts the text fragment from one decoded SSE data
// payload. ok is false when the payload carries no text.
type deltaFunc func(data []byte) (text string, ok bool)

// sseStream incrementally parses a server-sent-event response body.
// Lines prefixed with "data:" are JSON-decoded through the provider's
// delta path; malformed payloads are logged and skipped; the stream
// ends at the DONE sentinel or when the body is exhausted.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	delta   deltaFunc
	done    bool
}

func newSSEStream(body io.ReadCloser, delta deltaFunc) *sseStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseStream{body: body, scanner: scanner, delta: delta}
}

func (s *sseStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == doneSentinel {
			s.finish()
			return "", io.EOF
		}

		if !json.Valid([]byte(payload)) {
			log.Warn("skipping malformed stream chunk", "payload", payload)
			continue
		}
		if text, ok := s.delta([]byte(payload)); ok {
			return text, nil
		}
	}

	err := s.scanner.Err()
	s.finish()
	if err != nil {
		// Surface read failures as a final descriptive fragment so the
		// consumer still sees a terminated stream.
		log.Error(err, "stream read failed")
		return "Stream interrupted: " + err.Error(), nil
	}
	return "", io.EOF
}

func (s *sseStream) finish() {
	if !s.done {
		s.done = true
		s.body.Close()
	}
}

func (s *sseStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.body.Close()
}
