package services

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"syscall"

	"studioshell/internal/logger"
)

// IdentityEnvelope is a single identity message from the embedding host.
// Only envelopes carrying the expected type tag from an allow-listed origin
// are ever acted on.
type IdentityEnvelope struct {
	Type   string `json:"type"`
	Origin string `json:"origin"`
	UserID string `json:"user_id"`
}

// IdentitySource delivers identity envelopes from the embedding host. The
// production source reads the host control pipe; tests inject synthetic
// envelopes through a channel.
type IdentitySource interface {
	Envelopes() <-chan IdentityEnvelope
}

// ChannelIdentitySource is an IdentitySource backed by a plain channel.
// Tests use it to feed synthetic envelopes.
type ChannelIdentitySource struct {
	ch chan IdentityEnvelope
}

// NewChannelIdentitySource creates a channel-backed identity source.
func NewChannelIdentitySource() *ChannelIdentitySource {
	return &ChannelIdentitySource{ch: make(chan IdentityEnvelope, 8)}
}

// Envelopes returns the envelope channel.
func (s *ChannelIdentitySource) Envelopes() <-chan IdentityEnvelope {
	return s.ch
}

// Deliver feeds an envelope into the source.
func (s *ChannelIdentitySource) Deliver(env IdentityEnvelope) {
	s.ch <- env
}

// Close ends delivery.
func (s *ChannelIdentitySource) Close() {
	close(s.ch)
}

// pipeIdentitySource reads newline-delimited JSON envelopes from the host
// control pipe. Malformed lines are dropped; the handshake must never take
// the shell down.
type pipeIdentitySource struct {
	reader io.ReadCloser
	ch     chan IdentityEnvelope
}

// NewPipeIdentitySource opens the host control pipe at path and starts
// decoding envelopes from it. The open is non-blocking: a FIFO with no host
// on the write end reads as immediately exhausted instead of stalling shell
// startup, and the bridge settles into the unauthenticated posture. Returns
// nil when the pipe cannot be opened: not being embedded is a normal,
// unauthenticated posture too.
func NewPipeIdentitySource(path string) IdentitySource {
	if path == "" {
		return nil
	}

	file, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		logger.Debug("Identity pipe unavailable", "path", path, "error", err)
		return nil
	}

	src := &pipeIdentitySource{reader: file, ch: make(chan IdentityEnvelope, 8)}
	go src.run()
	return src
}

// Envelopes returns the envelope channel. It closes when the pipe ends.
func (s *pipeIdentitySource) Envelopes() <-chan IdentityEnvelope {
	return s.ch
}

func (s *pipeIdentitySource) run() {
	defer close(s.ch)
	defer func() {
		_ = s.reader.Close()
	}()

	scanner := bufio.NewScanner(s.reader)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var env IdentityEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			logger.Debug("Dropping malformed identity message", "error", err)
			continue
		}
		s.ch <- env
	}
}
