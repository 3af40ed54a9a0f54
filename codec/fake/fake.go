// Package fake is an in-memory codec.Source test double used throughout the
// source/pipeline test suites in place of a real demuxer.
package fake

import (
	"sync"

	"github.com/satori-video/streams/codec"
)

// Source replays a fixed list of packets over a single fixed stream. It
// never touches the filesystem or network: Open just validates it hasn't
// already been opened.
type Source struct {
	mu sync.Mutex

	Info    codec.StreamInfo
	Packets []codec.Packet

	opened bool
	pos    int
	closed bool

	// OpenErr, when set, is returned by Open instead of succeeding.
	OpenErr error
}

// New builds a Source reporting a single video stream described by info and
// replaying packets in order.
func New(info codec.StreamInfo, packets []codec.Packet) *Source {
	return &Source{Info: info, Packets: packets}
}

func (s *Source) Open(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OpenErr != nil {
		return s.OpenErr
	}
	s.opened = true
	return nil
}

func (s *Source) Streams() ([]codec.StreamInfo, error) {
	return []codec.StreamInfo{s.Info}, nil
}

func (s *Source) BestVideoStream(streams []codec.StreamInfo) (codec.StreamInfo, error) {
	if len(streams) == 0 {
		return codec.StreamInfo{}, codec.ErrEndOfStream
	}
	return streams[0], nil
}

func (s *Source) ReadPacket() (codec.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return codec.Packet{}, codec.ErrEndOfStream
	}
	if s.pos >= len(s.Packets) {
		return codec.Packet{}, codec.ErrEndOfStream
	}
	p := s.Packets[s.pos]
	s.pos++
	return p, nil
}

func (s *Source) SeekToStart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = 0
	return nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called, for tests asserting
// teardown happened.
func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
