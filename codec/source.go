// Package codec defines the interface-only façade the source package uses
// to pull compressed packets out of a demuxer, independent of which codec
// library backs it (codec/fake for tests, codec/gstsource for GStreamer).
package codec

import "errors"

// StreamInfo describes one demuxed stream.
type StreamInfo struct {
	Index       int
	CodecName   string
	PrivateData []byte
	Width       int
	Height      int
	FPS         float64
}

// Packet is one compressed (or, for codec/gstsource, already-decoded raw)
// unit read from a Source.
type Packet struct {
	Data      []byte
	PTS       int64
	DTS       int64
	KeyFrame  bool
	StreamIdx int
}

// ErrEndOfStream is returned by ReadPacket once the source is exhausted.
var ErrEndOfStream = errors.New("codec: end of stream")

// ErrFrameNotReady is returned by ReadPacket when no packet is currently
// available but the source has not ended (e.g. a live source stalling).
var ErrFrameNotReady = errors.New("codec: frame not ready")

// Source is the minimal primitive set spec.md §6 asks the core to depend
// on: open by URI, enumerate streams, pick the best video stream, read one
// compressed packet, seek to start, report codec name and codec-private
// data, and destroy contexts. No particular codec library's API shape
// leaks through this interface.
type Source interface {
	Open(uri string) error
	Streams() ([]StreamInfo, error)
	BestVideoStream(streams []StreamInfo) (StreamInfo, error)
	ReadPacket() (Packet, error)
	SeekToStart() error
	Close() error
}
