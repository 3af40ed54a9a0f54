package source_test

import (
	"io"
	"testing"

	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/source"
	"github.com/satori-video/streams/stream"
)

type memReplayLog struct {
	records [][]byte
	pos     int
	closed  bool
}

func (m *memReplayLog) Next() ([]byte, error) {
	if m.pos >= len(m.records) {
		return nil, io.EOF
	}
	r := m.records[m.pos]
	m.pos++
	return r, nil
}

func (m *memReplayLog) SeekToStart() error {
	m.pos = 0
	return nil
}

func (m *memReplayLog) Close() error {
	m.closed = true
	return nil
}

func encodeRecord(t *testing.T, p packet.Network) []byte {
	t.Helper()
	raw, err := packet.EncodeMsgpack(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return raw
}

func TestNetworkReplayCompletesWithoutLoop(t *testing.T) {
	log := &memReplayLog{records: [][]byte{
		encodeRecord(t, packet.NetworkMetadata{CodecName: "h264"}),
		encodeRecord(t, packet.NetworkFrame{ID: packet.ID{I1: 0, I2: 1}}),
	}}

	got, err := collect(t, source.NewNetworkReplay(log, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if !log.closed {
		t.Fatal("expected replay log to be closed on teardown")
	}
}

func TestNetworkReplayLoops(t *testing.T) {
	log := &memReplayLog{records: [][]byte{
		encodeRecord(t, packet.NetworkMetadata{CodecName: "h264"}),
	}}

	got, err := collect(t, stream.Take[packet.Network](source.NewNetworkReplay(log, true), 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected to keep looping, got %d items", len(got))
	}
}
