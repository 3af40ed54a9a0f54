package packet_test

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/satori-video/streams/packet"
)

func TestEncodedFrameRoundTrip(t *testing.T) {
	data := make([]byte, 200)
	rand.New(rand.NewSource(1)).Read(data)

	f := packet.EncodedFrame{Data: data, ID: packet.ID{I1: 10, I2: 20}, KeyFrame: true}
	now := time.Now().Truncate(time.Millisecond)

	chunks := f.ToNetwork(now)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for small payload, got %d", len(chunks))
	}

	reassembled, err := packet.ReassembleFrame(chunks)
	if err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	if !bytes.Equal(reassembled.Data, data) {
		t.Fatalf("round trip mismatch")
	}
	if reassembled.ID != f.ID {
		t.Fatalf("id mismatch: %v != %v", reassembled.ID, f.ID)
	}
}

func TestEncodedFrameChunking130000Base64Bytes(t *testing.T) {
	// base64 expands 3 raw bytes into 4 chars; to land on exactly 130000
	// base64 chars we need 130000/4*3 = 97500 raw bytes.
	data := make([]byte, 97500)
	rand.New(rand.NewSource(2)).Read(data)

	f := packet.EncodedFrame{Data: data, ID: packet.ID{I1: 0, I2: int64(len(data))}}
	now := time.Now()

	chunks := f.ToNetwork(now)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Chunks != 2 {
			t.Fatalf("chunk %d reports chunks=%d, want 2", i, c.Chunks)
		}
		if c.Chunk != uint32(i+1) {
			t.Fatalf("chunk %d has Chunk=%d, want %d", i, c.Chunk, i+1)
		}
	}

	reassembled, err := packet.ReassembleFrame(chunks)
	if err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	if !bytes.Equal(reassembled.Data, data) {
		t.Fatalf("round trip mismatch after 2-chunk split")
	}
}

func TestReassembleFrameDetectsMissingChunk(t *testing.T) {
	f := packet.EncodedFrame{Data: make([]byte, 97500), ID: packet.ID{I1: 0, I2: 1}}
	chunks := f.ToNetwork(time.Now())
	if len(chunks) < 2 {
		t.Fatalf("need at least 2 chunks for this test")
	}
	_, err := packet.ReassembleFrame(chunks[:1])
	if err == nil {
		t.Fatalf("expected error reassembling an incomplete chunk set")
	}
}

func TestReassembleFrameDetectsDuplicateChunk(t *testing.T) {
	f := packet.EncodedFrame{Data: make([]byte, 97500), ID: packet.ID{I1: 0, I2: 1}}
	chunks := f.ToNetwork(time.Now())
	dup := append([]packet.NetworkFrame{chunks[0]}, chunks...)
	_, err := packet.ReassembleFrame(dup)
	if err == nil {
		t.Fatalf("expected error reassembling a chunk set with a duplicate")
	}
}

func TestReassembleFrameDetectsMismatchedID(t *testing.T) {
	f := packet.EncodedFrame{Data: make([]byte, 97500), ID: packet.ID{I1: 0, I2: 1}}
	chunks := f.ToNetwork(time.Now())
	chunks[1].ID = packet.ID{I1: 99, I2: 100}
	_, err := packet.ReassembleFrame(chunks)
	if err == nil {
		t.Fatalf("expected error reassembling a chunk set with mismatched id")
	}
}

func TestEncodedMetadataToNetworkRoundTrip(t *testing.T) {
	m := packet.EncodedMetadata{CodecName: "h264", CodecData: []byte{1, 2, 3, 4}}
	net := m.ToNetwork()
	back, err := packet.NetworkMetadataToEncoded(net)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(m, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestIDValid(t *testing.T) {
	if !(packet.ID{I1: 1, I2: 1}).Valid() {
		t.Fatalf("equal bounds should be valid (empty span)")
	}
	if (packet.ID{I1: 5, I2: 1}).Valid() {
		t.Fatalf("i1 > i2 should be invalid")
	}
}
