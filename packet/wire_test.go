package packet_test

import (
	"strings"
	"testing"
	"time"

	"github.com/satori-video/streams/packet"
)

func TestMsgpackFrameRoundTrip(t *testing.T) {
	f := packet.NetworkFrame{
		Base64Data: "aGVsbG8=",
		ID:         packet.ID{I1: 3, I2: 9},
		T:          time.Now().Truncate(time.Millisecond),
		Chunk:      1,
		Chunks:     1,
	}

	raw, err := packet.EncodeMsgpack(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := packet.DecodeMsgpackFrame(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Base64Data != f.Base64Data || back.ID != f.ID || back.Chunk != f.Chunk || back.Chunks != f.Chunks {
		t.Fatalf("round trip mismatch: got %+v, want %+v", back, f)
	}
	if !back.T.Equal(f.T) {
		t.Fatalf("timestamp mismatch: got %v, want %v", back.T, f.T)
	}
}

func TestMsgpackMetadataRoundTrip(t *testing.T) {
	m := packet.NetworkMetadata{CodecName: "h264", Base64Data: "AQIDBA=="}
	raw, err := packet.EncodeMsgpack(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := packet.DecodeMsgpackMetadata(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != m {
		t.Fatalf("round trip mismatch: got %+v, want %+v", back, m)
	}
}

func TestEncodeJSONProducesExpectedShape(t *testing.T) {
	f := packet.NetworkFrame{Base64Data: "abc", ID: packet.ID{I1: 1, I2: 2}, Chunk: 1, Chunks: 1}
	raw, err := packet.EncodeJSON(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `"d":"abc"`
	if !strings.Contains(string(raw), want) {
		t.Fatalf("expected json to contain %q, got %s", want, raw)
	}
}
