package packet

import (
	"encoding/json"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// wireFrame is the transport document shape from spec.md §6:
// {d, i: [i1, i2], t (ms since epoch), c, n}.
type wireFrame struct {
	D string  `msgpack:"d" json:"d"`
	I [2]int64 `msgpack:"i" json:"i"`
	T int64   `msgpack:"t" json:"t"`
	C uint32  `msgpack:"c" json:"c"`
	N uint32  `msgpack:"n" json:"n"`
}

// wireMetadata is the transport document shape {codec, data}.
type wireMetadata struct {
	Codec string `msgpack:"codec" json:"codec"`
	Data  string `msgpack:"data" json:"data"`
}

func toWireFrame(f NetworkFrame) wireFrame {
	return wireFrame{
		D: f.Base64Data,
		I: [2]int64{f.ID.I1, f.ID.I2},
		T: f.T.UnixMilli(),
		C: f.Chunk,
		N: f.Chunks,
	}
}

func fromWireFrame(w wireFrame) NetworkFrame {
	return NetworkFrame{
		Base64Data: w.D,
		ID:         ID{I1: w.I[0], I2: w.I[1]},
		T:          time.UnixMilli(w.T),
		Chunk:      w.C,
		Chunks:     w.N,
	}
}

func toWireMetadata(m NetworkMetadata) wireMetadata {
	return wireMetadata{Codec: m.CodecName, Data: m.Base64Data}
}

func fromWireMetadata(w wireMetadata) NetworkMetadata {
	return NetworkMetadata{CodecName: w.Codec, Base64Data: w.Data}
}

// EncodeMsgpack renders a Network packet as the msgpack wire document used
// by transport/nats.
func EncodeMsgpack(p Network) ([]byte, error) {
	switch v := p.(type) {
	case NetworkFrame:
		return msgpack.Marshal(toWireFrame(v))
	case NetworkMetadata:
		return msgpack.Marshal(toWireMetadata(v))
	default:
		panic("packet: unreachable Network variant")
	}
}

// DecodeMsgpackFrame parses a msgpack-encoded NetworkFrame document.
func DecodeMsgpackFrame(data []byte) (NetworkFrame, error) {
	var w wireFrame
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return NetworkFrame{}, Wrap(KindFrameGenerationError, "packet", "DecodeMsgpackFrame", err)
	}
	return fromWireFrame(w), nil
}

// DecodeMsgpackMetadata parses a msgpack-encoded NetworkMetadata document.
func DecodeMsgpackMetadata(data []byte) (NetworkMetadata, error) {
	var w wireMetadata
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return NetworkMetadata{}, Wrap(KindFrameGenerationError, "packet", "DecodeMsgpackMetadata", err)
	}
	return fromWireMetadata(w), nil
}

// EncodeJSON renders a Network packet as a human-legible JSON document, used
// by sink/ostream and sink/file.
func EncodeJSON(p Network) ([]byte, error) {
	switch v := p.(type) {
	case NetworkFrame:
		return json.Marshal(toWireFrame(v))
	case NetworkMetadata:
		return json.Marshal(toWireMetadata(v))
	default:
		panic("packet: unreachable Network variant")
	}
}
