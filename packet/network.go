package packet

import "time"

// MaxPayloadSize is the transport's per-message payload cap, in base64
// characters, per spec.md §6.
const MaxPayloadSize = 65000

// Network is the tagged sum network_packet = network_metadata | network_frame,
// the wire-safe form of Encoded once codec_data/data have been base64-encoded
// for a text-only transport.
type Network interface {
	isNetwork()
}

// NetworkMetadata is the wire-safe form of EncodedMetadata.
type NetworkMetadata struct {
	CodecName  string
	Base64Data string
}

func (NetworkMetadata) isNetwork() {}

// NetworkFrame is one base64 chunk of an EncodedFrame. A frame whose base64
// body exceeds MaxPayloadSize is split across multiple NetworkFrame values
// sharing ID and T; Chunk is 1-based and Chunks is the total fragment count.
type NetworkFrame struct {
	Base64Data string
	ID         ID
	T          time.Time
	Chunk      uint32
	Chunks     uint32
}

func (NetworkFrame) isNetwork() {}

// VisitNetwork dispatches p to onMetadata or onFrame.
func VisitNetwork(p Network, onMetadata func(NetworkMetadata), onFrame func(NetworkFrame)) {
	switch v := p.(type) {
	case NetworkMetadata:
		onMetadata(v)
	case NetworkFrame:
		onFrame(v)
	default:
		panic("packet: unreachable Network variant")
	}
}
