package packet

import "time"

// Encoded is the tagged sum encoded_packet = encoded_metadata | encoded_frame.
// It is a closed variant: the only implementations are EncodedMetadata and
// EncodedFrame, enforced by the unexported marker method. Adding a variant
// is a compile-time break for every exhaustive switch in this module, by
// design (see spec.md §4.3).
type Encoded interface {
	isEncoded()
}

// EncodedMetadata describes the codec used by the encoded frames that
// follow it. Emitted exactly once at stream start and whenever codec
// parameters change.
type EncodedMetadata struct {
	CodecName string
	CodecData []byte
}

func (EncodedMetadata) isEncoded() {}

// EncodedFrame is a single compressed video payload.
type EncodedFrame struct {
	Data         []byte
	ID           ID
	CreationTime time.Time
	KeyFrame     bool
}

func (EncodedFrame) isEncoded() {}

// VisitEncoded dispatches p to onMetadata or onFrame, panicking if a third
// variant is ever introduced without updating this function.
func VisitEncoded(p Encoded, onMetadata func(EncodedMetadata), onFrame func(EncodedFrame)) {
	switch v := p.(type) {
	case EncodedMetadata:
		onMetadata(v)
	case EncodedFrame:
		onFrame(v)
	default:
		panic("packet: unreachable Encoded variant")
	}
}
