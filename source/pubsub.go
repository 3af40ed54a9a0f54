package source

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/stream"
)

// PubSub is the transport-agnostic collaborator a pubsub source pulls wire
// messages from. transport/nats implements this over a core NATS
// subscription; tests substitute an in-memory fake.
type PubSub interface {
	// Subscribe delivers every message published to channel to handler,
	// until the returned unsubscribe func is called.
	Subscribe(channel string, handler func(raw []byte)) (unsubscribe func() error, err error)
}

// NewPubSub builds a stream.Publisher[packet.Network] that decodes every
// message received on channel as a msgpack-encoded network_packet. It is an
// async generator (spec.md §4.2): the transport pushes messages at its own
// pace, and this source simply relays them, terminating on the first decode
// error since a malformed message indicates a protocol mismatch worth
// surfacing loudly rather than skipping silently.
func NewPubSub(ps PubSub, channel string) stream.Publisher[packet.Network] {
	return stream.Async[packet.Network, func() error](
		func(obs stream.Observer[packet.Network]) func() error {
			unsubscribe, err := ps.Subscribe(channel, func(raw []byte) {
				pkt, decodeErr := decodeNetworkPacket(raw)
				if decodeErr != nil {
					obs.OnError(packet.Wrap(packet.KindFrameGenerationError, "source.pubsub", "decode", decodeErr))
					return
				}
				obs.OnNext(pkt)
			})
			if err != nil {
				obs.OnError(packet.Wrap(packet.KindStreamInitializationError, "source.pubsub", "subscribe", err))
				return func() error { return nil }
			}
			return unsubscribe
		},
		func(unsubscribe func() error) {
			if unsubscribe != nil {
				_ = unsubscribe()
			}
		},
	)
}

// decodeNetworkPacket distinguishes the two wire shapes by peeking for the
// metadata document's unique "codec" key before committing to a concrete
// decode, since metadata and frame documents are otherwise structurally
// distinct msgpack maps.
func decodeNetworkPacket(raw []byte) (packet.Network, error) {
	var probe map[string]interface{}
	if err := msgpack.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if _, isMetadata := probe["codec"]; isMetadata {
		m, err := packet.DecodeMsgpackMetadata(raw)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	f, err := packet.DecodeMsgpackFrame(raw)
	if err != nil {
		return nil, err
	}
	return f, nil
}
