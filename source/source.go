// Package source implements the five source kinds named in spec.md §6
// (file, url, camera, pubsub, network-replay) as stream generators sharing
// the lazy-init / metadata-first / frame-loop / EOF / error / teardown
// skeleton of spec.md §4.4.
package source

import (
	"github.com/satori-video/streams/codec"
	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/stream"
)

// Options configures a codec-backed source.
type Options struct {
	// URI is passed to codec.Source.Open.
	URI string
	// Loop seeks back to the start on end-of-stream instead of completing.
	Loop bool
	// Component names the source kind for error wrapping ("source.file",
	// "source.camera", ...).
	Component string
	// Clock stamps EncodedFrame.CreationTime. Defaults to stream.SystemClock.
	Clock stream.Clock
}

// FromCodec builds a stream.Publisher[packet.Encoded] around a codec.Source,
// implementing the shared skeleton: open lazily on first demand, emit one
// EncodedMetadata before any EncodedFrame, read packets belonging to the
// selected video stream, loop-or-complete on EOF, wrap any other read error
// as a frame-generation error, and close the codec context on teardown.
func FromCodec(newSource func() codec.Source, opts Options) stream.Publisher[packet.Encoded] {
	if opts.Clock == nil {
		opts.Clock = stream.SystemClock{}
	}
	if opts.Component == "" {
		opts.Component = "source"
	}
	return stream.Stateful[packet.Encoded, *codecState](
		func() *codecState {
			return &codecState{src: newSource(), opts: opts}
		},
		generateFromCodec,
		destroyCodecState,
	)
}

type codecState struct {
	src  codec.Source
	opts Options

	opened       bool
	metadataSent bool
	best         codec.StreamInfo
	lastPos      int64
}

func generateFromCodec(st *codecState, n int, obs stream.Observer[packet.Encoded]) {
	if !st.opened {
		if err := st.src.Open(st.opts.URI); err != nil {
			obs.OnError(packet.Wrap(packet.KindStreamInitializationError, st.opts.Component, "open", err))
			return
		}
		streams, err := st.src.Streams()
		if err != nil {
			obs.OnError(packet.Wrap(packet.KindStreamInitializationError, st.opts.Component, "streams", err))
			return
		}
		best, err := st.src.BestVideoStream(streams)
		if err != nil {
			obs.OnError(packet.Wrap(packet.KindStreamInitializationError, st.opts.Component, "best_video_stream", err))
			return
		}
		st.best = best
		st.opened = true
	}

	emitted := 0
	if !st.metadataSent {
		obs.OnNext(packet.EncodedMetadata{CodecName: st.best.CodecName, CodecData: st.best.PrivateData})
		st.metadataSent = true
		emitted++
	}

	for emitted < n {
		pkt, err := st.src.ReadPacket()
		if err != nil {
			switch {
			case err == codec.ErrFrameNotReady:
				return
			case err == codec.ErrEndOfStream:
				if st.opts.Loop {
					if serr := st.src.SeekToStart(); serr != nil {
						obs.OnError(packet.Wrap(packet.KindStreamInitializationError, st.opts.Component, "seek_to_start", serr))
						return
					}
					st.lastPos = 0
					continue
				}
				obs.OnComplete()
				return
			default:
				obs.OnError(packet.Wrap(packet.KindFrameGenerationError, st.opts.Component, "read_packet", err))
				return
			}
		}
		if pkt.StreamIdx != st.best.Index {
			continue
		}
		id := packet.ID{I1: st.lastPos, I2: st.lastPos + int64(len(pkt.Data))}
		st.lastPos = id.I2
		obs.OnNext(packet.EncodedFrame{
			Data:         pkt.Data,
			ID:           id,
			CreationTime: st.opts.Clock.Now(),
			KeyFrame:     pkt.KeyFrame,
		})
		emitted++
	}
}

func destroyCodecState(st *codecState) {
	if st.opened {
		_ = st.src.Close()
	}
}
