package pipeline

import (
	"time"

	"github.com/satori-video/streams/metric"
	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/stream"
)

// Decode renders one compressed frame into a raw decoded image. spec.md §6
// treats the codec façade's decode primitive as a collaborator the core only
// names; pipeline.Run takes it as a plain function so callers can back it
// with whichever codec library codec.Source itself hides.
type Decode func(packet.EncodedFrame) (packet.ImageFrame, error)

// decoded carries either a skipped metadata marker or a decoded frame
// through the worker boundary, so the worker operator (which is strictly
// 1-to-1) can still participate in a pipeline that must drop metadata
// packets before they reach the bot.
type decoded struct {
	isMetadata bool
	frame      packet.ImageFrame
}

// decodeImages turns an encoded_packet stream into the image_frame stream
// spec.md §4.5 feeds into the signal breaker: encoded_metadata packets are
// dropped (a bot never sees raw codec metadata), encoded_frame packets are
// decoded. When live is set, decoding runs across a threaded-worker boundary
// (spec.md §4.5's "[threaded_worker if live]") so a slow decode cannot stall
// the camera/pubsub source's own executor; batch sources decode inline since
// there is no live producer to protect.
//
// metrics may be nil. When set, each decoded frame's latency from
// EncodedFrame.CreationTime (spec.md §3: "assigned at source read; used for
// end-to-end latency observation") to the moment decode finishes is
// recorded against FrameLatency — this is the last point in the pipeline
// that still has the source timestamp in hand, since packet.ImageFrame
// carries no timestamp of its own.
func decodeImages(frames stream.Publisher[packet.Encoded], decode Decode, live bool, workerConcurrency int, metrics *metric.Registry) stream.Publisher[packet.ImageFrame] {
	step := func(e packet.Encoded) (decoded, error) {
		var out decoded
		var stepErr error
		packet.VisitEncoded(e,
			func(packet.EncodedMetadata) { out = decoded{isMetadata: true} },
			func(f packet.EncodedFrame) {
				img, err := decode(f)
				if err != nil {
					stepErr = packet.Wrap(packet.KindFrameGenerationError, "pipeline.decode", "decode", err)
					return
				}
				if metrics != nil {
					metrics.ObserveFrameLatency(f.CreationTime, time.Now())
				}
				out = decoded{frame: img}
			},
		)
		return out, stepErr
	}

	var withDecode stream.Publisher[decoded]
	if live {
		withDecode = stream.Worker(frames, workerConcurrency, step)
	} else {
		withDecode = stream.Map(frames, step)
	}

	return stream.FlatMap(withDecode, func(d decoded) stream.Publisher[packet.ImageFrame] {
		if d.isMetadata {
			return stream.Empty[packet.ImageFrame]()
		}
		return stream.Of(d.frame)
	})
}
