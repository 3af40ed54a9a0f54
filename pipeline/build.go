package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/satori-video/streams/bot"
	"github.com/satori-video/streams/codec"
	"github.com/satori-video/streams/codec/gstsource"
	"github.com/satori-video/streams/config"
	"github.com/satori-video/streams/metric"
	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/sink"
	"github.com/satori-video/streams/source"
	"github.com/satori-video/streams/stream"
)

// liveFramePeriod is the hard-coded 25Hz pacing interval non-batch runs apply
// to their frame source, per spec.md §4.4. The media's own declared FPS
// should be honored instead; that is the spec's own open "TODO: fps" gap
// (see DESIGN.md's Open Question decisions), not addressed here.
const liveFramePeriod = time.Second / 25

// Dependencies collects the external-interface collaborators (spec.md §6)
// Build needs to turn a config.Config into a runnable topology. Not every
// field is required for every config.InputKind; Build only touches the ones
// its cfg.Input selects.
type Dependencies struct {
	// NewCodecSource constructs the demuxer for InputFile/InputURL.
	NewCodecSource func() codec.Source
	// Camera is the GStreamer pipeline configuration for InputCamera; its URL
	// is overridden with cfg.Source if cfg.Source is non-empty.
	Camera gstsource.Config
	// PubSub backs both the InputPubSub frame source and the control_source,
	// on different channels.
	PubSub source.PubSub
	// Publisher backs the analysis/debug pubsub sinks. Optional: sinks using
	// it are only built when cfg.AnalysisFile/cfg.DebugFile are empty and an
	// analysis/debug channel is otherwise wanted.
	Publisher sink.Publisher
	// Broadcaster optionally fans debug output out to a websocket dashboard
	// alongside (or instead of) a pubsub debug sink.
	Broadcaster sink.Broadcaster
	// AnalysisChannel, DebugChannel and ControlChannel are the fully built
	// channel names (base plus suffix); see transport/nats.Channels for the
	// scheme callers use to derive them. Build never imports transport/nats
	// directly so it stays usable with a fake PubSub in tests.
	AnalysisChannel string
	DebugChannel    string
	ControlChannel  string

	Decode  Decode
	Metrics *metric.Registry
	Logger  *slog.Logger
}

// Assembled is everything Run needs, built from a config.Config.
type Assembled struct {
	Frames  stream.Publisher[packet.Encoded]
	Control stream.Publisher[bot.ControlCommand]
	Decode  Decode
	Sinks   Sinks
	Options Options
	// Close releases any sinks Build opened (e.g. file handles); callers
	// should defer it alongside passing StopServices into Options, or fold it
	// into their own StopServices callback.
	Close func()
}

// Build wires a config.Config into the concrete frame source, control
// source, and sinks a Run needs, following the external-interface mapping of
// SPEC_FULL.md §6. It does not start anything: Frames/Control are cold
// Publishers, subscribed only once Run is called.
func Build(cfg *config.Config, deps Dependencies) (Assembled, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	frames, live, err := buildFrameSource(cfg, deps)
	if err != nil {
		return Assembled{}, err
	}
	if !cfg.Batch {
		frames = paceFrames(frames, deps.Metrics)
	}

	var control stream.Publisher[bot.ControlCommand]
	if deps.PubSub != nil && deps.ControlChannel != "" {
		control = NewControlSource(deps.PubSub, deps.ControlChannel)
	}

	sinks, closeSinks, err := buildSinks(cfg, deps)
	if err != nil {
		return Assembled{}, err
	}

	opts := Options{
		Live:              live,
		Metrics:           deps.Metrics,
		Logger:            deps.Logger,
		SourceKind:        string(cfg.Input),
		WorkerConcurrency: 1,
		StopServices:      closeSinks,
	}

	return Assembled{
		Frames:  frames,
		Control: control,
		Decode:  deps.Decode,
		Sinks:   sinks,
		Options: opts,
		Close:   closeSinks,
	}, nil
}

// paceFrames composes frames with stream.Interval at liveFramePeriod, the
// "non-batch mode composes the source with an interval operator" half of
// spec.md §4.4's pacing rule (batch mode, handled by Build's caller,
// bypasses this entirely and passes frames through as fast as downstream
// consumes). A full buffer is resolved by dropping the oldest queued frame
// rather than blocking the source indefinitely; each drop is counted
// against metrics.IntervalDropped when metrics is non-nil.
func paceFrames(frames stream.Publisher[packet.Encoded], metrics *metric.Registry) stream.Publisher[packet.Encoded] {
	opts := stream.IntervalOptions{
		BufferSize: 1,
		Overflow:   stream.OverflowDropOldest,
	}
	if metrics != nil {
		opts.OnDrop = func(policy stream.Overflow) {
			metrics.IntervalDropped.WithLabelValues(policy.String()).Inc()
		}
	}
	return stream.Interval(frames, liveFramePeriod, opts)
}

func buildFrameSource(cfg *config.Config, deps Dependencies) (stream.Publisher[packet.Encoded], bool, error) {
	switch cfg.Input {
	case config.InputFile:
		if deps.NewCodecSource == nil {
			return nil, false, fmt.Errorf("pipeline: build: input=file requires Dependencies.NewCodecSource")
		}
		return source.NewFile(deps.NewCodecSource, cfg.Source, cfg.Loop), false, nil
	case config.InputURL:
		if deps.NewCodecSource == nil {
			return nil, false, fmt.Errorf("pipeline: build: input=url requires Dependencies.NewCodecSource")
		}
		return source.NewURL(deps.NewCodecSource, cfg.Source, cfg.Loop), false, nil
	case config.InputCamera:
		camCfg := deps.Camera
		if cfg.Source != "" {
			camCfg.URL = cfg.Source
		}
		return source.NewCamera(camCfg), true, nil
	case config.InputPubSub:
		if deps.PubSub == nil {
			return nil, false, fmt.Errorf("pipeline: build: input=pubsub requires Dependencies.PubSub")
		}
		network := source.NewPubSub(deps.PubSub, cfg.Channel)
		return reassembleNetworkFrames(network), true, nil
	default:
		return nil, false, fmt.Errorf("pipeline: build: unknown input kind %q", cfg.Input)
	}
}

// reassembleNetworkFrames turns a network_packet stream back into an
// encoded_packet stream, reassembling NetworkFrame chunks by ID before
// emitting the underlying EncodedFrame, so a pubsub frame source can feed
// the same decode/worker/signal-break chain as the codec-backed sources.
// Pending chunk sets are tracked in a closure-captured map; FlatMap's
// strictly-sequential contract (spec.md §4.2) means only one call is ever
// in flight, so no additional synchronization is needed.
func reassembleNetworkFrames(network stream.Publisher[packet.Network]) stream.Publisher[packet.Encoded] {
	pending := map[packet.ID][]packet.NetworkFrame{}
	return stream.FlatMap(network, func(n packet.Network) stream.Publisher[packet.Encoded] {
		var out stream.Publisher[packet.Encoded]
		packet.VisitNetwork(n,
			func(m packet.NetworkMetadata) {
				em, err := packet.NetworkMetadataToEncoded(m)
				if err != nil {
					out = stream.Error[packet.Encoded](err)
					return
				}
				out = stream.Of[packet.Encoded](em)
			},
			func(f packet.NetworkFrame) {
				pending[f.ID] = append(pending[f.ID], f)
				if uint32(len(pending[f.ID])) < f.Chunks {
					out = stream.Empty[packet.Encoded]()
					return
				}
				parts := pending[f.ID]
				delete(pending, f.ID)
				ef, err := packet.ReassembleFrame(parts)
				if err != nil {
					out = stream.Error[packet.Encoded](err)
					return
				}
				out = stream.Of[packet.Encoded](ef)
			},
		)
		return out
	})
}

// buildSinks constructs the analysis/debug/control sink funcs Run dispatches
// bot.Message to, honoring cfg's file-vs-pubsub choice: a file path wins
// over a pubsub channel when both could apply, since spec.md's config shape
// treats analysis_file/debug_file as the "write locally instead of
// publishing" escape hatch.
func buildSinks(cfg *config.Config, deps Dependencies) (Sinks, func(), error) {
	encodeMessage := encodeBotMessage

	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	analysis, err := buildMessageSink("analysis", cfg.AnalysisFile, deps.AnalysisChannel, deps, encodeMessage, &closers)
	if err != nil {
		return Sinks{}, nil, err
	}
	debug, err := buildMessageSink("debug", cfg.DebugFile, deps.DebugChannel, deps, encodeMessage, &closers)
	if err != nil {
		return Sinks{}, nil, err
	}

	var control func(bot.Message)
	if deps.Publisher != nil && deps.ControlChannel != "" {
		s := sink.NewPubSub(deps.Publisher, deps.ControlChannel, encodeMessage, deps.Logger, deps.Metrics)
		control = s.OnNext
	}

	return Sinks{Analysis: analysis, Debug: debug, Control: control}, closeAll, nil
}

func buildMessageSink(kind, filePath, channel string, deps Dependencies, encode sink.Encode[bot.Message], closers *[]func()) (func(bot.Message), error) {
	if filePath != "" {
		fs, err := sink.NewFile(filePath, encode, sink.FileOptions{}, deps.Logger, deps.Metrics)
		if err != nil {
			return nil, fmt.Errorf("pipeline: build: %s sink: %w", kind, err)
		}
		*closers = append(*closers, func() { _ = fs.Close() })
		write := fs.OnNext
		if kind == "debug" && deps.Broadcaster != nil {
			ws := sink.NewWS(deps.Broadcaster, encode, deps.Logger)
			return func(m bot.Message) { write(m); ws.OnNext(m) }, nil
		}
		return write, nil
	}
	if deps.Publisher != nil && channel != "" {
		s := sink.NewPubSub(deps.Publisher, channel, encode, deps.Logger, deps.Metrics)
		if kind == "debug" && deps.Broadcaster != nil {
			ws := sink.NewWS(deps.Broadcaster, encode, deps.Logger)
			return func(m bot.Message) { s.OnNext(m); ws.OnNext(m) }, nil
		}
		return s.OnNext, nil
	}
	if kind == "debug" && deps.Broadcaster != nil {
		ws := sink.NewWS(deps.Broadcaster, encode, deps.Logger)
		return ws.OnNext, nil
	}
	return nil, nil
}

// encodeBotMessage renders a bot.Message as the JSON document file/pubsub/ws
// sinks write: the message's Kind as its string name rather than its
// underlying int, since a consumer outside this module has no reason to know
// the enum's numeric values.
func encodeBotMessage(m bot.Message) ([]byte, error) {
	return json.Marshal(struct {
		Kind    string         `json:"kind"`
		Payload map[string]any `json:"payload"`
	}{Kind: m.Kind.String(), Payload: m.Payload})
}
