// Package pipeline assembles the bot-run topology of spec.md §4.5 out of
// the source, bot, and sink packages: it is the composition root, the only
// package that imports all three plus config and metric.
package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"syscall"

	"github.com/satori-video/streams/bot"
	"github.com/satori-video/streams/metric"
	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/stream"
)

// Sinks routes a bot's output by Kind to the configured destination,
// implementing spec.md §4.5's "apply_visitor(dispatch_to_sink)" step. A nil
// field means that kind of message is simply dropped, mirroring a bot run
// configured without, say, a debug sink.
type Sinks struct {
	Analysis func(bot.Message)
	Debug    func(bot.Message)
	Control  func(bot.Message)
}

func (s Sinks) dispatch(m bot.Message) {
	switch m.Kind {
	case bot.KindAnalysis:
		if s.Analysis != nil {
			s.Analysis(m)
		}
	case bot.KindControl:
		if s.Control != nil {
			s.Control(m)
		}
	case bot.KindDebug:
		if s.Debug != nil {
			s.Debug(m)
		}
	default:
		panic("pipeline: unreachable bot.Kind variant")
	}
}

// Options configures a Run beyond the topology itself.
type Options struct {
	// Live enables the threaded-worker decode boundary for sources that must
	// not be blocked by a slow decode (camera, pubsub). Batch sources (file,
	// url) leave this false and decode inline.
	Live bool
	// WorkerConcurrency bounds the threaded-worker pool when Live is set.
	// Defaults to 1.
	WorkerConcurrency int

	// Signals selects the signal service; defaults to stream.OSSignalSource{}.
	Signals stream.SignalSource
	// Metrics is optional; when set, frame and bot-message counters are
	// recorded against it.
	Metrics *metric.Registry
	// SourceKind labels Metrics.FramesIngested's source_kind ("file", "url",
	// "camera", "pubsub").
	SourceKind string
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// StopServices runs exactly once when the frame stream terminates for any
	// reason (spec.md §4.5's do_finally(stop_services)): typically closes
	// sinks and transport clients a Run's caller constructed.
	StopServices func()
}

// Run builds exactly the topology of spec.md §4.5:
//
//	merge(
//	  control_source >> map(to_bot_input),
//	  frame_source   >> [threaded_worker if live]
//	                 >> signal_breaker({INT,TERM,QUIT})
//	                 >> map(frames_count++)
//	                 >> do_finally(stop_services)
//	                 >> map(to_bot_input)
//	) >> bot.run() >> process(apply_visitor(dispatch_to_sink))
//
// control may be nil, in which case no control input is merged in (a bot run
// reading frames only). The bot is always an explicit Descriptor argument
// (see bot/registry.go's REDESIGN FLAG note — there is no global registry to
// pull one from).
func Run(
	frames stream.Publisher[packet.Encoded],
	control stream.Publisher[bot.ControlCommand],
	decode Decode,
	b bot.Descriptor,
	sinks Sinks,
	opts Options,
) *stream.Deferred[struct{}] {
	if opts.Signals == nil {
		opts.Signals = stream.OSSignalSource{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.WorkerConcurrency < 1 {
		opts.WorkerConcurrency = 1
	}

	images := decodeImages(frames, decode, opts.Live, opts.WorkerConcurrency, opts.Metrics)
	broken := stream.SignalBreak(images, opts.Signals, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	var frameCount int64
	counted := stream.Map(broken, func(f packet.ImageFrame) (packet.ImageFrame, error) {
		n := atomic.AddInt64(&frameCount, 1)
		if opts.Metrics != nil {
			opts.Metrics.FramesIngested.WithLabelValues(opts.SourceKind).Inc()
		}
		_ = n
		return f, nil
	})

	finalized := stream.DoFinally(counted, func() {
		opts.Logger.Info("pipeline: frame stream finalized", "frames", atomic.LoadInt64(&frameCount))
		if opts.StopServices != nil {
			opts.StopServices()
		}
	})

	frameInputs := stream.Map(finalized, func(f packet.ImageFrame) (bot.Input, error) {
		frame := f
		return bot.Input{Frame: &frame}, nil
	})

	var controlInputs stream.Publisher[bot.Input]
	if control != nil {
		controlInputs = stream.Map(control, func(c bot.ControlCommand) (bot.Input, error) {
			cmd := c
			return bot.Input{Control: &cmd}, nil
		})
	} else {
		controlInputs = stream.Empty[bot.Input]()
	}

	merged := stream.Merge(controlInputs, frameInputs)
	out := b.Run(merged)

	d := stream.Process(out, func(m bot.Message) {
		if opts.Metrics != nil {
			opts.Metrics.BotMessagesSent.WithLabelValues(m.Kind.String()).Inc()
		}
		sinks.dispatch(m)
	})

	if opts.Metrics != nil {
		go recordTerminalError(d, opts.Metrics)
	}

	return d
}

// recordTerminalError waits for d's terminal outcome and, on error, counts
// it against PipelineErrors by the wrapping *packet.VideoError's Kind (or
// "unknown" for an error this module didn't wrap itself). d is a
// resolve-once, read-many Deferred, so this extra Wait call alongside the
// caller's own does not race or consume anything.
func recordTerminalError(d *stream.Deferred[struct{}], metrics *metric.Registry) {
	_, err := d.Wait()
	if err == nil {
		return
	}
	kind := "unknown"
	var ve *packet.VideoError
	if errors.As(err, &ve) {
		kind = ve.Kind.String()
	}
	metrics.PipelineErrors.WithLabelValues(kind).Inc()
}
