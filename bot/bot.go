// Package bot defines the contract a pipeline runs against: a Descriptor
// consumes the merged frame/control input stream and produces the analysis/
// debug/control output stream spec.md §4.5 routes to sinks.
package bot

import (
	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/stream"
)

// Kind selects which sink a Message is routed to.
type Kind int

const (
	KindAnalysis Kind = iota
	KindControl
	KindDebug
)

func (k Kind) String() string {
	switch k {
	case KindAnalysis:
		return "analysis"
	case KindControl:
		return "control"
	case KindDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Message is the bot message sum type from spec.md §3: a kind tag plus an
// arbitrary structured payload, routed by the pipeline's visitor to the
// matching sink.
type Message struct {
	Kind    Kind
	Payload map[string]any
}

// ControlCommand is a control-channel input to a bot (start/stop/reconfigure
// and the like), distinct from a decoded frame.
type ControlCommand struct {
	Name string
	Args map[string]any
}

// Input is what pipeline.Run feeds a bot: either a decoded frame or a
// control command, never both. Exactly one of Frame/Control is non-nil.
type Input struct {
	Frame   *packet.ImageFrame
	Control *ControlCommand
}

// Descriptor is a bot implementation. Run is called once per pipeline run
// with the merged frame/control input stream and returns the bot's output
// stream; it is the sole seam between this module's runtime and a bot's own
// logic (model calls, rule evaluation, whatever it does with frames).
type Descriptor interface {
	Run(in stream.Publisher[Input]) stream.Publisher[Message]
}

// FromFunc adapts a plain function into a Descriptor.
type FromFunc func(in stream.Publisher[Input]) stream.Publisher[Message]

func (f FromFunc) Run(in stream.Publisher[Input]) stream.Publisher[Message] { return f(in) }
