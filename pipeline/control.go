package pipeline

import (
	"encoding/json"

	"github.com/satori-video/streams/bot"
	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/source"
	"github.com/satori-video/streams/stream"
)

// NewControlSource builds the control_source of spec.md §4.5: a
// stream.Publisher[bot.ControlCommand] relaying every JSON-encoded control
// document published on channel. It shares source.NewPubSub's async-
// generator shape (subscribe once, relay until unsubscribed, terminate on
// the first decode error) but decodes into bot.ControlCommand rather than
// packet.Network, since the control channel carries start/stop/reconfigure
// commands, not frame/metadata documents.
func NewControlSource(ps source.PubSub, channel string) stream.Publisher[bot.ControlCommand] {
	return stream.Async[bot.ControlCommand, func() error](
		func(obs stream.Observer[bot.ControlCommand]) func() error {
			unsubscribe, err := ps.Subscribe(channel, func(raw []byte) {
				var cmd bot.ControlCommand
				if err := json.Unmarshal(raw, &cmd); err != nil {
					obs.OnError(packet.Wrap(packet.KindFrameGenerationError, "pipeline.control", "decode", err))
					return
				}
				obs.OnNext(cmd)
			})
			if err != nil {
				obs.OnError(packet.Wrap(packet.KindStreamInitializationError, "pipeline.control", "subscribe", err))
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
