package nats

// Channels derives the full set of subject names a bot run uses from a
// single configured base channel, grounded on the input/output subject
// naming convention used throughout C360Studio-semstreams (a base name plus
// fixed purpose suffixes).
type Channels struct {
	Base string
}

// Frames is where encoded network_frame/network_metadata documents for the
// raw video are published.
func (c Channels) Frames() string { return c.Base }

// Metadata is the stream-of-record for codec metadata changes, separated
// from Frames so a subscriber can follow codec changes without receiving
// every frame.
func (c Channels) Metadata() string { return c.Base + ".metadata" }

// Analysis carries bot analysis output.
func (c Channels) Analysis() string { return c.Base + ".analysis" }

// Debug carries bot debug output.
func (c Channels) Debug() string { return c.Base + ".debug" }

// Control carries out-of-band control messages (start/stop/reconfigure)
// consumed by the control source in a pipeline's merge.
func (c Channels) Control() string { return c.Base + ".control" }
