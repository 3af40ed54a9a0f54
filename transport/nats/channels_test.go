package nats_test

import (
	"testing"

	"github.com/satori-video/streams/transport/nats"
)

func TestChannelsDeriveFromBase(t *testing.T) {
	c := nats.Channels{Base: "cam1"}
	cases := map[string]string{
		"frames":   c.Frames(),
		"metadata": c.Metadata(),
		"analysis": c.Analysis(),
		"debug":    c.Debug(),
		"control":  c.Control(),
	}
	want := map[string]string{
		"frames":   "cam1",
		"metadata": "cam1.metadata",
		"analysis": "cam1.analysis",
		"debug":    "cam1.debug",
		"control":  "cam1.control",
	}
	for k, v := range want {
		if cases[k] != v {
			t.Errorf("%s: got %q, want %q", k, cases[k], v)
		}
	}
}
