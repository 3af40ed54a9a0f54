package source_test

import (
	"testing"
	"time"

	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/source"
	"github.com/satori-video/streams/stream"
)

type fakePubSub struct {
	handler func([]byte)
}

func (f *fakePubSub) Subscribe(channel string, handler func(raw []byte)) (func() error, error) {
	f.handler = handler
	return func() error { f.handler = nil; return nil }, nil
}

type recordingSubscriber struct {
	items []packet.Network
}

func (r *recordingSubscriber) OnSubscribe(stream.Subscription) {}
func (r *recordingSubscriber) OnNext(v packet.Network)         { r.items = append(r.items, v) }
func (r *recordingSubscriber) OnError(error)                   {}
func (r *recordingSubscriber) OnComplete()                     {}

func TestPubSubSourceDecodesFrameAndMetadata(t *testing.T) {
	ps := &fakePubSub{}
	p := source.NewPubSub(ps, "cam1.metadata")

	sub := &recordingSubscriber{}
	p.Subscribe(sub)

	if ps.handler == nil {
		t.Fatal("expected subscribe handler to be registered")
	}

	meta := packet.NetworkMetadata{CodecName: "h264", Base64Data: "AA=="}
	raw, err := packet.EncodeMsgpack(meta)
	if err != nil {
		t.Fatalf("encode metadata: %v", err)
	}
	ps.handler(raw)

	frame := packet.NetworkFrame{Base64Data: "AQ==", ID: packet.ID{I1: 0, I2: 1}, T: time.Unix(1, 0)}
	raw2, err := packet.EncodeMsgpack(frame)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	ps.handler(raw2)

	if len(sub.items) != 2 {
		t.Fatalf("expected 2 items, got %d: %v", len(sub.items), sub.items)
	}
	if _, ok := sub.items[0].(packet.NetworkMetadata); !ok {
		t.Fatalf("expected metadata first, got %#v", sub.items[0])
	}
	if _, ok := sub.items[1].(packet.NetworkFrame); !ok {
		t.Fatalf("expected frame second, got %#v", sub.items[1])
	}
}
