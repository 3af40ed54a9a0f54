package source_test

import (
	"errors"
	"testing"
	"time"

	"github.com/satori-video/streams/codec"
	"github.com/satori-video/streams/codec/fake"
	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/source"
	"github.com/satori-video/streams/stream"
)

func collect[T any](t *testing.T, p stream.Publisher[T]) ([]T, error) {
	t.Helper()
	var out []T
	d := stream.Process[T](p, func(v T) { out = append(out, v) })
	_, err := d.Wait()
	return out, err
}

func TestFromCodecEmitsMetadataFirstThenFrames(t *testing.T) {
	info := codec.StreamInfo{Index: 0, CodecName: "h264", PrivateData: []byte{0xAA}}
	fakeSrc := fake.New(info, []codec.Packet{
		{Data: []byte{1, 2}, StreamIdx: 0, KeyFrame: true},
		{Data: []byte{3, 4, 5}, StreamIdx: 0},
	})
	clock := stream.NewFakeClock(time.Unix(100, 0))

	got, err := collect(t, source.FromCodec(func() codec.Source { return fakeSrc }, source.Options{
		URI: "mem://x", Clock: clock, Component: "source.test",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 items (1 metadata + 2 frames), got %d: %v", len(got), got)
	}
	md, ok := got[0].(packet.EncodedMetadata)
	if !ok || md.CodecName != "h264" {
		t.Fatalf("expected metadata first, got %#v", got[0])
	}
	f0, ok := got[1].(packet.EncodedFrame)
	if !ok || f0.ID != (packet.ID{I1: 0, I2: 2}) {
		t.Fatalf("unexpected first frame: %#v", got[1])
	}
	f1, ok := got[2].(packet.EncodedFrame)
	if !ok || f1.ID != (packet.ID{I1: 2, I2: 5}) {
		t.Fatalf("unexpected second frame: %#v", got[2])
	}
}

func TestFromCodecSkipsOtherStreams(t *testing.T) {
	info := codec.StreamInfo{Index: 1, CodecName: "h264"}
	fakeSrc := fake.New(info, []codec.Packet{
		{Data: []byte{9}, StreamIdx: 0}, // audio, not selected
		{Data: []byte{1}, StreamIdx: 1},
	})
	got, err := collect(t, source.FromCodec(func() codec.Source { return fakeSrc }, source.Options{URI: "mem://x"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected metadata + 1 frame, got %d", len(got))
	}
}

func TestFromCodecLoopsOnEOF(t *testing.T) {
	info := codec.StreamInfo{Index: 0, CodecName: "h264"}
	fakeSrc := fake.New(info, []codec.Packet{{Data: []byte{1}, StreamIdx: 0}})

	p := source.FromCodec(func() codec.Source { return fakeSrc }, source.Options{URI: "mem://x", Loop: true})
	got, err := collect(t, stream.Take[packet.Encoded](p, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected to keep looping past EOF, got %d items", len(got))
	}
}

func TestFromCodecOpenErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	fakeSrc := fake.New(codec.StreamInfo{}, nil)
	fakeSrc.OpenErr = boom

	_, err := collect(t, source.FromCodec(func() codec.Source { return fakeSrc }, source.Options{URI: "mem://x"}))
	if !packet.IsKind(err, packet.KindStreamInitializationError) {
		t.Fatalf("expected stream initialization error, got %v", err)
	}
}

func TestFromCodecClosesOnTeardown(t *testing.T) {
	info := codec.StreamInfo{Index: 0, CodecName: "h264"}
	fakeSrc := fake.New(info, []codec.Packet{{Data: []byte{1}, StreamIdx: 0}})

	_, err := collect(t, source.FromCodec(func() codec.Source { return fakeSrc }, source.Options{URI: "mem://x"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fakeSrc.Closed() {
		t.Fatal("expected codec source to be closed on teardown")
	}
}
