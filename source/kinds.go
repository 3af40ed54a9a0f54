package source

import (
	"github.com/satori-video/streams/codec"
	"github.com/satori-video/streams/codec/gstsource"
	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/stream"
)

// NewFile builds a file source: a codec-backed source over a local path,
// looping on EOF when loop is set. newSource constructs the demuxer; this
// package has no opinion on which codec library backs it (spec.md §6).
func NewFile(newSource func() codec.Source, path string, loop bool) stream.Publisher[packet.Encoded] {
	return FromCodec(newSource, Options{URI: path, Loop: loop, Component: "source.file"})
}

// NewURL builds a url source: identical to NewFile except for the
// component tag used in wrapped errors, since the two share the same
// open-by-URI codec primitive and only differ in what the URI names.
func NewURL(newSource func() codec.Source, url string, loop bool) stream.Publisher[packet.Encoded] {
	return FromCodec(newSource, Options{URI: url, Loop: loop, Component: "source.url"})
}

// NewCamera builds a camera source backed by GStreamer (codec/gstsource).
// Loop is off, since seeking a live camera "to the start" has no meaning:
// an end of stream reported by the codec source completes the source.
// gstsource itself never reports end of stream; when no frame arrives
// within its read timeout it reports frame-not-ready instead, so the camera
// source does not complete when the GStreamer pipeline stops.
func NewCamera(cfg gstsource.Config) stream.Publisher[packet.Encoded] {
	return FromCodec(func() codec.Source {
		return gstsource.New(cfg)
	}, Options{URI: cfg.URL, Loop: false, Component: "source.camera"})
}
