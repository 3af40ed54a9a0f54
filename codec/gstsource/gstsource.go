// Package gstsource is a GStreamer-backed codec.Source used by the camera
// source kind. It adapts the pipeline-element lifecycle pattern from the
// teacher's RTSP capture module into the codec.Source façade so camera
// input flows through the same generator skeleton as file/url sources.
package gstsource

import (
	"fmt"
	"sync"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/satori-video/streams/codec"
)

// Config mirrors the teacher's RTSPConfig shape.
type Config struct {
	URL          string
	Width        int
	Height       int
	TargetFPS    float64
	Acceleration Acceleration
}

// Acceleration selects hardware decode behavior, as in the teacher's
// HardwareAccel enum.
type Acceleration int

const (
	AccelAuto Acceleration = iota
	AccelVAAPI
	AccelSoftware
)

// Source is a codec.Source that reads decoded RGBA frames out of a GStreamer
// pipeline built from cfg. Every ReadPacket call returns one frame's worth
// of packed RGBA bytes (4 per pixel), reported under the stream's codec name "rawvideo/rgb" so
// downstream conversion code can tell decoded packets from compressed ones
// without a type assertion on the source itself.
type Source struct {
	cfg Config

	mu       sync.Mutex
	pipeline *gst.Pipeline
	sink     *app.Sink
	frames   chan codec.Packet
	errs     chan error
	closed   bool
	seq      int64
}

// New constructs a Source; the pipeline itself is not built until Open.
func New(cfg Config) *Source {
	return &Source{cfg: cfg}
}

func (s *Source) Open(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := gst.Init(nil); err != nil {
		return fmt.Errorf("gstsource: init: %w", err)
	}

	decodeBin := "decodebin"
	if s.cfg.Acceleration == AccelVAAPI {
		decodeBin = "vaapidecodebin"
	}

	desc := fmt.Sprintf(
		"rtspsrc location=%s latency=200 ! %s ! videoconvert ! video/x-raw,format=RGBA,width=%d,height=%d,framerate=%d/1 ! appsink name=sink",
		uri, decodeBin, s.cfg.Width, s.cfg.Height, int(s.cfg.TargetFPS+0.5),
	)

	pipeline, err := gst.NewPipelineFromString(desc)
	if err != nil {
		return fmt.Errorf("gstsource: build pipeline: %w", err)
	}
	elem, err := pipeline.GetElementByName("sink")
	if err != nil {
		return fmt.Errorf("gstsource: find appsink: %w", err)
	}

	s.pipeline = pipeline
	s.sink = app.SinkFromElement(elem)
	s.frames = make(chan codec.Packet, 8)
	s.errs = make(chan error, 1)

	s.sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: s.onSample,
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("gstsource: start pipeline: %w", err)
	}
	return nil
}

func (s *Source) onSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowEOS
	}
	buf := sample.GetBuffer()
	if buf == nil {
		return gst.FlowError
	}
	data := buf.Bytes()

	s.mu.Lock()
	seq := s.seq
	s.seq++
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return gst.FlowFlushing
	}

	pkt := codec.Packet{
		Data:     data,
		PTS:      time.Now().UnixNano(),
		DTS:      seq,  // no real decode timestamp for a live sample; use the sequence number
		KeyFrame: true, // every decoded frame stands on its own
	}
	select {
	case s.frames <- pkt:
	default:
		// drop the frame rather than block the GStreamer streaming thread;
		// matches the teacher's "non-blocking frame distribution" policy.
	}
	return gst.FlowOK
}

func (s *Source) Streams() ([]codec.StreamInfo, error) {
	return []codec.StreamInfo{{
		Index:     0,
		CodecName: "rawvideo/rgb",
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
		FPS:       s.cfg.TargetFPS,
	}}, nil
}

func (s *Source) BestVideoStream(streams []codec.StreamInfo) (codec.StreamInfo, error) {
	if len(streams) == 0 {
		return codec.StreamInfo{}, codec.ErrEndOfStream
	}
	return streams[0], nil
}

func (s *Source) ReadPacket() (codec.Packet, error) {
	select {
	case pkt, ok := <-s.frames:
		if !ok {
			return codec.Packet{}, codec.ErrEndOfStream
		}
		return pkt, nil
	case err := <-s.errs:
		return codec.Packet{}, err
	case <-time.After(5 * time.Second):
		return codec.Packet{}, codec.ErrFrameNotReady
	}
}

// SeekToStart has no meaning for a live camera feed; it is a no-op so the
// camera source can share the generator skeleton that always seeks on loop.
func (s *Source) SeekToStart() error { return nil }

func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pipeline := s.pipeline
	s.mu.Unlock()

	if pipeline != nil {
		return pipeline.SetState(gst.StateNull)
	}
	return nil
}
